// Copyright 2026 The Entitykit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sparse

// option provides an interface to do work on a Map while it is being
// initialized.
type option[K Ref, V Value[K]] interface {
	apply(m *Map[K, V])
}

type keySpaceOption[K Ref, V Value[K]] struct {
	n int
}

func (op keySpaceOption[K, V]) apply(m *Map[K, V]) {
	if op.n > len(m.sparse) {
		t := make([]uint32, op.n)
		copy(t, m.sparse)
		m.sparse = t
	}
}

// WithKeySpace is an option to presize the sparse table to cover every key
// whose Index() is below n, so that inserts never have to grow it. Purely
// an allocation hint: keys outside the presized range still work.
func WithKeySpace[K Ref, V Value[K]](n int) option[K, V] {
	return keySpaceOption[K, V]{n}
}
