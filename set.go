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

// elem adapts a bare entity reference so it can be stored in a Map as its
// own value.
type elem[K Ref] struct {
	key K
}

func (e elem[K]) Key() K {
	return e.key
}

// Set is a sparse set of entity references: a Map whose values are the keys
// themselves. It inherits the Map's cost model, including O(1) Clear and
// iteration linear in the number of members.
//
// The zero value is an empty set ready for use. A Set is NOT goroutine-safe.
type Set[K Ref] struct {
	m Map[K, elem[K]]
}

// NewSet constructs a Set with room for initialCapacity members before the
// dense array needs to grow.
func NewSet[K Ref](initialCapacity int) *Set[K] {
	var s Set[K]
	s.m.Init(initialCapacity)
	return &s
}

// Len returns the number of members in the set.
func (s *Set[K]) Len() int {
	return s.m.Len()
}

// Empty reports whether the set has no members.
func (s *Set[K]) Empty() bool {
	return s.m.Empty()
}

// Contains reports whether key is a member of the set.
func (s *Set[K]) Contains(key K) bool {
	_, ok := s.m.Get(key)
	return ok
}

// Insert adds key to the set. If key was already a member, the previously
// stored key is returned with present=true and the set is unchanged in
// size.
func (s *Set[K]) Insert(key K) (prev K, present bool) {
	old, replaced := s.m.Insert(elem[K]{key})
	return old.key, replaced
}

// Remove removes key from the set, returning it with ok=true if it was a
// member.
func (s *Set[K]) Remove(key K) (member K, ok bool) {
	old, ok := s.m.Remove(key)
	return old.key, ok
}

// Clear removes all members in constant time.
func (s *Set[K]) Clear() {
	s.m.Clear()
}

// All calls yield for each member of the set, in dense-array order
// (insertion order modulo removals), until yield returns false. The set
// must not be mutated during iteration.
func (s *Set[K]) All(yield func(key K) bool) {
	s.m.All(func(e elem[K]) bool {
		return yield(e.key)
	})
}
