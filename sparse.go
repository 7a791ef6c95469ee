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

// Package sparse provides a sparse mapping from entity references to larger
// value types, based on the paper:
//
//	Briggs, Torczon, "An efficient representation for sparse sets",
//	ACM Letters on Programming Languages and Systems,
//	Volume 2, Issue 1-4, March-Dec. 1993.
//
// See also https://research.swtch.com/sparse for an accessible treatment of
// the same trick.
//
// An entity reference is a small, densely-assigned integer identifier (an
// instruction, a block, a node) wrapped in a distinct type. References are
// allocated and owned by some external arena or primary table; this package
// only tracks which references currently have an associated value.
//
// # Representation
//
// A Map[K,V] is two arrays cooperating under one invariant:
//
//   - sparse: a table indexed directly by the reference's integer form,
//     holding a 32-bit slot number into dense. Entries may be stale.
//   - dense: the compact, insertion-ordered storage of the values that are
//     actually present. Every value knows its own key via Key().
//
// A key k is present iff sparse[k] is in bounds for dense and
// dense[sparse[k]].Key() == k. This lookup-time cross-check is what lets the
// sparse table lie: slot numbers left behind by Remove or Clear are never
// dereferenced without validation, so they read as "absent" instead of
// corrupting the map. The payoff is a constant-time Clear that discards the
// dense array and touches none of the sparse table.
//
// For the layout of the set {2, 5, 1} inserted in that order:
//
//	sparse:  [ ?  2  0  ?  ?  1 ]      dense:  [ 2  5  1 ]
//	           0  1  2  3  4  5                  0  1  2
//
// Compared to a dense secondary table indexed by the full key space, a
// Map[K,V] uses memory proportional to the key space for slot numbers only
// (4 bytes per key) plus the live values, iterates in time linear in the
// number of live entries rather than the key space, and distinguishes an
// unmapped key from one mapped to the zero value.
//
// # Operations
//
// Insert, Get, GetPtr, Remove, and Clear are all O(1). Removal fills the
// hole with the last dense entry, so dense positions are not stable across
// removals; iteration order is insertion order modulo those relocations.
//
// A Map is NOT goroutine-safe.
package sparse

import (
	"fmt"
	"math"
)

// invariants enables exhaustive sparse/dense cross-checking after every
// mutation. Far too slow for production use.
const invariants = false

// Ref is the constraint for entity reference keys. A Ref converts to its
// plain integer form via Index; the integers are expected to be small,
// non-negative, and densely assigned by whatever arena owns the entities.
type Ref interface {
	comparable
	Index() int
}

// Value is the constraint for values stored in a Map. Every value reports
// the key it is stored under. The reported key must not change while the
// value is a member of the map; the map's internal bookkeeping is keyed on
// it.
type Value[K Ref] interface {
	Key() K
}

// Map is a sparse mapping from entity references to values. The zero value
// is an empty map ready for use; New is only needed to presize.
type Map[K Ref, V Value[K]] struct {
	// sparse maps a key's Index() to a slot in dense. Entries are written
	// on insert and repaired on swap-removal, but never erased: a stale
	// slot number is detected at lookup time by the coherence check in
	// index.
	sparse []uint32
	// dense holds the live values in insertion order, modulo swap-removal.
	dense []V
}

// New constructs a Map with room for initialCapacity values before the
// dense array needs to grow.
func New[K Ref, V Value[K]](initialCapacity int, options ...option[K, V]) *Map[K, V] {
	var m Map[K, V]
	m.Init(initialCapacity, options...)
	return &m
}

// Init (re)initializes a map to empty, allocating room for initialCapacity
// values. Init on a previously used map drops all entries but may reuse its
// backing arrays.
func (m *Map[K, V]) Init(initialCapacity int, options ...option[K, V]) {
	if cap(m.dense) < initialCapacity {
		m.dense = make([]V, 0, initialCapacity)
	} else {
		clear(m.dense)
		m.dense = m.dense[:0]
	}
	for _, op := range options {
		op.apply(m)
	}
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return len(m.dense)
}

// Empty reports whether the map contains no entries.
func (m *Map[K, V]) Empty() bool {
	return len(m.dense) == 0
}

// index returns the dense slot holding the live entry for key, or -1 if the
// key is absent. This is the coherence check: a slot number read from the
// sparse table is only believed if it lands in bounds on an entry whose own
// key matches.
func (m *Map[K, V]) index(key K) int {
	i := key.Index()
	if i < 0 || i >= len(m.sparse) {
		return -1
	}
	idx := int(m.sparse[i])
	if idx < len(m.dense) && m.dense[idx].Key() == key {
		return idx
	}
	return -1
}

// Get returns the value stored for key, with ok=false if the key is not
// present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if idx := m.index(key); idx >= 0 {
		return m.dense[idx], true
	}
	return value, false
}

// GetPtr returns a pointer to the value stored for key for in-place
// mutation, or nil if the key is not present.
//
// The value must not be mutated in a way that changes its Key(). Doing so
// invalidates the map's bookkeeping. The pointer is only valid until the
// next mutating operation on the map.
func (m *Map[K, V]) GetPtr(key K) *V {
	if idx := m.index(key); idx >= 0 {
		return &m.dense[idx]
	}
	return nil
}

// Insert inserts a value into the map, storing it under the key the value
// itself reports. If an entry for that key was already present it is
// overwritten in place, and the previous value is returned with
// replaced=true.
//
// Insert panics if the map would exceed the 32-bit slot addressing limit.
func (m *Map[K, V]) Insert(value V) (old V, replaced bool) {
	key := value.Key()
	if idx := m.index(key); idx >= 0 {
		old, m.dense[idx] = m.dense[idx], value
		m.checkInvariants()
		return old, true
	}

	// No live entry for key. Append to dense and point the sparse table
	// at the new slot.
	idx := len(m.dense)
	if uint64(idx) > math.MaxUint32 {
		panic(fmt.Sprintf("sparse: map overflow: %d entries", idx))
	}
	m.ensure(key.Index())
	m.dense = append(m.dense, value)
	m.sparse[key.Index()] = uint32(idx)
	m.checkInvariants()
	return old, false
}

// Remove removes the entry for key and returns the value it held, with
// ok=false if the key was not present.
func (m *Map[K, V]) Remove(key K) (value V, ok bool) {
	idx := m.index(key)
	if idx < 0 {
		return value, false
	}

	// Pop the back of dense, zeroing the vacated slot so dead capacity
	// retains no references.
	last := len(m.dense) - 1
	back := m.dense[last]
	var zero V
	m.dense[last] = zero
	m.dense = m.dense[:last]

	if idx == last {
		// The back was the entry being removed.
		m.checkInvariants()
		return back, true
	}

	// Removing from the middle: relocate the back entry into the hole.
	// Repair the sparse table before installing so the two arrays never
	// disagree about where back lives.
	m.sparse[back.Key().Index()] = uint32(idx)
	value, m.dense[idx] = m.dense[idx], back
	m.checkInvariants()
	return value, true
}

// Clear removes all entries. The sparse table is deliberately left stale;
// its entries are revalidated lazily by the next lookups, so Clear never
// touches the key space.
func (m *Map[K, V]) Clear() {
	clear(m.dense)
	m.dense = m.dense[:0]
}

// All calls yield for each value in the map, in dense-array order
// (insertion order modulo removals), until yield returns false. The map
// must not be mutated during iteration.
func (m *Map[K, V]) All(yield func(value V) bool) {
	for i := range m.dense {
		if !yield(m.dense[i]) {
			return
		}
	}
}

// ensure grows the sparse table to cover index i.
func (m *Map[K, V]) ensure(i int) {
	if i < len(m.sparse) {
		return
	}
	n := 2 * len(m.sparse)
	if n <= i {
		n = i + 1
	}
	// New slots are zero, which is indistinguishable from a stale slot
	// number and equally harmless.
	t := make([]uint32, n)
	copy(t, m.sparse)
	m.sparse = t
}

func (m *Map[K, V]) checkInvariants() {
	if invariants {
		for i := range m.dense {
			k := m.dense[i].Key()
			j := k.Index()
			if j < 0 || j >= len(m.sparse) {
				panic(fmt.Sprintf("invariant failed: dense[%d] key %v index %d outside sparse table of %d",
					i, k, j, len(m.sparse)))
			}
			if int(m.sparse[j]) != i {
				panic(fmt.Sprintf("invariant failed: dense[%d] key %v maps to slot %d",
					i, k, m.sparse[j]))
			}
		}
	}
}
