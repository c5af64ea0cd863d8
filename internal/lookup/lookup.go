package lookup

import "fmt"

// Array is an ordered sequence of unique elements. Each element is identified
// by a key computed once on insertion. Removals renumber the positions of every
// following element, so they cost O(n); appends and lookups are O(1).
//
// Inserting an element whose key is already present is a programming error and
// panics.
type Array[K comparable, V any] struct {
	keyOf    func(V) K
	elements []V
	keys     []K
	index    map[K]int
}

// New creates an empty Array keyed by keyOf.
func New[K comparable, V any](keyOf func(V) K) *Array[K, V] {
	return &Array[K, V]{
		keyOf: keyOf,
		index: make(map[K]int),
	}
}

// FromSlice creates an Array holding values in order.
func FromSlice[K comparable, V any](keyOf func(V) K, values []V) *Array[K, V] {
	a := &Array[K, V]{
		keyOf:    keyOf,
		elements: make([]V, 0, len(values)),
		keys:     make([]K, 0, len(values)),
		index:    make(map[K]int, len(values)),
	}
	for _, v := range values {
		a.Append(v)
	}
	return a
}

// Len returns the number of elements.
func (a *Array[K, V]) Len() int {
	return len(a.elements)
}

// Append adds v at the end.
func (a *Array[K, V]) Append(v V) {
	key := a.keyOf(v)
	if _, exists := a.index[key]; exists {
		panic(fmt.Sprintf("lookup: duplicate key %v", key))
	}
	a.index[key] = len(a.elements)
	a.elements = append(a.elements, v)
	a.keys = append(a.keys, key)
}

// At returns the element at position i.
func (a *Array[K, V]) At(i int) V {
	return a.elements[i]
}

// Pop removes and returns the element at position i.
func (a *Array[K, V]) Pop(i int) V {
	v := a.elements[i]
	delete(a.index, a.keys[i])

	copy(a.elements[i:], a.elements[i+1:])
	var zero V
	a.elements[len(a.elements)-1] = zero
	a.elements = a.elements[:len(a.elements)-1]

	copy(a.keys[i:], a.keys[i+1:])
	a.keys = a.keys[:len(a.keys)-1]

	for j := i; j < len(a.keys); j++ {
		a.index[a.keys[j]] = j
	}
	return v
}

// Remove removes v, identified by its key. Removing an absent element panics.
func (a *Array[K, V]) Remove(v V) {
	key := a.keyOf(v)
	i, ok := a.index[key]
	if !ok {
		panic(fmt.Sprintf("lookup: removing absent key %v", key))
	}
	a.Pop(i)
}

// Discard removes the element with the given key if present and reports
// whether something was removed.
func (a *Array[K, V]) Discard(key K) bool {
	i, ok := a.index[key]
	if !ok {
		return false
	}
	a.Pop(i)
	return true
}

// Lookup returns the element stored under key.
func (a *Array[K, V]) Lookup(key K) (V, bool) {
	i, ok := a.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return a.elements[i], true
}

// LookupIndex returns the position of key, or -1.
func (a *Array[K, V]) LookupIndex(key K) int {
	if i, ok := a.index[key]; ok {
		return i
	}
	return -1
}

// ContainsKey reports whether an element with key is present.
func (a *Array[K, V]) ContainsKey(key K) bool {
	_, ok := a.index[key]
	return ok
}

// Contains reports whether v (by key) is present.
func (a *Array[K, V]) Contains(v V) bool {
	return a.ContainsKey(a.keyOf(v))
}

// KeyOf returns the key the array computes for v.
func (a *Array[K, V]) KeyOf(v V) K {
	return a.keyOf(v)
}

// Values returns the elements in order. The slice is shared with the array
// and must not be modified.
func (a *Array[K, V]) Values() []V {
	return a.elements
}

// Keys returns the keys in element order. The slice is shared with the array
// and must not be modified.
func (a *Array[K, V]) Keys() []K {
	return a.keys
}

// Clear removes every element.
func (a *Array[K, V]) Clear() {
	clear(a.elements)
	a.elements = a.elements[:0]
	a.keys = a.keys[:0]
	clear(a.index)
}

// Clone returns a shallow copy with its own ordering and index.
func (a *Array[K, V]) Clone() *Array[K, V] {
	c := &Array[K, V]{
		keyOf:    a.keyOf,
		elements: append([]V(nil), a.elements...),
		keys:     append([]K(nil), a.keys...),
		index:    make(map[K]int, len(a.index)),
	}
	for k, i := range a.index {
		c.index[k] = i
	}
	return c
}
