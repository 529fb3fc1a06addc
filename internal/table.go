package internal

import (
	"math"
	"sync/atomic"
)

// idcounter is the global counter for value IDs. All accesses to this must be
// atomic.
var idcounter uintptr

// nextID increments the ID counter and returns its value as a unique ID for a
// new table or function.
func nextID() uintptr {
	return atomic.AddUintptr(&idcounter, 1)
}

// Table is the Iasy container: a mutable associative store with an optional
// attached metatable acting as its behavior descriptor. Keys are unique and
// may be any non-nil value; integral numeric keys from 1 upward form the
// sequence part.
//
// Tables are not synchronized. The runtime assumes a single logical thread
// of execution per Runtime, as the original does.
type Table struct {
	// arr is the sequence part, holding values for keys 1..len(arr).
	arr []Value
	// hash holds all other entries.
	hash map[Value]Value
	// keys is the insertion order of hash keys, giving Next a stable cursor.
	keys []Value

	// meta is the attached behavior descriptor, or nil.
	meta *Table

	// instanceMeta memoizes the descriptor built by the first New call with
	// this table as the prototype. It replaces the original runtime's
	// reserved "<instance metatable>" field so that the memo can never
	// collide with a user key nor leak through rawget.
	instanceMeta *Table

	// id is the table's unique ID.
	id uintptr
}

// NewTable creates a new empty table with no metatable.
func NewTable() *Table {
	return &Table{id: nextID()}
}

// Kind returns KindTable.
func (*Table) Kind() Kind { return KindTable }

// UniqueID returns the table's unique ID.
func (t *Table) UniqueID() uintptr {
	return t.id
}

// Metatable returns the table's attached metatable, or nil if it has none.
func (t *Table) Metatable() *Table {
	return t.meta
}

// SetMetatable attaches m as the table's metatable, replacing any existing
// one. It does not honor the __metatable protection marker; that check
// belongs to the setmetatable base function, not the substrate, matching the
// original C API split.
func (t *Table) SetMetatable(m *Table) {
	t.meta = m
}

// arrIndex reports whether k addresses the sequence part, returning the
// 1-based index if so.
func arrIndex(k Value) (int, bool) {
	n, ok := k.(Number)
	if !ok {
		return 0, false
	}
	f := float64(n)
	if f != math.Trunc(f) || f < 1 || f > float64(math.MaxInt32) {
		return 0, false
	}
	return int(f), true
}

// RawGet returns the value stored at key k without consulting the metatable.
// Absent fields read as Nil. A nil or Nil key reads as Nil.
func (t *Table) RawGet(k Value) Value {
	if k == nil || k == Nil {
		return Nil
	}
	if i, ok := arrIndex(k); ok && i <= len(t.arr) {
		if v := t.arr[i-1]; v != nil {
			return v
		}
		return Nil
	}
	if v, ok := t.hash[k]; ok {
		return v
	}
	return Nil
}

// RawSet stores v at key k without consulting the metatable. Storing Nil
// removes the field. The key must not be nil or NaN; the rawset base function
// validates that before calling here.
func (t *Table) RawSet(k, v Value) {
	if i, ok := arrIndex(k); ok {
		switch {
		case i <= len(t.arr):
			t.arr[i-1] = v
			if v == Nil && i == len(t.arr) {
				// Shrink the border past any trailing holes.
				for len(t.arr) > 0 && (t.arr[len(t.arr)-1] == Nil || t.arr[len(t.arr)-1] == nil) {
					t.arr = t.arr[:len(t.arr)-1]
				}
			}
			return
		case i == len(t.arr)+1 && v != Nil:
			t.arr = append(t.arr, v)
			// Adopt any hash entries that now extend the sequence.
			for {
				nk := Number(len(t.arr) + 1)
				hv, ok := t.hash[nk]
				if !ok {
					break
				}
				t.arr = append(t.arr, hv)
				t.deleteHash(nk)
			}
			return
		}
	}
	if v == Nil {
		t.deleteHash(k)
		return
	}
	if t.hash == nil {
		t.hash = make(map[Value]Value)
	}
	if _, ok := t.hash[k]; !ok {
		t.keys = append(t.keys, k)
	}
	t.hash[k] = v
}

func (t *Table) deleteHash(k Value) {
	if _, ok := t.hash[k]; !ok {
		return
	}
	delete(t.hash, k)
	for i, key := range t.keys {
		if key == k {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
}

// RawLen returns the table's sequence border without consulting the
// metatable.
func (t *Table) RawLen() int {
	return len(t.arr)
}

// Next returns the key-value pair following key k in the table's iteration
// order, with k == Nil starting the iteration. It returns Nil, Nil after the
// last pair. The cursor is stateless; iterating while mutating the table is
// undefined. A key not present in the table is an error.
func (t *Table) Next(k Value) (Value, Value, error) {
	pos := 0
	if k != nil && k != Nil {
		p, ok := t.findPos(k)
		if !ok {
			return nil, nil, errInvalidNextKey
		}
		pos = p + 1
	}
	for ; pos < len(t.arr); pos++ {
		if v := t.arr[pos]; v != nil && v != Nil {
			return Number(pos + 1), v, nil
		}
	}
	for ; pos < len(t.arr)+len(t.keys); pos++ {
		key := t.keys[pos-len(t.arr)]
		return key, t.hash[key], nil
	}
	return Nil, Nil, nil
}

// findPos locates a key's position in the iteration order.
func (t *Table) findPos(k Value) (int, bool) {
	if i, ok := arrIndex(k); ok && i <= len(t.arr) {
		return i - 1, true
	}
	for j, key := range t.keys {
		if key == k {
			return len(t.arr) + j, true
		}
	}
	return 0, false
}

// Foreach calls exec on each entry of the table in iteration order, without
// consulting the metatable. exec must not mutate the table. If exec returns
// false, the iteration ceases.
func (t *Table) Foreach(exec func(k, v Value) bool) {
	for i, v := range t.arr {
		if v == nil || v == Nil {
			continue
		}
		if !exec(Number(i+1), v) {
			return
		}
	}
	for _, k := range t.keys {
		if !exec(k, t.hash[k]) {
			return
		}
	}
}

// Size returns the number of entries in the table, which can exceed RawLen
// when non-sequence keys are present.
func (t *Table) Size() int {
	n := len(t.hash)
	for _, v := range t.arr {
		if v != nil && v != Nil {
			n++
		}
	}
	return n
}
