package internal

import (
	"fmt"

	"github.com/zephyrtronium/contains"
)

// Hook names recognized in behavior descriptors.
const (
	metaIndex    = String("__index")
	metaName     = String("__name")
	metaToString = String("__tostring")
	metaLen      = String("__len")
	metaEq       = String("__eq")
	metaPairs    = String("__pairs")
	metaProtect  = String("__metatable")
)

// metafield returns the value of a hook on v's metatable, or Nil if v is not
// a table or lacks the hook. The lookup is raw.
func metafield(v Value, hook String) Value {
	t, ok := v.(*Table)
	if !ok || t.meta == nil {
		return Nil
	}
	return t.meta.RawGet(hook)
}

// Index reads field k of t, following the fallback-index chain on a local
// miss. A table-valued __index delegates the lookup to that table; a
// function-valued __index is called with the delegating table and the key.
// Cyclic chains terminate as a miss rather than looping forever.
func (r *Runtime) Index(t *Table, k Value) (Value, error) {
	cur := t
	seen := contains.Set{}
	seen.Add(cur.UniqueID())
	for {
		if v := cur.RawGet(k); v != Nil {
			return v, nil
		}
		switch idx := metafield(cur, metaIndex).(type) {
		case *Table:
			if !seen.Add(idx.UniqueID()) {
				return Nil, nil
			}
			cur = idx
		case *Function:
			res, err := r.Call(idx, cur, k)
			if err != nil {
				return nil, err
			}
			if len(res) == 0 {
				return Nil, nil
			}
			return res[0], nil
		default:
			return Nil, nil
		}
	}
}

// Length returns the length of t, honoring a __len hook if one is attached.
func (r *Runtime) Length(t *Table) (int, error) {
	h, ok := metafield(t, metaLen).(*Function)
	if !ok {
		return t.RawLen(), nil
	}
	res, err := r.Call(h, t)
	if err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, r.Raisef("object length is not a number")
	}
	n, ok := res[0].(Number)
	if !ok {
		return 0, r.Raisef("object length is not a number")
	}
	return int(n), nil
}

// Equal compares two values, honoring an __eq hook when both are tables that
// are not already primitively equal.
func (r *Runtime) Equal(a, b Value) (bool, error) {
	if RawEqual(a, b) {
		return true, nil
	}
	if _, ok := a.(*Table); !ok {
		return false, nil
	}
	if _, ok := b.(*Table); !ok {
		return false, nil
	}
	h, ok := metafield(a, metaEq).(*Function)
	if !ok {
		if h, ok = metafield(b, metaEq).(*Function); !ok {
			return false, nil
		}
	}
	res, err := r.Call(h, a, b)
	if err != nil {
		return false, err
	}
	if len(res) == 0 {
		return false, nil
	}
	return Truthy(res[0]), nil
}

// ToString converts a value to its display string. Tables consult their
// __tostring hook first, then __name.
func (r *Runtime) ToString(v Value) (string, error) {
	switch v := v.(type) {
	case nil, nilValue:
		return "nil", nil
	case Boolean:
		if v {
			return "true", nil
		}
		return "false", nil
	case Number:
		return v.String(), nil
	case String:
		return string(v), nil
	case *Function:
		return fmt.Sprintf("function: 0x%08x", v.UniqueID()), nil
	case *Table:
		if h, ok := metafield(v, metaToString).(*Function); ok {
			res, err := r.Call(h, v)
			if err != nil {
				return "", err
			}
			if len(res) == 0 {
				return "", r.Raisef("'__tostring' must return a string")
			}
			s, ok := res[0].(String)
			if !ok {
				return "", r.Raisef("'__tostring' must return a string")
			}
			return string(s), nil
		}
		if n, ok := metafield(v, metaName).(String); ok {
			return fmt.Sprintf("%s: 0x%08x", string(n), v.UniqueID()), nil
		}
		return fmt.Sprintf("table: 0x%08x", v.UniqueID()), nil
	}
	return "", fmt.Errorf("iasy: value of impossible kind %v", KindOf(v))
}

// SetMetatable attaches m as t's metatable, refusing if the current
// metatable carries the __metatable protection marker. m may be nil to
// detach.
func (r *Runtime) SetMetatable(t *Table, m *Table) error {
	if t.meta != nil && t.meta.RawGet(metaProtect) != Nil {
		return r.Raisef("cannot change a protected metatable")
	}
	t.SetMetatable(m)
	return nil
}

// MetatableOf returns the metatable of v as Iasy code observes it: Nil for a
// value with no metatable, the __metatable marker if the descriptor carries
// one, and the descriptor itself otherwise.
func (r *Runtime) MetatableOf(v Value) Value {
	t, ok := v.(*Table)
	if !ok || t.meta == nil {
		return Nil
	}
	if p := t.meta.RawGet(metaProtect); p != Nil {
		return p
	}
	return t.meta
}
