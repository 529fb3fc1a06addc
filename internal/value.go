package internal

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the intrinsic kind of an Iasy value.
type Kind int

// Intrinsic value kinds. These are the host-level classifications; the
// semantic classification performed by the type base function is layered on
// top of them in object.go.
const (
	KindNil Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindFunction
	KindTable
)

// String returns the kind's name as Iasy code observes it.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindTable:
		return "table"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is any Iasy value. The concrete types are nilValue, Boolean, Number,
// String, *Function, and *Table. All of them are comparable, so values may be
// used as table keys and checked for raw equality with ==.
type Value interface {
	// Kind returns the value's intrinsic kind.
	Kind() Kind
}

type nilValue struct{}

func (nilValue) Kind() Kind { return KindNil }

func (nilValue) String() string { return "nil" }

// Nil is the Iasy nil value. A table field holding Nil is indistinguishable
// from an absent field, as in the original runtime.
var Nil Value = nilValue{}

// Boolean is an Iasy boolean.
type Boolean bool

// Kind returns KindBoolean.
func (Boolean) Kind() Kind { return KindBoolean }

// Boolean singletons.
var (
	True  Value = Boolean(true)
	False Value = Boolean(false)
)

// Number is an Iasy number. The runtime has a single floating-point numeric
// kind; integral values print without a fraction.
type Number float64

// Kind returns KindNumber.
func (Number) Kind() Kind { return KindNumber }

// String formats the number the way tostring does.
func (n Number) String() string {
	f := float64(n)
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', 14, 64)
}

// String is an Iasy string.
type String string

// Kind returns KindString.
func (String) Kind() Kind { return KindString }

// KindOf returns the intrinsic kind of v, treating a nil interface as Nil.
func KindOf(v Value) Kind {
	if v == nil {
		return KindNil
	}
	return v.Kind()
}

// Truthy reports whether v counts as true in a condition. Only nil and false
// are falsy; zero and empty tables are truthy.
func Truthy(v Value) bool {
	return v != nil && v != Nil && v != False
}

// RawEqual reports whether two values are primitively equal, without
// consulting any equality hook. Tables and functions compare by identity.
func RawEqual(a, b Value) bool {
	if a == nil {
		a = Nil
	}
	if b == nil {
		b = Nil
	}
	return a == b
}
