/*
Package iasy implements the runtime core of the Iasy language.

Iasy is a Lua-flavored dialect whose base library adds prototype-based
single inheritance over ordinary tables. This package provides the value
domain, the table substrate with attachable behavior descriptors
(metatables), and the base library built on them. Parsing, chunk loading,
and garbage collection belong to the embedding host and are not provided
here.

To start, use NewRuntime to create a runtime with the base library
installed in its Globals table. Values are created directly: Number,
String, and Boolean are ordinary Go types, and NewTable creates an empty
table. Base functions are values in Globals and can be called with the
runtime's Call method.

# Object model

A prototype is a plain table. Its optional __metatable field holds a hook
set: stringification (__tostring), length (__len), equality (__eq), an
identity tag (__name), and so on. The new base function turns a prototype
into a live instance:

	Widget := NewTable()
	Widget.RawSet(String("spin"), Number(45))
	w, _ := rt.New(Widget)

The instance starts empty and delegates unknown field reads to the
prototype through its behavior descriptor, while writes stay local, so
instances share behavior and defaults but have independent state. The
descriptor is built once per prototype and shared by reference between all
of its instances.

The extends base function wires one prototype to inherit from another:

	derive := rt.Extends(Base)
	Derived, _ = derive(Derived)

Derived is mutated in place: its hook set gains Base's hooks (except
__name) and its fallback index points at Base, so field reads missing on
Derived fall through to Base and onward along Base's own chain.

The type base function classifies any value semantically: a table with a
descriptor naming itself via __name reports that name, any other table
with a descriptor reports "object", a plain table reports "table", and
every other value reports its intrinsic kind. same, all, and any fold
these classifications and the host truthiness over 1-based sequences.

Each Runtime and everything reachable from it must be confined to one
logical thread; the runtime adds no locking of its own.
*/
package iasy

import (
	"github.com/iasylabs/iasy/internal"
)

// A Runtime processes Iasy values and hosts the base library.
type Runtime = internal.Runtime

// Option configures a Runtime.
type Option = internal.Option

// Value is any Iasy value.
type Value = internal.Value

// Kind is the intrinsic kind of a value.
type Kind = internal.Kind

// Table is the Iasy container type.
type Table = internal.Table

// Function is a callable Iasy value.
type Function = internal.Function

// An Fn is a Go function callable from Iasy code.
type Fn = internal.Fn

// Boolean, Number, and String are the Iasy primitive value types.
type (
	Boolean = internal.Boolean
	Number  = internal.Number
	String  = internal.String
)

// ArgumentError reports a base function argument that is missing or of the
// wrong kind.
type ArgumentError = internal.ArgumentError

// RaisedError carries a value thrown by the error or assert base functions.
type RaisedError = internal.RaisedError

// Intrinsic value kinds.
const (
	KindNil      = internal.KindNil
	KindBoolean  = internal.KindBoolean
	KindNumber   = internal.KindNumber
	KindString   = internal.KindString
	KindFunction = internal.KindFunction
	KindTable    = internal.KindTable
)

// Singleton values.
var (
	Nil   = internal.Nil
	True  = internal.True
	False = internal.False
)

// Version is the runtime version string, also available to Iasy code as
// _VERSION.
const Version = internal.Version

// NewRuntime prepares a new runtime with the base library installed.
func NewRuntime(opts ...Option) *Runtime {
	return internal.NewRuntime(opts...)
}

// NewTable creates a new empty table with no metatable.
func NewTable() *Table {
	return internal.NewTable()
}

// NewFunction creates a function value with the given name.
func NewFunction(name string, fn Fn) *Function {
	return internal.NewFunction(name, fn)
}

// WithStdout directs print output to w instead of standard output.
var WithStdout = internal.WithStdout

// WithLogger installs the logger that warn and runtime debug events write
// to.
var WithLogger = internal.WithLogger

// Truthy reports whether v counts as true in a condition. Only nil and
// false are falsy.
func Truthy(v Value) bool {
	return internal.Truthy(v)
}

// RawEqual reports whether two values are primitively equal, without
// consulting any equality hook.
func RawEqual(a, b Value) bool {
	return internal.RawEqual(a, b)
}

// KindOf returns the intrinsic kind of v.
func KindOf(v Value) Kind {
	return internal.KindOf(v)
}
