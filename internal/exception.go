package internal

import (
	"errors"
	"fmt"
)

// ArgumentError reports a base function argument that is missing or of the
// wrong kind. Its message matches the original runtime's argument checks.
type ArgumentError struct {
	// Func is the base function's name.
	Func string
	// Arg is the 1-based argument position.
	Arg int
	// Want is the expected kind, or a complete clause when Got is empty.
	Want string
	// Got is the kind actually received, or "no value" for a missing
	// argument. Empty when Want is a complete clause.
	Got string
}

func (e *ArgumentError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("bad argument #%d to '%s' (%s)", e.Arg, e.Func, e.Want)
	}
	return fmt.Sprintf("bad argument #%d to '%s' (%s expected, got %s)", e.Arg, e.Func, e.Want, e.Got)
}

// argExpected builds an ArgumentError for argument n of fn, deriving the got
// clause from the argument list.
func argExpected(fn string, n int, want string, args []Value) error {
	got := "no value"
	if n <= len(args) {
		got = KindOf(args[n-1]).String()
	}
	return &ArgumentError{Func: fn, Arg: n, Want: want, Got: got}
}

// argError builds an ArgumentError whose parenthesized clause is msg.
func argError(fn string, n int, msg string) error {
	return &ArgumentError{Func: fn, Arg: n, Want: msg}
}

// RaisedError carries a value thrown by the error or assert base functions.
// Any error crossing a pcall boundary that is not a RaisedError surfaces to
// Iasy code as its message string.
type RaisedError struct {
	// Value is the thrown value.
	Value Value
	msg   string
}

func (e *RaisedError) Error() string { return e.msg }

// RaiseValue wraps v as an error to propagate to the nearest protected-call
// boundary.
func (r *Runtime) RaiseValue(v Value) error {
	msg, err := r.ToString(v)
	if err != nil {
		msg = KindOf(v).String()
	}
	return &RaisedError{Value: v, msg: msg}
}

// Raisef raises a string error built from a format.
func (r *Runtime) Raisef(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return &RaisedError{Value: String(msg), msg: msg}
}

// errInvalidNextKey is reported by Next when given a key absent from the
// table.
var errInvalidNextKey = errors.New("invalid key to 'next'")

// errorValue converts an error into the value a protected call returns. A
// RaisedError yields the original thrown value; anything else yields its
// message.
func errorValue(err error) Value {
	var raised *RaisedError
	if errors.As(err, &raised) {
		return raised.Value
	}
	return String(err.Error())
}
