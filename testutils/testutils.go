// Package testutils provides utilities for testing Iasy runtime behavior in
// Go.
package testutils

import (
	"sync"
	"testing"

	"github.com/iasylabs/iasy"
)

// testRT is the runtime used for all tests.
var testRT *iasy.Runtime

var testRTInit sync.Once

// RT returns a runtime for testing. The runtime is shared by all tests that
// use this package.
func RT() *iasy.Runtime {
	testRTInit.Do(ResetRT)
	return testRT
}

// ResetRT reinitializes the runtime returned by RT. It is not safe to call
// this in parallel tests.
func ResetRT() {
	testRT = iasy.NewRuntime()
}

// Seq builds a table holding the given values as a 1-based sequence.
func Seq(vs ...iasy.Value) *iasy.Table {
	t := iasy.NewTable()
	for i, v := range vs {
		t.RawSet(iasy.Number(i+1), v)
	}
	return t
}

// With builds a table from alternating key-value pairs. It panics on an odd
// number of arguments.
func With(pairs ...iasy.Value) *iasy.Table {
	if len(pairs)%2 != 0 {
		panic("testutils: With requires key-value pairs")
	}
	t := iasy.NewTable()
	for i := 0; i < len(pairs); i += 2 {
		t.RawSet(pairs[i], pairs[i+1])
	}
	return t
}

// Proto builds a prototype table whose hook set carries the given __name,
// plus any alternating field pairs.
func Proto(name string, fields ...iasy.Value) *iasy.Table {
	t := With(fields...)
	hooks := With(iasy.String("__name"), iasy.String(name))
	t.RawSet(iasy.String("__metatable"), hooks)
	return t
}

// CallGlobal calls the named base function on the shared runtime, failing
// the test on any error.
func CallGlobal(t *testing.T, name string, args ...iasy.Value) []iasy.Value {
	t.Helper()
	rt := RT()
	f, ok := rt.Global(name).(*iasy.Function)
	if !ok {
		t.Fatalf("no base function %q", name)
	}
	res, err := rt.Call(f, args...)
	if err != nil {
		t.Fatalf("%s raised: %v", name, err)
	}
	return res
}

// CallGlobalErr calls the named base function on the shared runtime and
// returns the error it raises, failing the test if it succeeds.
func CallGlobalErr(t *testing.T, name string, args ...iasy.Value) error {
	t.Helper()
	rt := RT()
	f, ok := rt.Global(name).(*iasy.Function)
	if !ok {
		t.Fatalf("no base function %q", name)
	}
	_, err := rt.Call(f, args...)
	if err == nil {
		t.Fatalf("%s did not raise", name)
	}
	return err
}
