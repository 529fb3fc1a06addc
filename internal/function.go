package internal

// An Fn is a Go function callable from Iasy code. It receives the runtime
// and the call's arguments and returns the call's results. A returned error
// propagates to the nearest protected-call boundary.
type Fn func(r *Runtime, args []Value) ([]Value, error)

// Function is a callable Iasy value backed by an Fn.
type Function struct {
	// Name is the function's name as used in error messages.
	Name string

	fn Fn
	id uintptr
}

// NewFunction creates a function value with the given name.
func NewFunction(name string, fn Fn) *Function {
	return &Function{Name: name, fn: fn, id: nextID()}
}

// Kind returns KindFunction.
func (*Function) Kind() Kind { return KindFunction }

// UniqueID returns the function's unique ID.
func (f *Function) UniqueID() uintptr {
	return f.id
}

// Call invokes f with the given arguments. Errors are not caught here; Pcall
// is the protected boundary.
func (r *Runtime) Call(f *Function, args ...Value) ([]Value, error) {
	return f.fn(r, args)
}

// Pcall invokes f, catching any error it raises. On success it returns the
// call's results with ok true; on failure, ok false and the error converted
// to a value.
func (r *Runtime) Pcall(f *Function, args ...Value) (ok bool, results []Value, errv Value) {
	results, err := f.fn(r, args)
	if err != nil {
		return false, nil, errorValue(err)
	}
	return true, results, nil
}

// arg returns the nth (1-based) argument, or Nil if absent.
func arg(args []Value, n int) Value {
	if n > len(args) {
		return Nil
	}
	if args[n-1] == nil {
		return Nil
	}
	return args[n-1]
}

// anyArg returns the nth argument, which must be present (it may be Nil only
// if explicitly passed).
func anyArg(fn string, args []Value, n int) (Value, error) {
	if n > len(args) {
		return nil, argError(fn, n, "value expected")
	}
	return arg(args, n), nil
}

// tableArg returns the nth argument as a table.
func tableArg(fn string, args []Value, n int) (*Table, error) {
	t, ok := arg(args, n).(*Table)
	if !ok {
		return nil, argExpected(fn, n, "table", args)
	}
	return t, nil
}

// stringArg returns the nth argument as a string, accepting a number via the
// usual coercion.
func stringArg(fn string, args []Value, n int) (string, error) {
	switch v := arg(args, n).(type) {
	case String:
		return string(v), nil
	case Number:
		return v.String(), nil
	}
	return "", argExpected(fn, n, "string", args)
}

// numberArg returns the nth argument as a number.
func numberArg(fn string, args []Value, n int) (float64, error) {
	v, ok := arg(args, n).(Number)
	if !ok {
		return 0, argExpected(fn, n, "number", args)
	}
	return float64(v), nil
}

// optNumberArg returns the nth argument as a number, or def if it is absent
// or nil.
func optNumberArg(fn string, args []Value, n int, def float64) (float64, error) {
	if arg(args, n) == Nil {
		return def, nil
	}
	return numberArg(fn, args, n)
}
