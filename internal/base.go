package internal

import (
	"math"
	"strconv"
	"strings"
)

// This file implements the rest of the base library: printing, warnings,
// error raising, protected calls, metatable access, raw container
// primitives, iteration, and value utilities. Chunk loading and garbage
// collector control stay with the host runtime and have no counterpart
// here.

// initBase installs the general base functions.
func (r *Runtime) initBase() {
	funcs := map[string]Fn{
		"assert":       BaseAssert,
		"error":        BaseError,
		"getmetatable": BaseGetmetatable,
		"ipairs":       BaseIpairs,
		"next":         BaseNext,
		"pairs":        BasePairs,
		"pcall":        BasePcall,
		"print":        BasePrint,
		"rawequal":     BaseRawequal,
		"rawget":       BaseRawget,
		"rawlen":       BaseRawlen,
		"rawset":       BaseRawset,
		"select":       BaseSelect,
		"setmetatable": BaseSetmetatable,
		"tonumber":     BaseTonumber,
		"tostring":     BaseToString,
		"warn":         BaseWarn,
	}
	for name, fn := range funcs {
		r.Register(name, fn)
	}
}

// BasePrint is an Iasy base function.
//
// print writes its arguments to the runtime's output, converted with
// tostring, separated by tabs, and followed by a newline.
func BasePrint(r *Runtime, args []Value) ([]Value, error) {
	parts := make([]string, len(args))
	for i := range args {
		s, err := r.ToString(arg(args, i+1))
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	if _, err := r.stdout.Write([]byte(strings.Join(parts, "\t") + "\n")); err != nil {
		return nil, err
	}
	return nil, nil
}

// BaseToString is an Iasy base function.
//
// tostring converts its argument to a string, honoring the __tostring and
// __name hooks.
func BaseToString(r *Runtime, args []Value) ([]Value, error) {
	v, err := anyArg("tostring", args, 1)
	if err != nil {
		return nil, err
	}
	s, err := r.ToString(v)
	if err != nil {
		return nil, err
	}
	return []Value{String(s)}, nil
}

// BaseWarn is an Iasy base function.
//
// warn composes a warning from its string arguments and emits it through
// the runtime's logger. All arguments are checked before any composition so
// an argument error cannot leave a warning half-built.
func BaseWarn(r *Runtime, args []Value) ([]Value, error) {
	if _, err := stringArg("warn", args, 1); err != nil {
		return nil, err
	}
	parts := make([]string, len(args))
	for i := range args {
		s, err := stringArg("warn", args, i+1)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	r.log.Warn().Msg(strings.Join(parts, ""))
	return nil, nil
}

// BaseAssert is an Iasy base function.
//
// assert returns all its arguments if the first is truthy and raises the
// second argument, or "assertion failed!", otherwise.
func BaseAssert(r *Runtime, args []Value) ([]Value, error) {
	v, err := anyArg("assert", args, 1)
	if err != nil {
		return nil, err
	}
	if Truthy(v) {
		return args, nil
	}
	if len(args) >= 2 {
		return nil, r.RaiseValue(arg(args, 2))
	}
	return nil, r.RaiseValue(String("assertion failed!"))
}

// BaseError is an Iasy base function.
//
// error raises its argument as an error value. The level argument is
// accepted for compatibility; position information belongs to the host's
// chunk machinery and is not available here.
func BaseError(r *Runtime, args []Value) ([]Value, error) {
	if _, err := optNumberArg("error", args, 2, 1); err != nil {
		return nil, err
	}
	return nil, r.RaiseValue(arg(args, 1))
}

// BasePcall is an Iasy base function.
//
// pcall calls its first argument with the remaining arguments in protected
// mode, returning true and the call's results, or false and the error
// value.
func BasePcall(r *Runtime, args []Value) ([]Value, error) {
	v, err := anyArg("pcall", args, 1)
	if err != nil {
		return nil, err
	}
	f, ok := v.(*Function)
	if !ok {
		return []Value{False, String("attempt to call a " + KindOf(v).String() + " value")}, nil
	}
	ok, results, errv := r.Pcall(f, args[1:]...)
	if !ok {
		return []Value{False, errv}, nil
	}
	return append([]Value{True}, results...), nil
}

// BaseGetmetatable is an Iasy base function.
//
// getmetatable returns the argument's metatable, the __metatable marker if
// the metatable carries one, or nil.
func BaseGetmetatable(r *Runtime, args []Value) ([]Value, error) {
	v, err := anyArg("getmetatable", args, 1)
	if err != nil {
		return nil, err
	}
	return []Value{r.MetatableOf(v)}, nil
}

// BaseSetmetatable is an Iasy base function.
//
// setmetatable attaches the second argument as the first's metatable, or
// detaches it when nil. It refuses to replace a metatable carrying the
// __metatable protection marker.
func BaseSetmetatable(r *Runtime, args []Value) ([]Value, error) {
	t, err := tableArg("setmetatable", args, 1)
	if err != nil {
		return nil, err
	}
	var m *Table
	switch v := arg(args, 2).(type) {
	case nilValue:
		m = nil
	case *Table:
		m = v
	default:
		return nil, argExpected("setmetatable", 2, "nil or table", args)
	}
	if err := r.SetMetatable(t, m); err != nil {
		return nil, err
	}
	return []Value{t}, nil
}

// BaseRawequal is an Iasy base function.
//
// rawequal compares two values for primitive equality, bypassing any __eq
// hook.
func BaseRawequal(r *Runtime, args []Value) ([]Value, error) {
	a, err := anyArg("rawequal", args, 1)
	if err != nil {
		return nil, err
	}
	b, err := anyArg("rawequal", args, 2)
	if err != nil {
		return nil, err
	}
	return []Value{Boolean(RawEqual(a, b))}, nil
}

// BaseRawlen is an Iasy base function.
//
// rawlen returns the length of a table or string, bypassing any __len hook.
func BaseRawlen(r *Runtime, args []Value) ([]Value, error) {
	switch v := arg(args, 1).(type) {
	case *Table:
		return []Value{Number(v.RawLen())}, nil
	case String:
		return []Value{Number(len(v))}, nil
	}
	return nil, argExpected("rawlen", 1, "table or string", args)
}

// BaseRawget is an Iasy base function.
//
// rawget reads a table field, bypassing any __index hook.
func BaseRawget(r *Runtime, args []Value) ([]Value, error) {
	t, err := tableArg("rawget", args, 1)
	if err != nil {
		return nil, err
	}
	k, err := anyArg("rawget", args, 2)
	if err != nil {
		return nil, err
	}
	return []Value{t.RawGet(k)}, nil
}

// BaseRawset is an Iasy base function.
//
// rawset writes a table field, bypassing any hooks, and returns the table.
func BaseRawset(r *Runtime, args []Value) ([]Value, error) {
	t, err := tableArg("rawset", args, 1)
	if err != nil {
		return nil, err
	}
	k, err := anyArg("rawset", args, 2)
	if err != nil {
		return nil, err
	}
	v, err := anyArg("rawset", args, 3)
	if err != nil {
		return nil, err
	}
	if k == Nil {
		return nil, r.Raisef("table index is nil")
	}
	if n, ok := k.(Number); ok && math.IsNaN(float64(n)) {
		return nil, r.Raisef("table index is NaN")
	}
	t.RawSet(k, v)
	return []Value{t}, nil
}

// BaseNext is an Iasy base function.
//
// next returns the key-value pair following the given key in a table, or
// nil after the last pair. A nil or absent key starts the iteration.
func BaseNext(r *Runtime, args []Value) ([]Value, error) {
	t, err := tableArg("next", args, 1)
	if err != nil {
		return nil, err
	}
	k, v, err := t.Next(arg(args, 2))
	if err != nil {
		return nil, r.Raisef("%s", err)
	}
	if k == Nil {
		return []Value{Nil}, nil
	}
	return []Value{k, v}, nil
}

// BasePairs is an Iasy base function.
//
// pairs returns an iterator triple over a table: the next function, the
// table, and nil. A __pairs hook overrides the triple.
func BasePairs(r *Runtime, args []Value) ([]Value, error) {
	v, err := anyArg("pairs", args, 1)
	if err != nil {
		return nil, err
	}
	if h, ok := metafield(v, metaPairs).(*Function); ok {
		res, err := r.Call(h, v)
		if err != nil {
			return nil, err
		}
		for len(res) < 3 {
			res = append(res, Nil)
		}
		return res[:3], nil
	}
	if _, err := tableArg("pairs", args, 1); err != nil {
		return nil, err
	}
	return []Value{r.Global("next"), v, Nil}, nil
}

// BaseIpairs is an Iasy base function.
//
// ipairs returns an iterator triple producing index-value pairs 1..n, where
// n is the first absent index. Element reads are delegated, so the iterator
// sees inherited fields.
func BaseIpairs(r *Runtime, args []Value) ([]Value, error) {
	v, err := anyArg("ipairs", args, 1)
	if err != nil {
		return nil, err
	}
	aux := NewFunction("ipairs", func(r *Runtime, args []Value) ([]Value, error) {
		i, err := numberArg("ipairs", args, 2)
		if err != nil {
			return nil, err
		}
		t, ok := arg(args, 1).(*Table)
		if !ok {
			return nil, r.Raisef("attempt to index a %s value", KindOf(arg(args, 1)))
		}
		next := Number(i + 1)
		v, err := r.Index(t, next)
		if err != nil {
			return nil, err
		}
		if v == Nil {
			return []Value{Nil}, nil
		}
		return []Value{next, v}, nil
	})
	return []Value{aux, v, Number(0)}, nil
}

// BaseSelect is an Iasy base function.
//
// select('#', ...) returns the number of remaining arguments; select(i, ...)
// returns the arguments after the i-th, with a negative i counting from the
// end.
func BaseSelect(r *Runtime, args []Value) ([]Value, error) {
	if s, ok := arg(args, 1).(String); ok && strings.HasPrefix(string(s), "#") {
		return []Value{Number(len(args) - 1)}, nil
	}
	f, err := numberArg("select", args, 1)
	if err != nil {
		return nil, err
	}
	n := len(args)
	i := int(f)
	if i < 0 {
		i = n + i
	} else if i > n {
		i = n
	}
	if i < 1 {
		return nil, argError("select", 1, "index out of range")
	}
	return args[i:], nil
}

// BaseTonumber is an Iasy base function.
//
// tonumber converts a value to a number, or to nil if it does not represent
// one. With an explicit base in 2..36 the first argument must be a string
// of digits in that base.
func BaseTonumber(r *Runtime, args []Value) ([]Value, error) {
	if arg(args, 2) == Nil {
		switch v := arg(args, 1).(type) {
		case Number:
			return []Value{v}, nil
		case String:
			if n, ok := parseNumber(string(v)); ok {
				return []Value{Number(n)}, nil
			}
			return []Value{Nil}, nil
		}
		if _, err := anyArg("tonumber", args, 1); err != nil {
			return nil, err
		}
		return []Value{Nil}, nil
	}
	base, err := numberArg("tonumber", args, 2)
	if err != nil {
		return nil, err
	}
	s, ok := arg(args, 1).(String)
	if !ok {
		return nil, argExpected("tonumber", 1, "string", args)
	}
	if base < 2 || base > 36 {
		return nil, argError("tonumber", 2, "base out of range")
	}
	if n, ok := strToInt(string(s), int(base)); ok {
		return []Value{Number(n)}, nil
	}
	return []Value{Nil}, nil
}

// parseNumber converts a string to a number the way the runtime's standard
// coercion does, accepting decimal floats and 0x hexadecimal integers.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	body, neg := s, false
	switch body[0] {
	case '-':
		neg, body = true, body[1:]
	case '+':
		body = body[1:]
	}
	if len(body) > 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		u, err := strconv.ParseUint(body[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		f := float64(u)
		if neg {
			f = -f
		}
		return f, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// strToInt converts a string of digits in the given base, following the
// original reader: optional surrounding spaces, an optional sign, then one
// or more alphanumeric digits all below the base.
func strToInt(s string, base int) (float64, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		var digit int
		switch {
		case c >= '0' && c <= '9':
			digit = int(c - '0')
		case c >= 'a' && c <= 'z':
			digit = int(c-'a') + 10
		case c >= 'A' && c <= 'Z':
			digit = int(c-'A') + 10
		default:
			return 0, false
		}
		if digit >= base {
			return 0, false
		}
		n = n*uint64(base) + uint64(digit)
	}
	f := float64(n)
	if neg {
		f = -f
	}
	return f, true
}
