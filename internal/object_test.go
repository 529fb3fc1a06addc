package internal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iasylabs/iasy"
	"github.com/iasylabs/iasy/testutils"
)

// newProto builds a prototype with the given hook pairs in its __metatable
// field.
func newProto(fields, hooks []iasy.Value) *iasy.Table {
	t := testutils.With(fields...)
	if hooks != nil {
		t.RawSet(iasy.String("__metatable"), testutils.With(hooks...))
	}
	return t
}

// TestNewSharesDescriptor tests that every instance of one prototype gets
// the identical descriptor table, not a structural copy.
func TestNewSharesDescriptor(t *testing.T) {
	p := newProto([]iasy.Value{iasy.String("x"), iasy.Number(1)}, nil)
	i1 := testutils.CallGlobal(t, "new", p)[0].(*iasy.Table)
	i2 := testutils.CallGlobal(t, "new", p)[0].(*iasy.Table)
	require.NotSame(t, i1, i2)
	require.NotNil(t, i1.Metatable())
	require.Same(t, i1.Metatable(), i2.Metatable())
	i3, err := testutils.RT().New(p)
	require.NoError(t, err)
	require.Same(t, i1.Metatable(), i3.Metatable())
}

// TestNewDescriptorFrozen tests that the descriptor is computed on the
// first new and never again: hooks added to the prototype's hook set
// afterward do not reach later instances.
func TestNewDescriptorFrozen(t *testing.T) {
	hooks := testutils.With()
	p := iasy.NewTable()
	p.RawSet(iasy.String("__metatable"), hooks)
	i1 := testutils.CallGlobal(t, "new", p)[0].(*iasy.Table)
	hooks.RawSet(iasy.String("__name"), iasy.String("Late"))
	i2 := testutils.CallGlobal(t, "new", p)[0].(*iasy.Table)
	require.Equal(t, "object", testutils.RT().TypeOf(i1))
	require.Equal(t, "object", testutils.RT().TypeOf(i2))
}

// TestNewCopiesHooks tests that the instance descriptor carries the
// prototype's hooks plus the fallback index.
func TestNewCopiesHooks(t *testing.T) {
	rt := testutils.RT()
	str := iasy.NewFunction("tostring hook", func(r *iasy.Runtime, args []iasy.Value) ([]iasy.Value, error) {
		self := args[0].(*iasy.Table)
		v, err := r.Index(self, iasy.String("property"))
		if err != nil {
			return nil, err
		}
		s, err := r.ToString(v)
		if err != nil {
			return nil, err
		}
		return []iasy.Value{iasy.String("Property is: " + s)}, nil
	})
	p := newProto(
		[]iasy.Value{iasy.String("property"), iasy.String("value")},
		[]iasy.Value{iasy.String("__tostring"), str},
	)
	inst := testutils.CallGlobal(t, "new", p)[0].(*iasy.Table)

	res := testutils.CallGlobal(t, "tostring", inst)
	require.Equal(t, []iasy.Value{iasy.String("Property is: value")}, res)

	inst.RawSet(iasy.String("property"), iasy.String("another value"))
	res = testutils.CallGlobal(t, "tostring", inst)
	require.Equal(t, []iasy.Value{iasy.String("Property is: another value")}, res)

	v, err := rt.Index(p, iasy.String("property"))
	require.NoError(t, err)
	require.Equal(t, iasy.String("value"), v)
}

// TestNewIndependentState tests that writes on one instance are invisible
// to sibling instances and to the prototype.
func TestNewIndependentState(t *testing.T) {
	p := newProto([]iasy.Value{iasy.String("f"), iasy.Number(7)}, nil)
	i1 := testutils.CallGlobal(t, "new", p)[0].(*iasy.Table)
	i2 := testutils.CallGlobal(t, "new", p)[0].(*iasy.Table)

	i1.RawSet(iasy.String("f"), iasy.Number(99))
	require.Equal(t, iasy.Value(iasy.Nil), i2.RawGet(iasy.String("f")))
	require.Equal(t, iasy.Value(iasy.Number(7)), p.RawGet(iasy.String("f")))

	rt := testutils.RT()
	v, err := rt.Index(i2, iasy.String("f"))
	require.NoError(t, err)
	require.Equal(t, iasy.Value(iasy.Number(7)), v)
	v, err = rt.Index(i1, iasy.String("f"))
	require.NoError(t, err)
	require.Equal(t, iasy.Value(iasy.Number(99)), v)
}

// TestNewArgKind tests the argument validation of new.
func TestNewArgKind(t *testing.T) {
	cases := map[string]struct {
		args []iasy.Value
		want string
	}{
		"Number":  {[]iasy.Value{iasy.Number(5)}, "bad argument #1 to 'new' (table expected, got number)"},
		"Nil":     {[]iasy.Value{iasy.Nil}, "bad argument #1 to 'new' (table expected, got nil)"},
		"Missing": {nil, "bad argument #1 to 'new' (table expected, got no value)"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			err := testutils.CallGlobalErr(t, "new", c.args...)
			require.EqualError(t, err, c.want)
			var argErr *iasy.ArgumentError
			require.ErrorAs(t, err, &argErr)
		})
	}
}

// TestExtendsWiresFallback tests that a derived prototype delegates missing
// fields to its base, transitively.
func TestExtendsWiresFallback(t *testing.T) {
	rt := testutils.RT()
	base := newProto([]iasy.Value{iasy.String("a"), iasy.Number(1)}, nil)
	mid := newProto([]iasy.Value{iasy.String("b"), iasy.Number(2)}, nil)
	leaf := newProto([]iasy.Value{iasy.String("c"), iasy.Number(3)}, nil)

	combine := testutils.CallGlobal(t, "extends", base)[0].(*iasy.Function)
	res, err := rt.Call(combine, mid)
	require.NoError(t, err)
	require.Same(t, mid, res[0].(*iasy.Table))

	combine2 := testutils.CallGlobal(t, "extends", mid)[0].(*iasy.Function)
	_, err = rt.Call(combine2, leaf)
	require.NoError(t, err)

	for name, c := range map[string]struct {
		key  string
		want iasy.Value
	}{
		"Own":         {"c", iasy.Number(3)},
		"Parent":      {"b", iasy.Number(2)},
		"Grandparent": {"a", iasy.Number(1)},
		"Missing":     {"zzz", iasy.Nil},
	} {
		t.Run(name, func(t *testing.T) {
			v, err := rt.Index(leaf, iasy.String(c.key))
			require.NoError(t, err)
			require.Equal(t, c.want, v)
		})
	}
}

// TestExtendsCombinatorReusable tests that one combinator wires multiple
// independent derived prototypes to the same base.
func TestExtendsCombinatorReusable(t *testing.T) {
	rt := testutils.RT()
	base := newProto([]iasy.Value{iasy.String("shared"), iasy.String("yes")}, nil)
	combine := testutils.CallGlobal(t, "extends", base)[0].(*iasy.Function)

	d1 := iasy.NewTable()
	d2 := iasy.NewTable()
	_, err := rt.Call(combine, d1)
	require.NoError(t, err)
	_, err = rt.Call(combine, d2)
	require.NoError(t, err)

	d1.RawSet(iasy.String("own"), iasy.Number(1))
	require.Equal(t, iasy.Value(iasy.Nil), d2.RawGet(iasy.String("own")))

	for _, d := range []*iasy.Table{d1, d2} {
		v, err := rt.Index(d, iasy.String("shared"))
		require.NoError(t, err)
		require.Equal(t, iasy.Value(iasy.String("yes")), v)
	}
}

// TestExtendsBaseHookWins pins the copy order of extends: a hook defined on
// the base overwrites an identically-named hook the derived prototype
// already had. This inverts conventional override semantics but matches the
// original runtime.
func TestExtendsBaseHookWins(t *testing.T) {
	rt := testutils.RT()
	lenOf := func(n float64) *iasy.Function {
		return iasy.NewFunction("len hook", func(r *iasy.Runtime, args []iasy.Value) ([]iasy.Value, error) {
			return []iasy.Value{iasy.Number(n)}, nil
		})
	}
	base := newProto(nil, []iasy.Value{iasy.String("__len"), lenOf(42)})
	derived := newProto(nil, []iasy.Value{iasy.String("__len"), lenOf(1)})

	combine := testutils.CallGlobal(t, "extends", base)[0].(*iasy.Function)
	_, err := rt.Call(combine, derived)
	require.NoError(t, err)

	n, err := rt.Length(derived)
	require.NoError(t, err)
	require.Equal(t, 42, n)
}

// TestExtendsSkipsName tests that __name never crosses from base to
// derived, even when the derived prototype has no name of its own.
func TestExtendsSkipsName(t *testing.T) {
	rt := testutils.RT()
	base := newProto(nil, []iasy.Value{iasy.String("__name"), iasy.String("Base")})
	derived := iasy.NewTable()

	combine := testutils.CallGlobal(t, "extends", base)[0].(*iasy.Function)
	_, err := rt.Call(combine, derived)
	require.NoError(t, err)

	require.Equal(t, iasy.Value(iasy.Nil), derived.Metatable().RawGet(iasy.String("__name")))
	require.Equal(t, "object", rt.TypeOf(derived))
	// The name still reaches instances of base itself through new.
	inst := testutils.CallGlobal(t, "new", base)[0]
	require.Equal(t, "Base", rt.TypeOf(inst))
}

// TestExtendsInstance tests the end-to-end shape from the original
// runtime's documentation: a derived prototype keeps its own hooks, gains
// the base's, and instances see fields from the whole chain.
func TestExtendsInstance(t *testing.T) {
	rt := testutils.RT()
	str := iasy.NewFunction("tostring hook", func(r *iasy.Runtime, args []iasy.Value) ([]iasy.Value, error) {
		return []iasy.Value{iasy.String("stringified")}, nil
	})
	length := iasy.NewFunction("len hook", func(r *iasy.Runtime, args []iasy.Value) ([]iasy.Value, error) {
		return []iasy.Value{iasy.Number(42)}, nil
	})
	base := newProto(
		[]iasy.Value{iasy.String("property"), iasy.String("value")},
		[]iasy.Value{iasy.String("__tostring"), str},
	)
	derived := newProto(
		[]iasy.Value{iasy.String("another_property"), iasy.String("another value")},
		[]iasy.Value{iasy.String("__len"), length},
	)
	combine := testutils.CallGlobal(t, "extends", base)[0].(*iasy.Function)
	_, err := rt.Call(combine, derived)
	require.NoError(t, err)

	inst := testutils.CallGlobal(t, "new", derived)[0].(*iasy.Table)

	s, err := rt.ToString(inst)
	require.NoError(t, err)
	require.Equal(t, "stringified", s)

	n, err := rt.Length(inst)
	require.NoError(t, err)
	require.Equal(t, 42, n)

	v, err := rt.Index(inst, iasy.String("property"))
	require.NoError(t, err)
	require.Equal(t, iasy.Value(iasy.String("value")), v)
	v, err = rt.Index(inst, iasy.String("another_property"))
	require.NoError(t, err)
	require.Equal(t, iasy.Value(iasy.String("another value")), v)
}

// TestExtendsArgKind tests the argument validation of extends.
func TestExtendsArgKind(t *testing.T) {
	err := testutils.CallGlobalErr(t, "extends", iasy.String("nope"))
	require.EqualError(t, err, "bad argument #1 to 'extends' (table expected, got string)")
	err = testutils.CallGlobalErr(t, "extends")
	require.EqualError(t, err, "bad argument #1 to 'extends' (table expected, got no value)")
}

// TestTypeOf tests the semantic classification of every kind of value.
func TestTypeOf(t *testing.T) {
	rt := testutils.RT()
	anon := iasy.NewTable()
	anon.SetMetatable(iasy.NewTable())
	named := testutils.Proto("Widget")
	inst := testutils.CallGlobal(t, "new", named)[0]
	instAnon := testutils.CallGlobal(t, "new", iasy.NewTable())[0]

	cases := map[string]struct {
		v    iasy.Value
		want string
	}{
		"Number":        {iasy.Number(5), "number"},
		"String":        {iasy.String("hi"), "string"},
		"Boolean":       {iasy.False, "boolean"},
		"Nil":           {iasy.Nil, "nil"},
		"Function":      {rt.Global("type"), "function"},
		"PlainTable":    {iasy.NewTable(), "table"},
		"AnonObject":    {anon, "object"},
		"NamedInstance": {inst, "Widget"},
		"AnonInstance":  {instAnon, "object"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, c.want, rt.TypeOf(c.v))
			res := testutils.CallGlobal(t, "type", c.v)
			require.Equal(t, []iasy.Value{iasy.String(c.want)}, res)
		})
	}
}

// TestTypeNoArg tests that type with no argument raises, while type(nil)
// does not.
func TestTypeNoArg(t *testing.T) {
	err := testutils.CallGlobalErr(t, "type")
	require.EqualError(t, err, "bad argument #1 to 'type' (value expected)")
	res := testutils.CallGlobal(t, "type", iasy.Nil)
	require.Equal(t, []iasy.Value{iasy.String("nil")}, res)
}

// TestSame tests the same predicate over representative sequences.
func TestSame(t *testing.T) {
	widget := testutils.Proto("Widget")
	gadget := testutils.Proto("Gadget")
	w1 := testutils.CallGlobal(t, "new", widget)[0]
	w2 := testutils.CallGlobal(t, "new", widget)[0]
	g := testutils.CallGlobal(t, "new", gadget)[0]

	cases := map[string]struct {
		seq  *iasy.Table
		want iasy.Value
	}{
		"Empty":           {testutils.Seq(), iasy.False},
		"Numbers":         {testutils.Seq(iasy.Number(1), iasy.Number(2), iasy.Number(3)), iasy.True},
		"Mixed":           {testutils.Seq(iasy.Number(1), iasy.String("a"), iasy.Number(3)), iasy.False},
		"Named":           {testutils.Seq(w1, w2), iasy.True},
		"NamedThenPlain":  {testutils.Seq(w1, iasy.NewTable()), iasy.False},
		"DifferentNames":  {testutils.Seq(w1, g), iasy.False},
		"PlainTables":     {testutils.Seq(iasy.NewTable(), iasy.NewTable()), iasy.True},
		"Single":          {testutils.Seq(iasy.String("x")), iasy.True},
		"NumberThenNamed": {testutils.Seq(iasy.Number(1), w1), iasy.False},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			res := testutils.CallGlobal(t, "same", c.seq)
			require.Equal(t, []iasy.Value{c.want}, res)
		})
	}
}

// TestSameRunningLabelDrift pins the stateful drift of same: the running
// label is re-derived from the current element whenever it is "table", so a
// leading plain table absorbs a following object's label, while the
// mirrored sequence does not compare equal.
func TestSameRunningLabelDrift(t *testing.T) {
	widget := testutils.Proto("Widget")
	w := testutils.CallGlobal(t, "new", widget)[0]
	anon := iasy.NewTable()
	anon.SetMetatable(iasy.NewTable())

	cases := map[string]struct {
		seq  *iasy.Table
		want iasy.Value
	}{
		"PlainThenNamed":      {testutils.Seq(iasy.NewTable(), w), iasy.True},
		"NamedThenPlain":      {testutils.Seq(w, iasy.NewTable()), iasy.False},
		"PlainThenAnon":       {testutils.Seq(iasy.NewTable(), anon), iasy.True},
		"PlainNamedThenOther": {testutils.Seq(iasy.NewTable(), w, iasy.Number(1)), iasy.False},
		"PlainThenPrimitive":  {testutils.Seq(iasy.NewTable(), iasy.Number(1)), iasy.False},
		"AnonThenPlain":       {testutils.Seq(anon, iasy.NewTable()), iasy.False},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			res := testutils.CallGlobal(t, "same", c.seq)
			require.Equal(t, []iasy.Value{c.want}, res)
		})
	}
}

// TestSameArgKind tests the argument validation of same.
func TestSameArgKind(t *testing.T) {
	err := testutils.CallGlobalErr(t, "same", iasy.Number(1))
	require.EqualError(t, err, "bad argument #1 to 'same' (table expected, got number)")
}

// TestAll tests the all quantifier, including the vacuous empty case and
// host truthiness.
func TestAll(t *testing.T) {
	cases := map[string]struct {
		seq  *iasy.Table
		want []iasy.Value
	}{
		"AllTrue":    {testutils.Seq(iasy.True, iasy.True, iasy.True), []iasy.Value{iasy.True}},
		"FalseAt2":   {testutils.Seq(iasy.True, iasy.False, iasy.True), []iasy.Value{iasy.False, iasy.Number(2)}},
		"Empty":      {testutils.Seq(), []iasy.Value{iasy.True}},
		"ZeroTruthy": {testutils.Seq(iasy.Number(0), iasy.String(""), iasy.NewTable()), []iasy.Value{iasy.True}},
		"NilAt1":     {testutils.Seq(iasy.False), []iasy.Value{iasy.False, iasy.Number(1)}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			res := testutils.CallGlobal(t, "all", c.seq)
			require.Equal(t, c.want, res)
		})
	}
}

// TestAny tests the any quantifier.
func TestAny(t *testing.T) {
	cases := map[string]struct {
		seq  *iasy.Table
		want []iasy.Value
	}{
		"TrueAt3":    {testutils.Seq(iasy.False, iasy.False, iasy.True), []iasy.Value{iasy.True, iasy.Number(3)}},
		"NoneTruthy": {testutils.Seq(iasy.False, iasy.False), []iasy.Value{iasy.False}},
		"Empty":      {testutils.Seq(), []iasy.Value{iasy.False}},
		"ZeroAt1":    {testutils.Seq(iasy.Number(0)), []iasy.Value{iasy.True, iasy.Number(1)}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			res := testutils.CallGlobal(t, "any", c.seq)
			require.Equal(t, c.want, res)
		})
	}
}

// TestQuantifiersHonorLenHook tests that all and any take the sequence
// length from the __len hook when one is attached.
func TestQuantifiersHonorLenHook(t *testing.T) {
	one := iasy.NewFunction("len hook", func(r *iasy.Runtime, args []iasy.Value) ([]iasy.Value, error) {
		return []iasy.Value{iasy.Number(1)}, nil
	})
	seq := testutils.Seq(iasy.True, iasy.False, iasy.False)
	seq.SetMetatable(testutils.With(iasy.String("__len"), one))

	require.Equal(t, []iasy.Value{iasy.True}, testutils.CallGlobal(t, "all", seq))
	require.Equal(t, []iasy.Value{iasy.True, iasy.Number(1)}, testutils.CallGlobal(t, "any", seq))
}

// TestQuantifierArgKind tests the argument validation of all and any.
func TestQuantifierArgKind(t *testing.T) {
	for _, name := range []string{"all", "any"} {
		err := testutils.CallGlobalErr(t, name, iasy.String("x"))
		require.EqualError(t, err, "bad argument #1 to '"+name+"' (table expected, got string)")
	}
}
