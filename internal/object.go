package internal

// This file implements the object model of the Iasy base library: instance
// creation from prototype tables, single inheritance between prototypes, and
// semantic type classification.

// initObject installs the object-model base functions.
func (r *Runtime) initObject() {
	funcs := map[string]Fn{
		"all":     BaseAll,
		"any":     BaseAny,
		"extends": BaseExtends,
		"new":     BaseNew,
		"same":    BaseSame,
		"type":    BaseType,
	}
	for name, fn := range funcs {
		r.Register(name, fn)
	}
}

// hookset reads a table's __metatable field as its hook set. The read is
// delegated, so a derived prototype inherits its base's hook set; a missing
// or non-table field yields a fresh empty hook set.
func (r *Runtime) hookset(t *Table) (*Table, error) {
	v, err := r.Index(t, metaProtect)
	if err != nil {
		return nil, err
	}
	if hooks, ok := v.(*Table); ok {
		return hooks, nil
	}
	return NewTable(), nil
}

// New creates an instance of the prototype proto: a fresh empty table whose
// behavior descriptor copies proto's hook set and delegates unknown field
// reads to proto. The descriptor is built once per prototype; the first call
// memoizes it on the prototype and every later call attaches the same
// descriptor, so all instances of one prototype share it by reference.
func (r *Runtime) New(proto *Table) (*Table, error) {
	if m := proto.instanceMeta; m != nil {
		inst := NewTable()
		inst.SetMetatable(m)
		return inst, nil
	}
	hooks, err := r.hookset(proto)
	if err != nil {
		return nil, err
	}
	m := NewTable()
	hooks.Foreach(func(k, v Value) bool {
		m.RawSet(k, v)
		return true
	})
	m.RawSet(metaIndex, proto)
	proto.instanceMeta = m
	r.log.Debug().Uint64("proto", uint64(proto.UniqueID())).Msg("memoized instance descriptor")
	inst := NewTable()
	inst.SetMetatable(m)
	return inst, nil
}

// Extends returns a combinator bound to base. Applied to a derived prototype,
// it copies base's hooks into derived's hook set, wires derived's fallback
// index to base, attaches the result as derived's descriptor, and returns
// derived itself, mutated in place. The combinator is reusable across any
// number of derived tables.
//
// Copying is an unconditional key overwrite, so a hook defined on base
// replaces an identically-named hook on derived. That inverts the usual
// override direction, but it is what the original runtime does, so it is
// kept; see TestExtendsBaseHookWins. The __name hook is never copied.
func (r *Runtime) Extends(base *Table) func(*Table) (*Table, error) {
	return func(derived *Table) (*Table, error) {
		dm, err := r.hookset(derived)
		if err != nil {
			return nil, err
		}
		bm, err := r.hookset(base)
		if err != nil {
			return nil, err
		}
		bm.Foreach(func(k, v Value) bool {
			if k == metaName {
				return true
			}
			dm.RawSet(k, v)
			return true
		})
		dm.RawSet(metaIndex, base)
		derived.SetMetatable(dm)
		return derived, nil
	}
}

// classKind discriminates the semantic classification of a value.
type classKind int

const (
	// classPrimitive is any non-table value.
	classPrimitive classKind = iota
	// classPlainTable is a table with no behavior descriptor.
	classPlainTable
	// classObject is a table with a descriptor but no textual __name hook.
	classObject
	// classNamed is a table whose descriptor has a textual __name hook.
	classNamed
)

// class is the semantic classification of a value, from which type and same
// derive their labels.
type class struct {
	kind classKind
	name string
}

// classify computes the semantic classification of any value. The __name
// lookup on the descriptor is raw.
func classify(v Value) class {
	t, ok := v.(*Table)
	if !ok {
		return class{kind: classPrimitive, name: KindOf(v).String()}
	}
	m := t.Metatable()
	if m == nil {
		return class{kind: classPlainTable}
	}
	if n, ok := m.RawGet(metaName).(String); ok {
		return class{kind: classNamed, name: string(n)}
	}
	return class{kind: classObject}
}

// label renders the classification as the type label Iasy code observes.
func (c class) label() string {
	switch c.kind {
	case classPlainTable:
		return "table"
	case classObject:
		return "object"
	default:
		return c.name
	}
}

// TypeOf returns the semantic type label of any value: the descriptor's
// __name for a named object, "object" for a table with any other descriptor,
// "table" for a plain table, and the intrinsic kind name otherwise.
func (r *Runtime) TypeOf(v Value) string {
	return classify(v).label()
}

// Same reports whether every element of the 1-based sequence seq has the
// same type label. The empty sequence is not same.
//
// The comparison target is a running label, not the first element's label:
// whenever the running label is "table" and the current element carries a
// descriptor, the running label is re-derived from the current element
// before comparing. Consequently {plain table, Widget} is same while
// {Widget, plain table} is not. The original runtime drifts this way, so the
// behavior is kept exactly; see TestSameRunningLabelDrift.
func (r *Runtime) Same(seq *Table) (bool, error) {
	n, err := r.Length(seq)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	running := classify(seq.RawGet(Number(1))).label()
	for i := 2; i <= n; i++ {
		c := classify(seq.RawGet(Number(i)))
		if running == "table" && c.kind != classPrimitive {
			running = c.label()
		}
		if c.label() != running {
			return false, nil
		}
	}
	return true, nil
}

// All reports whether every element of the 1-based sequence seq is truthy.
// When one is not, ok is false and i is its index; otherwise i is 0. The
// empty sequence is vacuously all-truthy.
func (r *Runtime) All(seq *Table) (ok bool, i int, err error) {
	n, err := r.Length(seq)
	if err != nil {
		return false, 0, err
	}
	for i := 1; i <= n; i++ {
		if !Truthy(seq.RawGet(Number(i))) {
			return false, i, nil
		}
	}
	return true, 0, nil
}

// Any reports whether some element of the 1-based sequence seq is truthy.
// When one is, ok is true and i is its index; otherwise i is 0.
func (r *Runtime) Any(seq *Table) (ok bool, i int, err error) {
	n, err := r.Length(seq)
	if err != nil {
		return false, 0, err
	}
	for i := 1; i <= n; i++ {
		if Truthy(seq.RawGet(Number(i))) {
			return true, i, nil
		}
	}
	return false, 0, nil
}

// BaseNew is an Iasy base function.
//
// new creates an instance of a prototype table. The instance starts empty,
// delegates unknown field reads to the prototype, and keeps its own writes
// local.
func BaseNew(r *Runtime, args []Value) ([]Value, error) {
	proto, err := tableArg("new", args, 1)
	if err != nil {
		return nil, err
	}
	inst, err := r.New(proto)
	if err != nil {
		return nil, err
	}
	return []Value{inst}, nil
}

// BaseExtends is an Iasy base function.
//
// extends returns a function that wires its argument to inherit from the
// given base table, returning the argument itself.
func BaseExtends(r *Runtime, args []Value) ([]Value, error) {
	base, err := tableArg("extends", args, 1)
	if err != nil {
		return nil, err
	}
	combine := r.Extends(base)
	f := NewFunction("extends", func(r *Runtime, args []Value) ([]Value, error) {
		derived, err := tableArg("extends", args, 1)
		if err != nil {
			return nil, err
		}
		d, err := combine(derived)
		if err != nil {
			return nil, err
		}
		return []Value{d}, nil
	})
	return []Value{f}, nil
}

// BaseType is an Iasy base function.
//
// type returns the semantic type label of its argument.
func BaseType(r *Runtime, args []Value) ([]Value, error) {
	v, err := anyArg("type", args, 1)
	if err != nil {
		return nil, err
	}
	return []Value{String(r.TypeOf(v))}, nil
}

// BaseSame is an Iasy base function.
//
// same returns whether every element of a sequence has the same type label.
func BaseSame(r *Runtime, args []Value) ([]Value, error) {
	seq, err := tableArg("same", args, 1)
	if err != nil {
		return nil, err
	}
	ok, err := r.Same(seq)
	if err != nil {
		return nil, err
	}
	return []Value{Boolean(ok)}, nil
}

// BaseAll is an Iasy base function.
//
// all returns true if every element of a sequence is truthy, or false and
// the index of the first falsy element.
func BaseAll(r *Runtime, args []Value) ([]Value, error) {
	seq, err := tableArg("all", args, 1)
	if err != nil {
		return nil, err
	}
	ok, i, err := r.All(seq)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Value{False, Number(i)}, nil
	}
	return []Value{True}, nil
}

// BaseAny is an Iasy base function.
//
// any returns true and the index of the first truthy element of a sequence,
// or false if there is none.
func BaseAny(r *Runtime, args []Value) ([]Value, error) {
	seq, err := tableArg("any", args, 1)
	if err != nil {
		return nil, err
	}
	ok, i, err := r.Any(seq)
	if err != nil {
		return nil, err
	}
	if ok {
		return []Value{True, Number(i)}, nil
	}
	return []Value{False}, nil
}
