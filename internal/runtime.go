package internal

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Version is the runtime version, used for the _VERSION global. It bears no
// relation to versions of the C implementation.
const Version = "Iasy 0.1"

// Runtime is an Iasy runtime core: the global environment plus the services
// base functions need. A Runtime and every table reachable from it belong to
// a single logical thread; no operation here synchronizes access.
type Runtime struct {
	// Globals is the global environment. Base functions are installed here,
	// and it is reachable from Iasy code as _G.
	Globals *Table

	// stdout receives the output of print.
	stdout io.Writer
	// log receives warnings from warn and runtime debug events.
	log zerolog.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithStdout directs print output to w instead of standard output.
func WithStdout(w io.Writer) Option {
	return func(r *Runtime) { r.stdout = w }
}

// WithLogger installs the logger that warn and runtime debug events write
// to. The default logger discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runtime) { r.log = log }
}

// NewRuntime prepares a new runtime with the base library installed.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		Globals: NewTable(),
		stdout:  os.Stdout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.initObject()
	r.initBase()
	r.Globals.RawSet(String("_G"), r.Globals)
	r.Globals.RawSet(String("_VERSION"), String(Version))
	return r
}

// Register installs a base function into the global environment.
func (r *Runtime) Register(name string, fn Fn) {
	r.Globals.RawSet(String(name), NewFunction(name, fn))
}

// Global returns the value of a global by name, without delegation.
func (r *Runtime) Global(name string) Value {
	return r.Globals.RawGet(String(name))
}
