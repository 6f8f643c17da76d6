package hotreload

import (
	"errors"
	"strings"
)

// Phase indicates where in a reload the error occurred.
type Phase string

const (
	PhaseRead   Phase = "read"   // reading the unit image
	PhaseLoad   Phase = "load"   // creating the isolated context
	PhaseScan   Phase = "scan"   // calling the entry point and decoding descriptors
	PhaseUnload Phase = "unload" // tearing down and verifying release
)

// Kind categorizes the error.
type Kind string

const (
	KindIO          Kind = "io"
	KindMalformed   Kind = "malformed"
	KindDuplicateID Kind = "duplicate_id"
	KindNotLoaded   Kind = "not_loaded"
	KindLeaked      Kind = "leaked"
	KindPoisoned    Kind = "poisoned"
)

// Error is the structured error returned by the host.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Path   string
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind alone, which is how the Err* sentinels are compared.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Phase == "" || e.Phase == t.Phase)
}

// Sentinels for errors.Is.
var (
	ErrIO          = &Error{Kind: KindIO}
	ErrMalformed   = &Error{Kind: KindMalformed}
	ErrDuplicateID = &Error{Kind: KindDuplicateID}
	ErrNotLoaded   = &Error{Kind: KindNotLoaded}
	ErrLeaked      = &Error{Kind: KindLeaked}
	ErrPoisoned    = &Error{Kind: KindPoisoned}
)

// IsFatal reports whether err means a unit could not be proven released.
// The host refuses further loads after a fatal error; callers should stop
// the process.
func IsFatal(err error) bool {
	return errors.Is(err, ErrLeaked) || errors.Is(err, ErrPoisoned)
}

// malformed wraps a scan failure, keeping structured causes intact.
func malformed(path, detail string, cause error) *Error {
	var e *Error
	if errors.As(cause, &e) {
		out := *e
		out.Path = path
		return &out
	}
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindMalformed,
		Path:   path,
		Detail: detail,
		Cause:  cause,
	}
}
