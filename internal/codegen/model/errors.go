package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a declaration error.
type ErrorKind int

const (
	MalformedDeclaration ErrorKind = iota + 1
	DuplicateDeclaration
	UnresolvedReference
	UnsupportedType
	InvalidPattern
	InconsistentOptionality
)

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrMalformedDeclaration    = errors.New("malformed declaration")
	ErrDuplicateDeclaration    = errors.New("duplicate declaration")
	ErrUnresolvedReference     = errors.New("unresolved reference")
	ErrUnsupportedType         = errors.New("unsupported type")
	ErrInvalidPattern          = errors.New("invalid pattern")
	ErrInconsistentOptionality = errors.New("inconsistent optionality")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case MalformedDeclaration:
		return ErrMalformedDeclaration
	case DuplicateDeclaration:
		return ErrDuplicateDeclaration
	case UnresolvedReference:
		return ErrUnresolvedReference
	case UnsupportedType:
		return ErrUnsupportedType
	case InvalidPattern:
		return ErrInvalidPattern
	case InconsistentOptionality:
		return ErrInconsistentOptionality
	default:
		return nil
	}
}

func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Position locates a declaration in a scanned file.
type Position struct {
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("line %d", p.Line)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Error is returned for every scan and validation failure. Prev is set when
// the failure conflicts with an earlier declaration.
type Error struct {
	Kind  ErrorKind
	Pos   Position
	Name  string
	Prev  *Position
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Pos.File != "" || e.Pos.Line != 0 {
		b.WriteString(" at ")
		b.WriteString(e.Pos.String())
	}
	if e.Name != "" {
		b.WriteString(": ")
		b.WriteString(e.Name)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Prev != nil {
		b.WriteString(" (previous declaration at ")
		b.WriteString(e.Prev.String())
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	var errs []error
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Errorf builds an *Error of the given kind at pos.
func Errorf(kind ErrorKind, pos Position, name string, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Name: name, Msg: fmt.Sprintf(format, args...)}
}
