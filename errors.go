/*
 * errors.go, part of molsys.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 */

package molsys

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Kind classifies the errors produced by this library.
type Kind int

const (
	// ErrParse marks malformed input: bad format codes, missing sections,
	// fields that fail numeric parsing.
	ErrParse Kind = iota + 1
	// ErrStructure marks violations of the system model invariants:
	// freed identifiers, duplicate bonds, wrong term arity.
	ErrStructure
	// ErrInfeasible marks a bond-order/formal-charge problem with no
	// solution on some fragment.
	ErrInfeasible
	// ErrUnsupported marks input using a feature the library refuses.
	ErrUnsupported
	// ErrLookup marks a missing section, element symbol or parameter id.
	ErrLookup
)

func (k Kind) String() string {
	switch k {
	case ErrParse:
		return "parse error"
	case ErrStructure:
		return "structural invariant violation"
	case ErrInfeasible:
		return "chemistry infeasible"
	case ErrUnsupported:
		return "unsupported feature"
	case ErrLookup:
		return "lookup miss"
	}
	return "unknown error"
}

// Error implements the standard error interface. Error is the error
// interface for this library. The Decorate method adds information
// as the error travels up the call stack, without wrapping the
// error in another type.
type Error interface {
	error
	Kind() Kind
	Decorate(string) []string
}

// CError is the concrete error type returned by the library.
type CError struct {
	kind Kind
	msg  string
	deco []string
}

func newError(k Kind, msg string) *CError {
	return &CError{kind: k, msg: msg}
}

func errorf(k Kind, format string, args ...interface{}) *CError {
	return &CError{kind: k, msg: fmt.Sprintf(format, args...)}
}

// Errorf builds a library error of the given kind. It exists so the
// format subpackages report through the same taxonomy.
func Errorf(k Kind, format string, args ...interface{}) *CError {
	return errorf(k, format, args...)
}

// DecorateError adds a call-site marker to a library error, or wraps a
// foreign one.
func DecorateError(err error, deco string) error {
	return errDecorate(err, deco)
}

func (e *CError) Error() string {
	if len(e.deco) == 0 {
		return fmt.Sprintf("%s: %s", e.kind, e.msg)
	}
	return fmt.Sprintf("%s: %s (%s)", e.kind, e.msg, strings.Join(e.deco, "/"))
}

// Kind returns the taxonomy class of the error.
func (e *CError) Kind() Kind { return e.kind }

// Decorate adds deco to the error's decoration stack and returns the
// current stack. An empty string just queries the stack.
func (e *CError) Decorate(deco string) []string {
	if deco != "" {
		e.deco = append(e.deco, deco)
	}
	return e.deco
}

// IsKind reports whether err is a library error of the given kind.
func IsKind(err error, k Kind) bool {
	me, ok := err.(Error)
	return ok && me.Kind() == k
}

func errDecorate(err error, deco string) error {
	if me, ok := err.(Error); ok {
		me.Decorate(deco)
		return me
	}
	return fmt.Errorf("%s: %w", deco, err)
}

// logger is shared by the whole library. It stays a no-op unless the
// caller installs one with SetLogger.
var logger = zap.NewNop()

// SetLogger installs l as the library-wide logger. Passing nil restores
// the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger = zap.NewNop()
		return
	}
	logger = l
}
