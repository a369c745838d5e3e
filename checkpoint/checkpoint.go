// Package checkpoint annotates errors with the file and line of the caller
// so that a failure deep inside the parsing layers can be traced without a
// full stack trace. Every error attached to a checkpoint stays visible to
// errors.Is and errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

// From wraps err in a new checkpoint carrying the caller position.
// It returns nil if err is nil.
func From(err error) error {
	// io.EOF and io.ErrUnexpectedEOF must stay comparable by ==.
	// https://github.com/golang/go/issues/39155
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return err
	}
	if err == nil {
		return nil
	}

	_, file, line, ok := runtime.Caller(1)

	return &checkpoint{
		err:      err,
		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

// Wrap creates a checkpoint from prev and attaches err as an additional
// marker describing it. It returns nil if prev is nil, so call sites can
// wrap unconditionally:
//
//	return checkpoint.Wrap(doSomething(), ErrSomethingFailed)
//
// Both prev and err can afterwards be matched with errors.Is.
func Wrap(prev, err error) error {
	if prev == io.EOF {
		return io.EOF
	}
	if prev == nil {
		return nil
	}

	_, file, line, ok := runtime.Caller(1)

	return &checkpoint{
		err:  err,
		prev: prev,

		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

type checkpoint struct {
	err  error
	prev error

	callerOk bool
	file     string
	line     int
}

func (e *checkpoint) Error() string {
	if e.prev == nil {
		if e.callerOk {
			return fmt.Sprintf("%s:%d: %v", e.file, e.line, e.err)
		}
		return e.err.Error()
	}

	prev := e.prev.Error()
	if _, ok := e.prev.(*checkpoint); !ok {
		prev = strings.ReplaceAll(prev, "\n", "\n\t")
	}

	if e.err == nil {
		if e.callerOk {
			return fmt.Sprintf("%s:%d:\n\t%v", e.file, e.line, prev)
		}
		return prev
	}

	if e.callerOk {
		return fmt.Sprintf("%s:%d: %v\n\t%v", e.file, e.line, e.err, prev)
	}
	return fmt.Sprintf("%v\n\t%v", e.err, prev)
}

func (e *checkpoint) Unwrap() error {
	if e.prev != nil {
		return e.prev
	}
	return e.err
}

func (e *checkpoint) Is(target error) bool {
	return errors.Is(e.err, target)
}

func (e *checkpoint) As(target interface{}) bool {
	if e.err == nil {
		return false
	}
	return errors.As(e.err, target)
}
