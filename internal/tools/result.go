// Package tools is the surface agents call to run combat. Every tool takes
// a typed argument struct and answers with a Result: expected failures such
// as a missing combatant or an invalid victor are reported inside the
// result, never as a transport error.
package tools

import (
	stderrors "errors"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
)

// ErrorInfo describes why a tool call failed
type ErrorInfo struct {
	Code    string `json:"code" jsonschema:"stable error code such as NOT_FOUND or FAILED_PRECONDITION"`
	Message string `json:"message" jsonschema:"human-readable failure description"`
}

// Result is the success or failure union every tool returns
type Result[T any] struct {
	Success bool       `json:"success" jsonschema:"whether the tool call succeeded"`
	Data    *T         `json:"data,omitempty" jsonschema:"tool output when successful"`
	Error   *ErrorInfo `json:"error,omitempty" jsonschema:"failure details when unsuccessful"`
}

// Reply is the type-erased view of a Result used by transports
type Reply interface {
	Succeeded() bool
	Failure() *ErrorInfo
}

var _ Reply = Result[struct{}]{}

// Succeeded reports whether the call succeeded
func (r Result[T]) Succeeded() bool {
	return r.Success
}

// Failure returns the error details, nil on success
func (r Result[T]) Failure() *ErrorInfo {
	return r.Error
}

// OK wraps data in a successful result
func OK[T any](data *T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail converts err into a failed result
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.Internal("tool failed without an error")
	}
	return Result[T]{Error: &ErrorInfo{
		Code:    errors.GetCode(err).String(),
		Message: describe(err),
	}}
}

// describe joins the messages of a wrapped error chain without the code
// prefixes *errors.Error adds to Error()
func describe(err error) string {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + describe(e.Cause)
}
