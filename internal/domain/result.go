package domain

// Result carries either data or a client-facing failure message for flows
// where failure is an expected outcome rather than an error.
type Result[T any] struct {
	IsSuccess bool
	Data      T
	Error     string
}

// Success wraps data in a successful Result.
func Success[T any](data T) Result[T] { return Result[T]{IsSuccess: true, Data: data} }

// Failure builds a failed Result with the given message.
func Failure[T any](msg string) Result[T] { return Result[T]{Error: msg} }
