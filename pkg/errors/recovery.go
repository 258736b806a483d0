package errors

import (
	"fmt"
	"runtime/debug"
)

// RecoverPanic turns a recovered panic value into an internal error carrying the stack.
func RecoverPanic(r interface{}) error {
	if r == nil {
		return nil
	}

	var err error
	switch v := r.(type) {
	case error:
		err = v
	case string:
		err = fmt.Errorf("panic: %s", v)
	default:
		err = fmt.Errorf("panic: %v", v)
	}

	return ErrInternal.
		WithCause(err).
		WithDetail("panic", true).
		WithDetail("stack_trace", string(debug.Stack()))
}

// Guard runs fn and reports a panic through onPanic instead of crashing the goroutine.
func Guard(fn func(), onPanic func(error)) {
	defer func() {
		if r := recover(); r != nil {
			err := RecoverPanic(r)
			if onPanic != nil {
				onPanic(err)
			}
		}
	}()
	fn()
}
