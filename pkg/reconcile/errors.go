package reconcile

import (
	"errors"
	"fmt"
)

// ErrUnmounted is returned by Mount.Update after Unmount.
var ErrUnmounted = errors.New("reconcile: mount is unmounted")

// RenderError reports a render function that panicked or produced an
// invalid tree. The previously patched host tree is left untouched.
type RenderError struct {
	Component string
	Panic     any   // recovered panic value, if any
	Err       error // validation error, if any
}

func (e *RenderError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("reconcile: render %s panicked: %v", e.Component, e.Panic)
	}
	return fmt.Sprintf("reconcile: render %s: %v", e.Component, e.Err)
}

func (e *RenderError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if err, ok := e.Panic.(error); ok {
		return err
	}
	return nil
}
