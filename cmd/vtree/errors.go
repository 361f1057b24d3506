package main

import (
	stderrors "errors"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// classify gives err the code of the most specific registered error it
// matches, falling back to code. Coded errors pass through unchanged.
func classify(err error, code string) error {
	if err == nil {
		return nil
	}
	var e *vterrors.Error
	if stderrors.As(err, &e) {
		return e
	}
	var re *reconcile.RenderError
	var ne *host.NodeError
	switch {
	case stderrors.Is(err, vdom.ErrDuplicateKey):
		return vterrors.New("V041").Wrap(err)
	case stderrors.As(err, &re):
		return vterrors.New("V040").Wrap(err)
	case host.IsMissing(err):
		return vterrors.New("V061").Wrap(err)
	case stderrors.As(err, &ne):
		return vterrors.New("V060").Wrap(err)
	}
	return vterrors.New(code).Wrap(err)
}
