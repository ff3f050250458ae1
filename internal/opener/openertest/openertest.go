// Package openertest provides an opener.Opener that records targets instead
// of launching anything.
package openertest

import (
	"context"
	"sync"

	"zara/internal/opener"
)

var _ opener.Opener = (*Recorder)(nil)

// Recorder remembers what it was asked to open. Open fails with Err when set.
type Recorder struct {
	mu     sync.Mutex
	Opened []string
	Err    error
}

func (r *Recorder) Open(_ context.Context, target string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Opened = append(r.Opened, target)
	return nil
}
