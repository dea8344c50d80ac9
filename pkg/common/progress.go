package common

import (
	"context"
)

// Progress is the checkpoint a long search passes through on every recursive call or trial.
// It reports cancellation and logs a heartbeat every Every steps. The heartbeat is
// informational only and never changes the search.
type Progress struct {
	Every int
	What  string

	steps int64
}

// NewProgress returns a checkpoint logging every n steps, never when n <= 0
func NewProgress(what string, n int) *Progress {
	return &Progress{Every: n, What: what}
}

// Step records one unit of work and returns ctx.Err() when the search must stop
func (p *Progress) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == nil {
		return nil
	}
	p.steps++
	if p.Every > 0 && p.steps%int64(p.Every) == 0 {
		Logger(ctx).Debugf("%s: %d done", p.What, p.steps)
	}
	return nil
}

// Steps returns the number of steps recorded so far
func (p *Progress) Steps() int64 {
	if p == nil {
		return 0
	}
	return p.steps
}
