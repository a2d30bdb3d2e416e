package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/idxget/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Pool runs handlers with bounded parallelism and panic recovery
//
// Behavior:
//   - limit <= 1: handlers run on the caller's goroutine, one at a time
//   - limit > 1: at most limit handlers run concurrently; Go blocks while all slots are busy
//   - The first handler error cancels Context() and is returned by Wait
//   - Panics are recovered and logged with their stack; they do not stop the pool
type Pool struct {
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelCauseFunc
	limit  int
	err    error
}

// NewPool creates a pool bound to ctx
func NewPool(ctx context.Context, limit int) *Pool {
	cctx, cancel := context.WithCancelCause(ctx)
	group, gctx := errgroup.WithContext(cctx)
	if limit > 1 {
		group.SetLimit(limit)
	}

	return &Pool{
		group:  group,
		ctx:    gctx,
		cancel: cancel,
		limit:  limit,
	}
}

// Context returns the pool context, cancelled after the first handler error
func (p *Pool) Context() context.Context {
	return p.ctx
}

// Go schedules handler
func (p *Pool) Go(handler func(ctx context.Context) error) {
	if p.limit <= 1 {
		if p.err != nil {
			return
		}
		if err := p.run(handler); err != nil {
			p.err = err
			p.cancel(err)
		}
		return
	}

	p.group.Go(func() error {
		return p.run(handler)
	})
}

// Wait blocks until all scheduled handlers finish and returns the first error
func (p *Pool) Wait() error {
	defer p.cancel(nil)

	if err := p.group.Wait(); err != nil {
		return err
	}
	return p.err
}

func (p *Pool) run(handler func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.From(p.ctx).Error("panic in pool handler",
				"recover", r,
				"stack", string(debug.Stack()))
		}
	}()

	return handler(p.ctx)
}
