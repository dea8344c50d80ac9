package common

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

type searchCancelContextKey string

const searchCancelContextKeyVal = searchCancelContextKey("search.cancel")

// SearchCancelContext returns the context a running search watches. It is canceled on
// the first interrupt, while ctx itself stays alive so results found so far can still
// be written out.
func SearchCancelContext(ctx context.Context) context.Context {
	val := ctx.Value(searchCancelContextKeyVal)
	if val != nil {
		if searchCtx, ok := val.(context.Context); ok {
			return searchCtx
		}
	}
	return ctx
}

// WithSearchCancelContext adds the search context to ctx
func WithSearchCancelContext(ctx context.Context, searchCtx context.Context) context.Context {
	return context.WithValue(ctx, searchCancelContextKeyVal, searchCtx)
}

func createGracefulCancellationContext() (context.Context, func(), chan os.Signal) {
	ctx := context.Background()
	ctx, forceCancel := context.WithCancel(ctx)
	searchCtx, cancel := context.WithCancel(ctx)
	ctx = WithSearchCancelContext(ctx, searchCtx)

	// first Ctrl+C stops the search, the second one or SIGTERM stops everything
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-c:
			if sig == os.Interrupt {
				cancel()
				select {
				case <-c:
					forceCancel()
				case <-ctx.Done():
				}
			} else {
				forceCancel()
			}
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(c)
		forceCancel()
		cancel()
	}, c
}

// CreateGracefulCancellationContext returns a context wired to SIGINT and SIGTERM
func CreateGracefulCancellationContext() (context.Context, func()) {
	ctx, cancel, _ := createGracefulCancellationContext()
	return ctx, cancel
}
