// Package task waits on remotely executing quantum tasks until they reach a
// terminal state. The task lifecycle itself is owned by the service; this
// package only polls it.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/waihoh/amazon-braket-examples/internal/braket"
)

// Fetcher retrieves the current state of a quantum task.
type Fetcher interface {
	GetTask(ctx context.Context, arn string) (*braket.TaskInfo, error)
}

// Poller polls task status on a fixed interval until a terminal state.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	logger   *slog.Logger
}

// NewPoller creates a Poller. If interval is <= 0, it defaults to 5s.
func NewPoller(f Fetcher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		fetcher:  f,
		interval: interval,
		logger:   slog.Default(),
	}
}

// Wait polls until the task reaches a terminal status or ctx is cancelled.
// onUpdate, if non-nil, is invoked whenever the observed status changes.
func (p *Poller) Wait(ctx context.Context, arn string, onUpdate func(*braket.TaskInfo)) (*braket.TaskInfo, error) {
	var last braket.Status
	for {
		info, err := p.fetcher.GetTask(ctx, arn)
		if err != nil {
			return nil, fmt.Errorf("polling task %s: %w", arn, err)
		}

		if info.Status != last {
			p.logger.Debug("task status changed", "arn", arn, "status", info.Status)
			if onUpdate != nil {
				onUpdate(info)
			}
			last = info.Status
		}

		if info.Status.Terminal() {
			return info, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.interval):
		}
	}
}

// WaitAll waits for every task concurrently and returns the terminal state of
// each, keyed by ARN. The first poll error cancels the remaining waits.
func (p *Poller) WaitAll(ctx context.Context, arns []string) (map[string]*braket.TaskInfo, error) {
	results := make(map[string]*braket.TaskInfo, len(arns))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, arn := range arns {
		g.Go(func() error {
			info, err := p.Wait(ctx, arn, nil)
			if err != nil {
				return err
			}
			mu.Lock()
			results[arn] = info
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
