package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

// RunGuard admits at most one computation run per scope at a time. The returned context is
// derived from ctx and is cancelled when release runs or when the guard can no longer
// vouch for exclusive ownership of the scope.
type RunGuard interface {
	Acquire(ctx context.Context, scope models.ComputationScope) (runCtx context.Context, release func(), err error)
}

// LocalRunGuard serialises runs within one process.
type LocalRunGuard struct {
	wait  time.Duration
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocalRunGuard returns a guard that waits up to wait for a busy scope.
func NewLocalRunGuard(wait time.Duration) *LocalRunGuard {
	return &LocalRunGuard{wait: wait, slots: make(map[string]chan struct{})}
}

func (g *LocalRunGuard) slot(key string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		g.slots[key] = ch
	}
	return ch
}

// Acquire blocks until the scope is free, the wait elapses or ctx ends.
func (g *LocalRunGuard) Acquire(ctx context.Context, scope models.ComputationScope) (context.Context, func(), error) {
	ch := g.slot(scope.String())
	timer := time.NewTimer(g.wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		runCtx, cancel := context.WithCancel(ctx)
		var once sync.Once
		return runCtx, func() {
			once.Do(func() {
				cancel()
				<-ch
			})
		}, nil
	case <-timer.C:
		return nil, nil, appErrors.ErrRunInProgress
	case <-ctx.Done():
		return nil, nil, busyErr(ctx.Err())
	}
}

func busyErr(err error) error {
	return appErrors.Wrap(err, appErrors.ErrRunInProgress.Code, appErrors.ErrRunInProgress.Status, appErrors.ErrRunInProgress.Message)
}

type leaseStore interface {
	AcquireLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	RenewLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, key, token string) error
}

// RedisRunGuard serialises runs across replicas with a Redis lease. The lease is renewed every
// ttl/3 while held; if it cannot be renewed before it expires the run context is cancelled.
type RedisRunGuard struct {
	store    leaseStore
	ttl      time.Duration
	wait     time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewRedisRunGuard builds a lease-backed guard.
func NewRedisRunGuard(store leaseStore, ttl, wait time.Duration, logger *zap.Logger) *RedisRunGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRunGuard{store: store, ttl: ttl, wait: wait, interval: 200 * time.Millisecond, logger: logger}
}

func leaseKey(scope models.ComputationScope) string {
	return "results:compute:lease:" + scope.String()
}

// Acquire polls for the lease until it is taken, the wait elapses or ctx ends.
func (g *RedisRunGuard) Acquire(ctx context.Context, scope models.ComputationScope) (context.Context, func(), error) {
	key := leaseKey(scope)
	token := uuid.NewString()
	deadline := time.Now().Add(g.wait)

	for {
		ok, err := g.store.AcquireLease(ctx, key, token, g.ttl)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire computation lease")
		}
		if ok {
			runCtx, release := g.hold(ctx, key, token)
			return runCtx, release, nil
		}
		if !time.Now().Before(deadline) {
			return nil, nil, appErrors.ErrRunInProgress
		}

		timer := time.NewTimer(g.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, nil, busyErr(ctx.Err())
		case <-timer.C:
		}
	}
}

// hold keeps the lease alive until release is called.
func (g *RedisRunGuard) hold(ctx context.Context, key, token string) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(ctx)
	stop := make(chan struct{})
	done := make(chan struct{})
	acquired := time.Now()

	go func() {
		defer close(done)
		every := g.ttl / 3
		if every <= 0 {
			every = time.Millisecond
		}
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		lastRenewed := acquired
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
			renewCtx, renewCancel := context.WithTimeout(context.Background(), every)
			renewed, err := g.store.RenewLease(renewCtx, key, token, g.ttl)
			renewCancel()
			switch {
			case err == nil && renewed:
				lastRenewed = time.Now()
				continue
			case err == nil:
				g.logger.Error("computation lease lost", zap.String("key", key))
				cancel()
				return
			}
			g.logger.Warn("renew computation lease failed", zap.String("key", key), zap.Error(err))
			if time.Since(lastRenewed) >= g.ttl {
				g.logger.Error("computation lease expired while renewals failed", zap.String("key", key))
				cancel()
				return
			}
		}
	}()

	var once sync.Once
	release := func() {
		once.Do(func() {
			close(stop)
			<-done
			cancel()
			releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer releaseCancel()
			if err := g.store.ReleaseLease(releaseCtx, key, token); err != nil {
				g.logger.Warn("release computation lease failed", zap.String("key", key), zap.Error(err))
			}
		})
	}
	return runCtx, release
}
