package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
	"github.com/custodia-labs/litmapper/internal/logger"
)

// Reservation is the exclusive right to create one resource. While held,
// the cache entry for the resource is the in-progress sentinel.
type Reservation struct {
	cache     driven.CacheStore
	namespace string
	key       string
	params    domain.Params
}

// Reserve claims the cache entry for params.
//
// Without force it fails with domain.ErrResourceCreationInProgress when
// another creator holds the entry and domain.ErrResourceExists when a
// result is stored. With force the sentinel overwrites whatever is there.
func Reserve(
	ctx context.Context,
	cache driven.CacheStore,
	namespace string,
	params domain.Params,
	force bool,
) (*Reservation, error) {
	key := params.Hash()
	prior, existed, err := cache.Reserve(ctx, namespace, key)
	if err != nil {
		return nil, fmt.Errorf("reserve %s %s: %w", params.Kind(), key, err)
	}

	r := &Reservation{cache: cache, namespace: namespace, key: key, params: params}

	switch {
	case force:
		if err := cache.Set(ctx, namespace, key, []byte{}); err != nil {
			return nil, fmt.Errorf("reserve %s %s: %w", params.Kind(), key, err)
		}
		logger.Debug("Forcing creation of %s %s", params.Kind(), key)
	case !existed:
	case len(prior) == 0:
		return nil, fmt.Errorf("%w: %s %s", domain.ErrResourceCreationInProgress, params.Kind(), key)
	default:
		return nil, fmt.Errorf("%w: %s %s", domain.ErrResourceExists, params.Kind(), key)
	}
	return r, nil
}

// Run calls create inside the reservation and stores its value.
// If create fails, panics or ctx is cancelled, the sentinel is removed so
// the resource can be requested again, and the cause is returned.
func (r *Reservation) Run(ctx context.Context, create func(context.Context) ([]byte, error)) (err error) {
	committed := false
	defer func() {
		if committed {
			return
		}
		if rec := recover(); rec != nil {
			r.release(ctx)
			panic(rec)
		}
		r.release(ctx)
	}()

	value, err := create(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return err
	}
	if len(value) == 0 {
		return fmt.Errorf("create %s %s: empty result", r.params.Kind(), r.key)
	}
	if err := r.cache.Set(ctx, r.namespace, r.key, value); err != nil {
		return fmt.Errorf("store %s %s: %w", r.params.Kind(), r.key, err)
	}
	committed = true
	return nil
}

// release removes the sentinel. Cleanup must outlive a cancelled ctx.
func (r *Reservation) release(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if err := r.cache.Delete(ctx, r.namespace, r.key); err != nil {
		logger.Warn("Failed to release %s %s: %v", r.params.Kind(), r.key, err)
		return
	}
	logger.Debug("Released reservation for %s %s", r.params.Kind(), r.key)
}

// isSkippable reports errors that mean another creator already handled the resource.
func isSkippable(err error) bool {
	return errors.Is(err, domain.ErrResourceCreationInProgress) || errors.Is(err, domain.ErrResourceExists)
}
