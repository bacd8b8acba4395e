package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"rcgen/internal/mir"
	"rcgen/internal/trace"
)

// ExpandUnits expands independent units concurrently, each with its own
// generator. A unit that fails does not stop the others; the returned error
// joins every unit's failure and the failed units' results are nil.
func ExpandUnits(ctx context.Context, units []*mir.Unit, opts Options) ([]*Result, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "expand", trace.CurrentSpan(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(units))
	errs := make([]error, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(units))))
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := expandOne(gctx, u, opts)
			results[i], errs[i] = res, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	span.WithExtra("units", strconv.Itoa(len(units)))
	return results, errors.Join(errs...)
}

// expandOne serves u from the cache when possible and fills the cache otherwise.
func expandOne(ctx context.Context, u *mir.Unit, opts Options) (*Result, error) {
	idx := opts.Timer.Begin(u.Name)
	defer opts.Timer.End(idx, "")

	if opts.Cache == nil {
		return ExpandUnit(ctx, u, opts)
	}

	key, err := UnitDigest(u, opts.Target)
	if err != nil {
		return nil, err
	}
	if cached, ok, err := opts.Cache.Get(key); err == nil && ok {
		// Entries written by a non-validating run are checked before reuse.
		if opts.Validate {
			if err := mir.Validate(cached.Unit, mir.ValidateOptions{RequireExpanded: true}); err != nil {
				trace.Point(trace.FromContext(ctx), trace.ScopeError, "validate", err.Error(), trace.CurrentSpan(ctx))
				return nil, fmt.Errorf("unit %s: invalid cached expansion: %w", u.Name, err)
			}
		}
		trace.Point(trace.FromContext(ctx), trace.ScopeUnit, "cache-hit", u.Name, trace.CurrentSpan(ctx))
		return cached, nil
	}

	res, err := ExpandUnit(ctx, u, opts)
	if err != nil {
		return nil, err
	}
	if err := opts.Cache.Put(key, res); err != nil {
		trace.Point(trace.FromContext(ctx), trace.ScopeError, "cache-put", err.Error(), trace.CurrentSpan(ctx))
	}
	return res, nil
}
