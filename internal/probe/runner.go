package probe

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/billie-coop/roster/internal/catalog"
	"github.com/billie-coop/roster/internal/csync"
	"github.com/billie-coop/roster/internal/state"
)

// defaultParallelism bounds how many probes run at once. Providers are
// independent services; hammering them all simultaneously buys nothing.
const defaultParallelism = 4

// Runner tests many providers concurrently and lands each result in
// the store as it arrives. Completion order is whatever the network
// gives; callers must not read meaning into it.
type Runner struct {
	prober *Prober
	store  *state.Store
	logger *slog.Logger
	limit  int
}

// NewRunner creates a runner over the given prober and store.
func NewRunner(prober *Prober, store *state.Store, logger *slog.Logger) *Runner {
	return &Runner{
		prober: prober,
		store:  store,
		logger: logger,
		limit:  defaultParallelism,
	}
}

// SetLimit overrides the parallelism bound. Values below one keep the
// default.
func (r *Runner) SetLimit(n int) {
	if n >= 1 {
		r.limit = n
	}
}

// TestAll probes every provider with bounded parallelism. Each result
// is written to testing.results.<id> the moment its probe finishes;
// testing.inProgress brackets the whole run. The returned map holds
// every result keyed by provider id.
func (r *Runner) TestAll(ctx context.Context, providers []catalog.Provider) map[string]Result {
	results := csync.NewMap[string, Result]()
	if len(providers) == 0 {
		return results.ToMap()
	}

	r.store.Set(state.TestingInProgress, true, state.WithSource("probe.runner"))
	defer func() {
		r.store.Set(state.TestingCurrent, "", state.WithSource("probe.runner"))
		r.store.Set(state.TestingInProgress, false, state.WithSource("probe.runner"))
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)

	for _, provider := range providers {
		g.Go(func() error {
			r.store.Set(state.TestingCurrent, provider.Name, state.WithSource("probe.runner"))
			res := r.prober.Test(ctx, provider)
			results.Set(provider.ID, res)
			r.store.Set(state.TestingResult(provider.ID), res, state.WithSource("probe.runner"))
			r.logger.Debug("provider tested",
				"provider", provider.Name,
				"valid", res.Valid,
			)
			return nil
		})
	}

	// Probes never return errors; failures are results.
	g.Wait() //nolint:errcheck

	return results.ToMap()
}
