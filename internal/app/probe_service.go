package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/billie-coop/roster/internal/catalog"
	"github.com/billie-coop/roster/internal/events"
	"github.com/billie-coop/roster/internal/probe"
	"github.com/billie-coop/roster/internal/storage"
)

// ProbeService runs connectivity tests and records their history.
// Results land in the store as they complete (the runner does that);
// this layer adds the history rows, the tested events, and the
// provider isValid updates.
type ProbeService struct {
	prober   *probe.Prober
	runner   *probe.Runner
	roster   *RosterService
	registry *events.Registry
	history  *storage.History
	logger   *slog.Logger
}

// NewProbeService creates the service. history may be nil when the
// database could not be opened; probing works without it.
func NewProbeService(prober *probe.Prober, runner *probe.Runner, roster *RosterService, registry *events.Registry, history *storage.History, logger *slog.Logger) *ProbeService {
	return &ProbeService{
		prober:   prober,
		runner:   runner,
		roster:   roster,
		registry: registry,
		history:  history,
		logger:   logger,
	}
}

// SetParallelism bounds how many probes run at once.
func (s *ProbeService) SetParallelism(n int) {
	s.runner.SetLimit(n)
}

// TestProvider probes one provider by id.
func (s *ProbeService) TestProvider(ctx context.Context, id string) (probe.Result, error) {
	p, ok := catalog.ProviderByID(s.roster.Providers(), id)
	if !ok {
		return probe.Result{}, fmt.Errorf("provider %q not found", id)
	}

	results := s.runner.TestAll(ctx, []catalog.Provider{p})
	res := results[id]
	s.finish(p, res)
	return res, nil
}

// TestAll probes every provider concurrently.
func (s *ProbeService) TestAll(ctx context.Context) map[string]probe.Result {
	providers := s.roster.Providers()
	results := s.runner.TestAll(ctx, providers)
	for _, p := range providers {
		if res, ok := results[p.ID]; ok {
			s.finish(p, res)
		}
	}
	return results
}

// RecentHistory returns the latest recorded probes, newest first. It
// returns nil when the history database is unavailable.
func (s *ProbeService) RecentHistory(limit int) []storage.HistoryEntry {
	if s.history == nil {
		return nil
	}
	entries, err := s.history.Recent(limit)
	if err != nil {
		s.logger.Warn("could not read probe history", "error", err)
		return nil
	}
	return entries
}

// finish applies one probe outcome: history row, isValid flag on the
// provider, and the tested event.
func (s *ProbeService) finish(p catalog.Provider, res probe.Result) {
	if s.history != nil {
		if err := s.history.Record(p.ID, p.Name, res); err != nil {
			s.logger.Warn("could not record probe history", "error", err)
		}
	}

	if p.IsValid != res.Valid {
		p.IsValid = res.Valid
		if err := s.roster.UpdateProvider(p); err != nil {
			s.logger.Warn("could not update provider validity", "provider", p.Name, "error", err)
		}
	}

	s.registry.Dispatch(events.Target("app.roster"), events.ProviderTestedEvent, events.ProviderTestedPayload{
		ProviderID: p.ID,
		Valid:      res.Valid,
		Message:    res.Message,
	})
}
