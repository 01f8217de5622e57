package shell

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ingenzi/console-gateway/internal/gateway"
	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/internal/resource"
)

// Stats is the cached dashboard statistics snapshot.
type Stats struct {
	Data      models.Record `json:"data"`
	FetchedAt time.Time     `json:"fetchedAt"`
	Stale     bool          `json:"stale"`
}

// StatsRefresher keeps the dashboard statistics panel warm with a periodic
// background fetch. The fetch is fire-and-forget: a failure marks the cached
// snapshot stale and the next tick tries again. Stop cancels the schedule on
// shutdown.
type StatsRefresher struct {
	gw     *gateway.Client
	logger *zap.Logger
	cron   *cron.Cron
	ticker cron.EntryID

	mu       sync.RWMutex
	snapshot Stats

	// fetchCtx builds the context used for background fetches. The refresher
	// runs with a service principal context, not a browser session, so an
	// auth failure here never clears anybody's session.
	fetchCtx func() context.Context
}

// NewStatsRefresher builds a refresher polling at the given interval.
func NewStatsRefresher(gw *gateway.Client, interval time.Duration, logger *zap.Logger) *StatsRefresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	refresher := &StatsRefresher{
		gw:       gw,
		logger:   logger,
		cron:     cron.New(),
		fetchCtx: context.Background,
	}
	entryID, err := refresher.cron.AddFunc("@every "+interval.String(), refresher.refresh)
	if err != nil {
		logger.Error("schedule stats refresh", zap.Error(err))
	}
	refresher.ticker = entryID
	return refresher
}

// Start fetches once immediately, then begins the schedule.
func (r *StatsRefresher) Start() {
	r.refresh()
	r.cron.Start()
}

// Stop cancels the schedule and waits for a running fetch to finish.
func (r *StatsRefresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// Snapshot returns the cached statistics.
func (r *StatsRefresher) Snapshot() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Fetch loads statistics on behalf of one session, bypassing the cache. Used
// when a dashboard first mounts and the cache is empty.
func (r *StatsRefresher) Fetch(ctx context.Context) (models.Record, error) {
	var data models.Record
	if err := r.gw.Do(ctx, http.MethodGet, resource.DashboardStats, nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (r *StatsRefresher) refresh() {
	ctx, cancel := context.WithTimeout(r.fetchCtx(), 15*time.Second)
	defer cancel()

	var data models.Record
	err := r.gw.Do(ctx, http.MethodGet, resource.DashboardStats, nil, &data)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.snapshot.Stale = true
		r.logger.Warn("stats refresh failed", zap.Error(err))
		return
	}
	r.snapshot = Stats{Data: data, FetchedAt: time.Now().UTC()}
}
