package mem

import (
	"expvar"
	"sync"
	"time"

	"github.com/inbucket/rcptcontact/pkg/metric"
	"github.com/rs/zerolog/log"
)

var (
	sweepCompleted   = time.Now()
	sweepCompletedMu sync.RWMutex

	expSessionsCurrent = new(expvar.Int)
	expSweepInterval   = new(expvar.Int)

	// Metrics holds the memory session store counters.
	Metrics = expvar.NewMap("sessions")

	expExpired = metric.NewCounter(Metrics, "Expired")
)

func init() {
	Metrics.Set("SecondsSinceSweepCompleted", expvar.Func(secondsSinceSweepCompleted))
	Metrics.Set("SweepInterval", expSweepInterval)
	Metrics.Set("SessionsCurrent", expSessionsCurrent)
}

// Sweeper periodically removes expired sessions from a Store.
type Sweeper struct {
	globalShutdown chan bool // Closes when rcptcontact needs to shut down.
	sweepShutdown  chan bool // Closed after the sweeper has shut down.
	store          *Store
	interval       time.Duration
}

// NewSweeper configures a new Sweeper.
func NewSweeper(store *Store, interval time.Duration, shutdownChannel chan bool) *Sweeper {
	expSweepInterval.Set(int64(interval / time.Second))
	return &Sweeper{
		globalShutdown: shutdownChannel,
		sweepShutdown:  make(chan bool),
		store:          store,
		interval:       interval,
	}
}

// Start up the sweeper if the interval and session TTL are > 0.
func (sw *Sweeper) Start() {
	slog := log.With().Str("module", "session").Str("phase", "startup").Logger()
	if sw.interval <= 0 || sw.store.ttl <= 0 {
		slog.Info().Msg("Session sweeper disabled")
		close(sw.sweepShutdown)
		return
	}
	slog.Info().Str("interval", sw.interval.String()).Str("ttl", sw.store.ttl.String()).
		Msg("Session sweeper configured")
	go sw.run()
}

// run loops to kick off a sweep on the configured schedule.
func (sw *Sweeper) run() {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()
sweepLoop:
	for {
		select {
		case <-sw.globalShutdown:
			break sweepLoop
		case <-ticker.C:
			sw.DoSweep()
		}
	}
	log.Debug().Str("module", "session").Str("phase", "shutdown").Msg("Session sweeper shut down")
	close(sw.sweepShutdown)
}

// DoSweep does a single pass over the sessions, removing expired ones.
func (sw *Sweeper) DoSweep() int {
	removed := sw.store.Sweep()
	if removed > 0 {
		log.Debug().Str("module", "session").Int("removed", removed).Msg("Swept expired sessions")
	}
	expExpired.Add(int64(removed))
	expSessionsCurrent.Set(int64(sw.store.Len()))
	setSweepCompleted(time.Now())
	return removed
}

// Join does not return until the sweeper has shut down.
func (sw *Sweeper) Join() {
	if sw.sweepShutdown != nil {
		<-sw.sweepShutdown
	}
}

func setSweepCompleted(t time.Time) {
	sweepCompletedMu.Lock()
	defer sweepCompletedMu.Unlock()
	sweepCompleted = t
}

func getSweepCompleted() time.Time {
	sweepCompletedMu.RLock()
	defer sweepCompletedMu.RUnlock()
	return sweepCompleted
}

func secondsSinceSweepCompleted() any {
	return time.Since(getSweepCompleted()) / time.Second
}
