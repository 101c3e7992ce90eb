package connectivity

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/suplementia/supplement-discovery/internal/domain/providers"
)

// Prober checks whether a dependency answers. The Redis client's Ping
// satisfies this directly.
type Prober interface {
	Ping(ctx context.Context) error
}

// ProbeObserver reports connectivity based on a periodic probe against a
// shared dependency. The flag only overlays responses; request handling
// never blocks on it.
type ProbeObserver struct {
	prober   Prober
	interval time.Duration
	online   atomic.Bool
	cancel   context.CancelFunc
}

var _ providers.ConnectivityObserver = (*ProbeObserver)(nil)

// NewProbeObserver creates an observer that probes at the given interval.
// It starts online; the first probe runs immediately.
func NewProbeObserver(prober Prober, interval time.Duration) *ProbeObserver {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	o := &ProbeObserver{
		prober:   prober,
		interval: interval,
	}
	o.online.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	go o.run(ctx)
	return o
}

// Online reports the result of the most recent probe.
func (o *ProbeObserver) Online() bool {
	return o.online.Load()
}

// Close stops the probe loop.
func (o *ProbeObserver) Close() {
	o.cancel()
}

func (o *ProbeObserver) run(ctx context.Context) {
	o.probe(ctx)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.probe(ctx)
		}
	}
}

func (o *ProbeObserver) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := o.prober.Ping(probeCtx)
	wasOnline := o.online.Swap(err == nil)

	if err != nil && wasOnline {
		log.Warn().Err(err).Msg("connectivity lost")
	}
	if err == nil && !wasOnline {
		log.Info().Msg("connectivity restored")
	}
}
