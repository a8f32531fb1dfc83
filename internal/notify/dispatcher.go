package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"flights_backend/internal/metrics"
)

// DefaultTimeout bounds one delivery attempt.
const DefaultTimeout = 7 * time.Second

// Dispatcher runs notifications on detached goroutines so the caller never
// waits for, or fails because of, the external service.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	metrics  *metrics.Registry
	wg       sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration, m *metrics.Registry) *Dispatcher {
	if n == nil {
		n = Nop{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{notifier: n, timeout: timeout, metrics: m}
}

// FlightFormed schedules a single delivery attempt and returns immediately.
func (d *Dispatcher) FlightFormed(flightID uint) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		err := d.notifier.NotifyFlightFormed(ctx, flightID)
		d.metrics.ObserveNotification(err)
		if err != nil {
			logrus.WithError(err).WithField("flight_id", flightID).Warn("state service notification failed")
			return
		}
		logrus.WithField("flight_id", flightID).Debug("state service notified")
	}()
}

// Wait blocks until every scheduled delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown waits for in-flight deliveries or gives up when ctx ends.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
