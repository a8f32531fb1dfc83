package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flights_backend/internal/metrics"
)

func TestHTTPNotifier_PostsFlightID(t *testing.T) {
	var got FlightFormed
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		key = r.Header.Get(ServiceKeyHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL, "k3y", srv.Client())
	require.NoError(t, n.NotifyFlightFormed(context.Background(), 12))

	assert.Equal(t, uint(12), got.FlightID)
	assert.Equal(t, "k3y", key)
}

func TestHTTPNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewHTTPNotifier(srv.URL, "", srv.Client()).NotifyFlightFormed(context.Background(), 1)
	assert.ErrorContains(t, err, "500")
}

func TestHTTPNotifier_RespectsDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewHTTPNotifier(srv.URL, "", srv.Client()).NotifyFlightFormed(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return m.Called(msgs).Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func TestKafkaNotifier_WritesKeyedMessage(t *testing.T) {
	w := &mockWriter{}
	w.On("WriteMessages", mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 1 &&
			string(msgs[0].Key) == "7" &&
			string(msgs[0].Value) == `{"flight_id":7}`
	})).Return(nil).Once()
	w.On("Close").Return(nil).Once()

	n := &KafkaNotifier{writer: w}
	require.NoError(t, n.NotifyFlightFormed(context.Background(), 7))
	require.NoError(t, n.Close())
	w.AssertExpectations(t)
}

func TestKafkaNotifier_WrapsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	w := &mockWriter{}
	w.On("WriteMessages", mock.Anything).Return(boom)

	err := (&KafkaNotifier{writer: w}).NotifyFlightFormed(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
}

func TestDispatcher_DeliversOnceWithOwnDeadline(t *testing.T) {
	var calls atomic.Int32
	var hadDeadline atomic.Bool
	n := NotifierFunc(func(ctx context.Context, id uint) error {
		calls.Add(1)
		_, ok := ctx.Deadline()
		hadDeadline.Store(ok)
		return nil
	})
	m := metrics.NewRegistry()
	d := NewDispatcher(n, time.Second, m)

	d.FlightFormed(3)
	d.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, hadDeadline.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("ok")))
}

func TestDispatcher_SwallowsFailures(t *testing.T) {
	m := metrics.NewRegistry()
	d := NewDispatcher(NotifierFunc(func(context.Context, uint) error {
		return errors.New("unreachable")
	}), time.Second, m)

	assert.NotPanics(t, func() {
		d.FlightFormed(1)
		d.Wait()
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("error")))
}

func TestDispatcher_DoesNotBlockCaller(t *testing.T) {
	release := make(chan struct{})
	d := NewDispatcher(NotifierFunc(func(ctx context.Context, _ uint) error {
		<-release
		return nil
	}), time.Second, nil)

	start := time.Now()
	d.FlightFormed(1)
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Shutdown(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, d.Shutdown(context.Background()))
}
