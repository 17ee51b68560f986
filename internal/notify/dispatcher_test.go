package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (that *mockNotifier) Notify(ctx context.Context, subject, body string) error {
	args := that.Called(ctx, subject, body)
	return args.Error(0)
}

func newResults() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "notifications_total"}, []string{"result"})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcher_Notify(t *testing.T) {
	t.Run("Delivers queued notifications", func(t *testing.T) {
		// Given: a running dispatcher
		sink := &mockNotifier{}
		sink.On("Notify", mock.Anything, "Room created", "alice created abc").Return(nil).Once()
		results := newResults()
		dispatcher := NewDispatcher(discardLogger(), sink, 4, results)
		dispatcher.Start()

		// When: a notification is queued and the dispatcher is closed
		dispatcher.Notify("Room created", "alice created abc")
		dispatcher.Close()

		// Then: the sink received it
		sink.AssertExpectations(t)
		assert.InDelta(t, 1, testutil.ToFloat64(results.WithLabelValues(resultSent)), 0)
	})

	t.Run("Sink failure is counted and swallowed", func(t *testing.T) {
		sink := &mockNotifier{}
		sink.On("Notify", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
		results := newResults()
		dispatcher := NewDispatcher(discardLogger(), sink, 4, results)
		dispatcher.Start()

		dispatcher.Notify("Game won", "alice won")
		dispatcher.Close()

		assert.InDelta(t, 1, testutil.ToFloat64(results.WithLabelValues(resultFailed)), 0)
	})

	t.Run("Full queue drops instead of blocking", func(t *testing.T) {
		// Given: a dispatcher with a queue of one that is not consuming yet
		sink := &mockNotifier{}
		sink.On("Notify", mock.Anything, "first", "").Return(nil).Once()
		results := newResults()
		dispatcher := NewDispatcher(discardLogger(), sink, 1, results)

		// When: two notifications are queued
		dispatcher.Notify("first", "")
		dispatcher.Notify("second", "")

		dispatcher.Start()
		dispatcher.Close()

		// Then: only the first one is delivered
		sink.AssertExpectations(t)
		assert.InDelta(t, 1, testutil.ToFloat64(results.WithLabelValues(resultDropped)), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(results.WithLabelValues(resultSent)), 0)
	})

	t.Run("Notify after Close is ignored", func(t *testing.T) {
		sink := &mockNotifier{}
		dispatcher := NewDispatcher(discardLogger(), sink, 1, nil)
		dispatcher.Start()
		dispatcher.Close()

		require.NotPanics(t, func() {
			dispatcher.Notify("late", "")
		})
		sink.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMulti_Notify(t *testing.T) {
	// Given: one failing and one healthy sink
	failing := &mockNotifier{}
	failing.On("Notify", mock.Anything, "s", "b").Return(errors.New("boom"))
	healthy := &mockNotifier{}
	healthy.On("Notify", mock.Anything, "s", "b").Return(nil)

	// When: fanning out
	err := Multi{failing, healthy}.Notify(context.Background(), "s", "b")

	// Then: both were called and the failure is reported
	require.Error(t, err)
	failing.AssertExpectations(t)
	healthy.AssertExpectations(t)
}

func TestLogNotifier_Notify(t *testing.T) {
	assert.NoError(t, NewLogNotifier(discardLogger()).Notify(context.Background(), "s", "b"))
}
