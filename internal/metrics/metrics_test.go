package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Handler(t *testing.T) {
	// Given: recorded values
	m := New()
	m.Joins.WithLabelValues("accepted").Inc()
	m.Moves.WithLabelValues("tic-tac-toe", "accepted").Add(2)
	m.RoomsActive.Set(3)

	// When: the exposition endpoint is scraped
	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Then: the values are exposed
	require.Equal(t, http.StatusOK, recorder.Code)
	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `duelrooms_joins_total{result="accepted"} 1`)
	assert.Contains(t, string(body), `duelrooms_moves_total{game_type="tic-tac-toe",result="accepted"} 2`)
	assert.Contains(t, string(body), "duelrooms_rooms_active 3")
	assert.InDelta(t, 3, testutil.ToFloat64(m.RoomsActive), 0)
}

func TestNew_IndependentRegistries(t *testing.T) {
	first := New()
	second := New()

	first.Notifications.WithLabelValues("sent").Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(first.Notifications.WithLabelValues("sent")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(second.Notifications.WithLabelValues("sent")), 0)
}
