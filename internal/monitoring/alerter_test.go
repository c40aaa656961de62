package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/config"
)

func TestEvaluate_FailureRate(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{FailureRateThreshold: 0.5})

	snap := &MetricsSnapshot{
		RunsCompleted: 2,
		RunsFailed:    4,
		RunFailRate:   4.0 / 6.0,
		LookbackHours: 24,
	}
	alerts := a.Evaluate(snap)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertRunFailureRate, alerts[0].Type)
	assert.Equal(t, "high", alerts[0].Severity)
}

func TestEvaluate_FailureRate_TooFewRuns(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{FailureRateThreshold: 0.5})

	// 100% failure but only two finished runs: below the floor.
	snap := &MetricsSnapshot{RunsFailed: 2, RunFailRate: 1.0}
	assert.Empty(t, a.Evaluate(snap))
}

func TestEvaluate_DropSurge(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{FailureRateThreshold: 0.5})

	snap := &MetricsSnapshot{
		RecordsPersisted: 8,
		RecordsDropped:   15,
	}
	alerts := a.Evaluate(snap)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertDropSurge, alerts[0].Type)
}

func TestEvaluate_Healthy(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{FailureRateThreshold: 0.5})

	snap := &MetricsSnapshot{
		RunsCompleted:    10,
		RunsFailed:       1,
		RunFailRate:      1.0 / 11.0,
		RecordsPersisted: 100,
		RecordsDropped:   3,
	}
	assert.Empty(t, a.Evaluate(snap))
}

func TestSendAlerts_PostsWebhook(t *testing.T) {
	var received Alert
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := NewAlerter(config.MonitoringConfig{WebhookURL: srv.URL})
	sent := a.SendAlerts(context.Background(), []Alert{{
		Type:      AlertRunFailureRate,
		Severity:  "high",
		Message:   "too many failures",
		Timestamp: time.Now().UTC(),
	}})

	assert.Equal(t, 1, sent)
	assert.Equal(t, AlertRunFailureRate, received.Type)
}

func TestSendAlerts_NoWebhookConfigured(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{})
	sent := a.SendAlerts(context.Background(), []Alert{{Type: AlertDropSurge}})
	assert.Zero(t, sent)
}

func TestSendAlerts_WebhookFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewAlerter(config.MonitoringConfig{WebhookURL: srv.URL})
	sent := a.SendAlerts(context.Background(), []Alert{{Type: AlertDropSurge}})
	assert.Zero(t, sent)
}
