package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/alerting"
	"salesdash/internal/config"
	"salesdash/internal/constants"
	"salesdash/internal/logger"
	"salesdash/internal/sales"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:     config.ServerConfig{Port: 0},
		DataSource: config.DataSourceConfig{Type: constants.DataSourceSample},
	}
}

func TestNewRepository(t *testing.T) {
	tests := []struct {
		name     string
		source   config.DataSourceConfig
		wantName string
		wantErr  bool
	}{
		{name: "default", source: config.DataSourceConfig{}, wantName: "sample"},
		{name: "file", source: config.DataSourceConfig{Type: "file", Path: "sales.yaml"}, wantName: "file"},
		{name: "postgres without database", source: config.DataSourceConfig{Type: "postgres"}, wantErr: true},
		{name: "mongodb without database", source: config.DataSourceConfig{Type: "mongodb"}, wantErr: true},
		{name: "unknown", source: config.DataSourceConfig{Type: "csv"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.DataSource = tt.source

			repo, err := NewApp(cfg, logger.NopLogger()).newRepository()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, repo.Name())
		})
	}
}

func TestNewRuleStore(t *testing.T) {
	cfg := testConfig()
	cfg.Alerts = config.AlertsConfig{
		Rules: []config.SeedRule{
			{Name: "Frete alto", Field: "valorVenda", Operator: "maior que", Value: 1000},
		},
		SeverityRules: []config.SeverityRuleEntry{
			{Name: "big_sale", Expression: "field == 'valorVenda'", Severity: "error"},
		},
	}

	rules, materializer, err := NewApp(cfg, logger.NopLogger()).newRuleStore()
	require.NoError(t, err)
	require.Len(t, rules.List(), 1)

	alerts := materializer.Materialize(sales.SampleRecords(), rules.List(), nil, nil)
	require.NotEmpty(t, alerts)
	for _, a := range alerts {
		assert.Equal(t, alerting.SeverityError, a.Severity)
	}
}

func TestNewRuleStore_InvalidSeed(t *testing.T) {
	cfg := testConfig()
	cfg.Alerts.Rules = []config.SeedRule{{Field: "lucro", Operator: "contém", Value: "x"}}

	_, _, err := NewApp(cfg, logger.NopLogger()).newRuleStore()
	assert.Error(t, err)

	cfg.Alerts.Rules = nil
	cfg.Alerts.SeverityRules = []config.SeverityRuleEntry{{Name: "bad", Expression: "field ==", Severity: "error"}}
	_, _, err = NewApp(cfg, logger.NopLogger()).newRuleStore()
	assert.Error(t, err)
}

func TestInitialize_SampleSource(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := NewApp(testConfig(), logger.NopLogger())
	require.NoError(t, app.Initialize(ctx))

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, app.Shutdown(ctx))
}

func TestWriteAlerts(t *testing.T) {
	alerts := []alerting.Alert{{ID: "S1-r1", RuleID: "r1", SaleID: "S1", Severity: alerting.SeverityWarning}}
	rules := []alerting.Rule{{ID: "r1", Name: "Lucro"}}

	var buf bytes.Buffer
	require.NoError(t, writeAlerts(&buf, "json", alerts, rules))
	var groups []alerting.AlertGroup
	require.NoError(t, json.Unmarshal(buf.Bytes(), &groups))
	require.Len(t, groups, 1)
	assert.Equal(t, "Lucro", groups[0].RuleName)

	buf.Reset()
	require.NoError(t, writeAlerts(&buf, "yaml", alerts, rules))
	assert.Contains(t, buf.String(), "S1-r1")

	assert.Error(t, writeAlerts(&buf, "xml", alerts, rules))
}
