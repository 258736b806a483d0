package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/alerting"
	"salesdash/internal/logger"
	"salesdash/internal/sales"
	"salesdash/internal/summary"
	pkgerrors "salesdash/pkg/errors"
)

func newTestRouter(t *testing.T, opts ...ServiceOption) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(newTestService(t, opts...), logger.NopLogger()).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRulesCRUD(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/rules", map[string]interface{}{
		"field":    "cidade",
		"operator": "contém",
		"value":    "Natal",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[alerting.Rule](t, w)
	assert.Equal(t, "r3", created.ID)
	assert.True(t, created.Active)
	assert.Equal(t, "Cidade contém Natal", created.Name)

	w = doJSON(t, router, http.MethodGet, "/api/v1/rules/r3", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/v1/rules/r3", map[string]interface{}{"name": "Natal"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Natal", decode[alerting.Rule](t, w).Name)

	w = doJSON(t, router, http.MethodPut, "/api/v1/rules/r3/active", SetActiveRequest{Active: false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[alerting.Rule](t, w).Active)

	w = doJSON(t, router, http.MethodPost, "/api/v1/rules/r3/move", MoveRuleRequest{Direction: alerting.DirectionUp})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/rules", nil)
	rules := decode[[]alerting.Rule](t, w)
	require.Len(t, rules, 3)
	assert.Equal(t, "r3", rules[1].ID)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/rules/r3", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/rules/r3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[pkgerrors.ErrorResponse](t, w).ErrorCode)
}

func TestCreateRule_Rejected(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "non numeric comparand", body: map[string]interface{}{"field": "lucro", "operator": "maior que", "value": "abc"}},
		{name: "operator not allowed", body: map[string]interface{}{"field": "envioStatus", "operator": "maior que", "value": "Devolvido"}},
		{name: "unknown field", body: map[string]interface{}{"field": "nope", "operator": "igual a", "value": "x"}},
		{name: "empty value", body: map[string]interface{}{"field": "cidade", "operator": "contém", "value": ""}},
		{name: "malformed body", body: "not an object"},
		{name: "NaN comparand", body: map[string]interface{}{"field": "lucro", "operator": "menor que", "value": "NaN"}},
		{name: "infinite comparand", body: map[string]interface{}{"field": "lucro", "operator": "menor que", "value": "inf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/rules", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", decode[pkgerrors.ErrorResponse](t, w).ErrorCode)
		})
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]alerting.Rule](t, w), 2)
}

func TestEditorRoutes(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/editor/r1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r1", decode[EditState](t, w).EditingRuleID)

	w = doJSON(t, router, http.MethodPost, "/api/v1/editor/save", map[string]interface{}{
		"name":     "Lucro > 200",
		"field":    "lucro",
		"operator": "maior que",
		"value":    200,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decode[alerting.Rule](t, w)
	assert.Equal(t, "r1", saved.ID)
	assert.Equal(t, sales.Number(200), saved.Value)

	w = doJSON(t, router, http.MethodGet, "/api/v1/editor", nil)
	assert.Empty(t, decode[EditState](t, w).EditingRuleID)

	w = doJSON(t, router, http.MethodPost, "/api/v1/editor/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/editor", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAlertRoutes(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/alerts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[AlertsView](t, w)
	assert.Len(t, view.Alerts, 3)
	assert.Equal(t, 3, view.UnreadCount)

	w = doJSON(t, router, http.MethodPost, "/api/v1/alerts/S1-r1/select", nil)
	assert.Equal(t, []string{"S1-r1"}, decode[SelectionResponse](t, w).Selected)

	w = doJSON(t, router, http.MethodPost, "/api/v1/alerts/groups/r1/select", nil)
	assert.Equal(t, []string{"S1-r1", "S3-r1"}, decode[SelectionResponse](t, w).Selected)

	w = doJSON(t, router, http.MethodPost, "/api/v1/alerts/dismiss", nil)
	assert.Equal(t, 2, decode[DismissResponse](t, w).Dismissed)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/alerts/S2-r2", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/alerts/S2-r2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/alerts/history", nil)
	assert.Len(t, decode[[]alerting.Alert](t, w), 3)

	w = doJSON(t, router, http.MethodPost, "/api/v1/alerts/read", nil)
	assert.Zero(t, decode[CountResponse](t, w).Count)
}

func TestTableRoutes(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/v1/table/view", map[string]interface{}{
		"filters": map[string]interface{}{"searchCity": "recife"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[TableView](t, w).Rows, 2)

	w = doJSON(t, router, http.MethodPost, "/api/v1/table/sort", SortRequest{Key: sales.FieldProfit})
	require.Equal(t, http.StatusOK, w.Code)
	table := decode[TableView](t, w)
	assert.Equal(t, "S1", table.Rows[0].ID)

	w = doJSON(t, router, http.MethodPost, "/api/v1/table/sort", SortRequest{Key: "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/table/columns/move", MoveColumnRequest{From: 0, To: 50})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/table/select", nil)
	assert.Equal(t, []string{"S1", "S3"}, decode[SelectionResponse](t, w).Selected)

	w = doJSON(t, router, http.MethodPost, "/api/v1/table/mark", nil)
	assert.Equal(t, 2, decode[CountResponse](t, w).Count)

	w = doJSON(t, router, http.MethodPost, "/api/v1/table/select", IDsRequest{IDs: []string{"S3"}})
	assert.Equal(t, []string{"S3"}, decode[SelectionResponse](t, w).Selected)

	w = doJSON(t, router, http.MethodPost, "/api/v1/table/hide", nil)
	assert.Equal(t, 1, decode[CountResponse](t, w).Count)

	w = doJSON(t, router, http.MethodGet, "/api/v1/table", nil)
	table = decode[TableView](t, w)
	assert.Len(t, table.Rows, 1)
	assert.Equal(t, 3, table.Total)
}

func TestRecordRoutes(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/v1/records/S1/notes", NoteRequest{Notes: "troca"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "troca", decode[sales.SaleRecord](t, w).Notes)

	w = doJSON(t, router, http.MethodPost, "/api/v1/records/S1/highlight", nil)
	assert.True(t, decode[sales.SaleRecord](t, w).Highlighted)

	w = doJSON(t, router, http.MethodPost, "/api/v1/records/S1/mark", nil)
	assert.True(t, decode[sales.SaleRecord](t, w).Marked)

	w = doJSON(t, router, http.MethodPost, "/api/v1/records/S1/hidden", nil)
	assert.True(t, decode[sales.SaleRecord](t, w).Hidden)

	w = doJSON(t, router, http.MethodPost, "/api/v1/records/S2/select", nil)
	assert.Equal(t, []string{"S2"}, decode[SelectionResponse](t, w).Selected)

	w = doJSON(t, router, http.MethodGet, "/api/v1/records/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyticsRoutes(t *testing.T) {
	router := newTestRouter(t, WithSummarizer(&fakeSummarizer{}))

	w := doJSON(t, router, http.MethodGet, "/api/v1/overview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[Overview](t, w).KPI.TotalOrders)

	w = doJSON(t, router, http.MethodPost, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, summary.StatusOK, decode[summary.Result](t, w).Status)

	w = doJSON(t, router, http.MethodPost, "/api/v1/reload", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/fields", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]FieldInfo](t, w), len(alerting.DefaultRegistry().List()))
}
