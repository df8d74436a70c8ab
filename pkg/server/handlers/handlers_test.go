package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/directory"
	"github.com/sedi-apps/timetrack/pkg/history"
	"github.com/sedi-apps/timetrack/pkg/reconcile"
	"github.com/sedi-apps/timetrack/pkg/server"
	"github.com/sedi-apps/timetrack/pkg/server/handlers"
	"github.com/sedi-apps/timetrack/pkg/sessions"
	"github.com/sedi-apps/timetrack/pkg/source"
	"github.com/sedi-apps/timetrack/pkg/store"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	histStore, err := history.NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	ledger := store.NewMemoryLedger()
	exporter := reconcile.New(source.NewFixtureEvents(), ledger, zap.NewNop())

	h := handlers.New(handlers.Options{
		Directory: directory.NewFixtureDirectory(),
		Sessions:  sessions.NewSimulatedService(histStore, zap.NewNop()),
		Ledger:    ledger,
		Exporter:  exporter,
		Logger:    zap.NewNop(),
		Simulated: true,
	})

	return server.New(":0", h, zap.NewNop()).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	decoded := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealth(t *testing.T) {
	rec, body := doJSON(t, newTestServer(t), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestOperators(t *testing.T) {
	rec, body := doJSON(t, newTestServer(t), http.MethodGet, "/api/operateurs", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["operateurs"], 5)
}

func TestStartWork_MissingFields(t *testing.T) {
	rec, body := doJSON(t, newTestServer(t), http.MethodPost, "/api/demarrer-travail",
		map[string]string{"operateurId": "001"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestStartWork_InvalidDate(t *testing.T) {
	rec, _ := doJSON(t, newTestServer(t), http.MethodPost, "/api/demarrer-travail",
		map[string]string{
			"operateurId":   "001",
			"codeLancement": "LT001",
			"dateTravail":   "16/09/2025",
		})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodPost, "/api/demarrer-travail", map[string]interface{}{
		"operateurId":   "001",
		"codeLancement": "LT001",
		"phase":         "P1",
		"dateTravail":   "2025-09-16T08:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/terminer-travail", map[string]interface{}{
		"operateurId":   "001",
		"codeLancement": "LT001",
		"phase":         "P1",
		"tempsMinutes":  90,
		"tempsSecondes": 30,
		"dateTravail":   "2025-09-16T17:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, srv, http.MethodGet, "/api/historique-operateur/001", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	entries, ok := body["enregistrements"].([]interface{})
	require.True(t, ok)
	require.Len(t, entries, 1)
	first := entries[0].(map[string]interface{})
	assert.Equal(t, "LT001", first["codeLanctImprod"])
	assert.Equal(t, float64(90), first["varNumUtil8"])
}

func TestExport_InvalidSinceDate(t *testing.T) {
	rec, _ := doJSON(t, newTestServer(t), http.MethodPost, "/api/export/unifie",
		map[string]string{"sinceDate": "not-a-date"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport_ThenListUnified(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodPost, "/api/export/unifie", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["rowsInserted"])

	rec, body = doJSON(t, srv, http.MethodGet, "/api/operations-unifiees?top=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows, ok := body["rows"].([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 3)
}

func TestExport_Rerun_Coalesces(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/export/unifie", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, srv, http.MethodPost, "/api/export/unifie", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["rowsInserted"])
	assert.Equal(t, float64(3), body["rowsCoalesced"])
}

func TestUnifiedOperations_InvalidTop(t *testing.T) {
	rec, _ := doJSON(t, newTestServer(t), http.MethodGet, "/api/operations-unifiees?top=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBootstrap(t *testing.T) {
	rec, body := doJSON(t, newTestServer(t), http.MethodPost, "/api/bootstrap/unifie-schema", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
}

func TestTestConnection_Simulated(t *testing.T) {
	rec, body := doJSON(t, newTestServer(t), http.MethodGet, "/api/test-connection", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
}

func TestLTCData(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodGet, "/api/ltc-data/LT001", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data, ok := body["ltcData"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "P1", data["phase"])
}

func TestDatabaseStats(t *testing.T) {
	rec, body := doJSON(t, newTestServer(t), http.MethodGet, "/api/database-stats", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	stats, ok := body["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(5), stats["total_operateurs"])
}
