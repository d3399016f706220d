package control

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/autocore-ai/RSU/internal/errors"
	"github.com/autocore-ai/RSU/internal/pluginmgr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestManager(t *testing.T) *pluginmgr.Manager {
	t.Helper()
	m, err := pluginmgr.New(filepath.Join(t.TempDir(), "plugins.yaml"))
	require.NoError(t, err)
	return m
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) apperrors.ControlResponse {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "every control response is HTTP 200 regardless of status field")

	var resp apperrors.ControlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestLivenessRoute(t *testing.T) {
	r := Router(newTestManager(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "RSU OK", rec.Body.String())
}

func TestAddPluginRoute(t *testing.T) {
	r := Router(newTestManager(t))

	resp := doJSON(t, r, http.MethodPost, "/plugin/add", map[string]any{
		"name":   "vehiclepose",
		"path":   "./plugins/vehiclepose/vehiclepose.so",
		"active": false,
	})

	assert.Equal(t, 1, resp.Status)
	assert.Contains(t, resp.Message, "added")
}

func TestAddPluginRouteIsIdempotent(t *testing.T) {
	r := Router(newTestManager(t))
	body := map[string]any{"name": "tl", "path": "./libtl.so", "active": false}

	first := doJSON(t, r, http.MethodPost, "/plugin/add", body)
	second := doJSON(t, r, http.MethodPost, "/plugin/add", body)

	assert.Equal(t, 1, first.Status)
	assert.Equal(t, 1, second.Status)
	assert.Contains(t, second.Message, "already registered")
}

func TestStartUnregisteredPluginReturnsErrorEnvelope(t *testing.T) {
	r := Router(newTestManager(t))

	resp := doJSON(t, r, http.MethodPost, "/plugin", map[string]any{"name": "ghost", "active": true})

	assert.Equal(t, -1, resp.Status)
	assert.Contains(t, resp.Message, "plugin does not exist")
}

func TestStopAlreadyStoppedPluginIsIdempotent(t *testing.T) {
	r := Router(newTestManager(t))
	doJSON(t, r, http.MethodPost, "/plugin/add", map[string]any{"name": "tl", "path": "./libtl.so", "active": false})

	first := doJSON(t, r, http.MethodPost, "/plugin", map[string]any{"name": "tl", "active": false})
	second := doJSON(t, r, http.MethodPost, "/plugin", map[string]any{"name": "tl", "active": false})

	assert.Equal(t, 1, first.Status)
	assert.Equal(t, first.Message, second.Message)
}

func TestRemovePluginRoute(t *testing.T) {
	r := Router(newTestManager(t))
	doJSON(t, r, http.MethodPost, "/plugin/add", map[string]any{"name": "tl", "path": "./libtl.so", "active": false})

	resp := doJSON(t, r, http.MethodPost, "/plugin/remove", map[string]any{"name": "tl"})
	assert.Equal(t, 1, resp.Status)
	assert.Contains(t, resp.Message, "removed")
}

func TestMalformedBodyReturnsErrorEnvelope(t *testing.T) {
	r := Router(newTestManager(t))

	req := httptest.NewRequest(http.MethodPost, "/plugin/add", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp apperrors.ControlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, -1, resp.Status)
}
