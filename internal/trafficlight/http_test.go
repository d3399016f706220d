package trafficlight

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRuleChangeRouteAppliesOverride(t *testing.T) {
	e := NewEngine(testConfig())
	r := Router(e)

	body, err := json.Marshal(map[string]any{"lgt_id": "A", "color": int(Green), "remain": 4})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/rule_change", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	status := statusOf(t, e, "group1")
	assert.Equal(t, Green, status.Color)
	assert.Equal(t, int64(4), status.Counter)
}

func TestRuleChangeRouteRejectsMissingLightID(t *testing.T) {
	e := NewEngine(testConfig())
	r := Router(e)

	body, err := json.Marshal(map[string]any{"color": int(Green), "remain": 4})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/rule_change", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, -1, resp.Status)
}
