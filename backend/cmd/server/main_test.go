package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"unigraph/backend/internal/kg"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return newRouter(zap.NewNop(), kg.Options{UniversityName: "Example University"})
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "ok", response["status"])
}

func TestPreviewEndpoint(t *testing.T) {
	router := testRouter()

	w := post(router, "/api/graph/preview", `{
		"faculty": [{"name": "Jane Doe", "department": "Biology", "email": "jane@example.edu"}],
		"course": [{"code": "BIO101", "name": "Cells", "prerequisites": ["BIO050"]}]
	}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var response struct {
		Statements []struct {
			Statement  string                 `json:"statement"`
			Parameters map[string]interface{} `json:"parameters"`
		} `json:"statements"`
		Report struct {
			Queued   int `json:"queued"`
			Executed int `json:"executed"`
			Failed   int `json:"failed"`
		} `json:"report"`
		Nodes         map[string]int `json:"nodes"`
		Relationships map[string]int `json:"relationships"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Len(t, response.Statements, response.Report.Queued)
	assert.Equal(t, response.Report.Queued, response.Report.Executed)
	assert.Equal(t, 0, response.Report.Failed)
	assert.Equal(t, 1, response.Nodes["Faculty"])
	assert.Equal(t, 2, response.Nodes["Course"])
	assert.Equal(t, 1, response.Relationships["IS_PREREQUISITE_FOR"])
	assert.Equal(t, 1, response.Relationships["HAS_EMAIL"])
}

func TestPreviewEndpoint_InvalidRequest(t *testing.T) {
	router := testRouter()

	w := post(router, "/api/graph/preview", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(router, "/api/graph/preview", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	router := testRouter()

	w := post(router, "/api/graph/summary", `[
		{"statement": "MERGE (n:Course {name: $key}) SET n += $props", "parameters": {"key": "CS101"}},
		{"statement": "MERGE (n:Course {name: $key}) SET n += $props", "parameters": {"key": "CS050"}},
		{"statement": "MATCH (a:Course {name: $from}) MATCH (b:Course {name: $to}) MERGE (a)-[:IS_PREREQUISITE_FOR]->(b)", "parameters": {"from": "CS050", "to": "CS101"}},
		{"statement": "RETURN 1", "parameters": {}}
	]`)

	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(4), response["total"])
	assert.Equal(t, float64(1), response["unrecognized"])
	assert.Equal(t, map[string]interface{}{"Course": float64(2)}, response["node_labels"])
	assert.Equal(t, map[string]interface{}{"(Course)-[:IS_PREREQUISITE_FOR]->(Course)": float64(1)}, response["relationship_patterns"])
}

func TestSummaryEndpoint_InvalidRequest(t *testing.T) {
	router := testRouter()

	w := post(router, "/api/graph/summary", `{"statement": "x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
