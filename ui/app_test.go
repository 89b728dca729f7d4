package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postlift/domain/attribution"
)

func TestDemoApp(t *testing.T) {
	demo, err := NewApp(AppConfig{})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	demo.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Attribution Report")

	w = httptest.NewRecorder()
	demo.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/result", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var result attribution.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Influencers)
	assert.Greater(t, result.TotalAttributedRevenue, 0.0)
}

func TestDemoApp_SeedStability(t *testing.T) {
	a, err := NewApp(AppConfig{Seed: 7})
	require.NoError(t, err)
	b, err := NewApp(AppConfig{Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, a.result.Fingerprint, b.result.Fingerprint)
}

func TestMethodologyMarkdown(t *testing.T) {
	result, err := attribution.NewResult(nil, 0, 0, 0, 0, 0, []string{"no orders in window"})
	require.NoError(t, err)

	md := MethodologyMarkdown(result)
	assert.Contains(t, md, "# Attribution Report")
	assert.Contains(t, md, "no orders in window")

	html := string(RenderHTML(md))
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<li>no orders in window</li>")
}
