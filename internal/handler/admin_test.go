package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"admission-gateway/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func postOverride(router *gin.Engine, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/override-rate-limit", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOverrideEndpointAppliesFlag(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	router, overrides := newTestRouter(t, store)

	w := postOverride(router, "application/json", `{"clientId": "c2", "override": true}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Override for c2 set to true.")

	enabled, err := overrides.Get(t.Context(), "c2")
	require.NoError(t, err)
	require.True(t, enabled)
}

func TestOverrideEndpointRejectsContentType(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	router, _ := newTestRouter(t, store)

	w := postOverride(router, "text/plain", `{"clientId": "c2", "override": true}`)
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	require.Contains(t, w.Body.String(), "error")
}

func TestOverrideEndpointRejectsBadJSON(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	router, _ := newTestRouter(t, store)

	w := postOverride(router, "application/json", `{"clientId": `)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "error")
}

func TestOverrideEndpointRejectsWrongShape(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	router, _ := newTestRouter(t, store)

	for _, body := range []string{
		`["clientId", "override"]`,
		`{"clientId": "", "override": true}`,
		`{"clientId": 7, "override": true}`,
		`{"clientId": "c2", "override": "yes"}`,
		`{"clientId": "c2"}`,
	} {
		w := postOverride(router, "application/json", body)
		require.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		require.Contains(t, w.Body.String(), "error")
	}
}

// Override on: requests bypass without consuming the window. Override off:
// the window picks up exactly where it stood.
func TestOverrideBypassKeepsWindowState(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	router, _ := newTestRouter(t, store)

	// Exhaust c2's free tier.
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, doGet(router, "c2").Code)
	}
	require.Equal(t, http.StatusTooManyRequests, doGet(router, "c2").Code)

	w := postOverride(router, "application/json", `{"clientId": "c2", "override": true}`)
	require.Equal(t, http.StatusOK, w.Code)

	for i := 0; i < 10; i++ {
		w := doGet(router, "c2")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "Overridden", w.Header().Get("X-Rate-Limit-Remaining"))
	}

	w = postOverride(router, "application/json", `{"clientId": "c2", "override": false}`)
	require.Equal(t, http.StatusOK, w.Code)

	// The ten bypassed requests left the log untouched, so the window is
	// still exhausted.
	require.Equal(t, http.StatusTooManyRequests, doGet(router, "c2").Code)
}

func TestOverrideListEndpoint(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	router, _ := newTestRouter(t, store)

	postOverride(router, "application/json", `{"clientId": "c2", "override": true}`)

	req := httptest.NewRequest(http.MethodGet, "/admin/overrides", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"c2":true`)
}
