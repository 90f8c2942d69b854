package handler

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"admission-gateway/internal/admission"
	"admission-gateway/internal/middleware"
	"admission-gateway/internal/override"
	"admission-gateway/internal/ratelimit"
	"admission-gateway/internal/service"
	"admission-gateway/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// newTestRouter wires the same middleware chain and routes the server uses,
// minus the database-backed extras.
func newTestRouter(t *testing.T, store storage.Store) (*gin.Engine, override.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tierSet, err := admission.NewTierSet(store, ratelimit.StrategyStandard, "", []admission.Tier{
		{Name: "premium", Prefix: "premium-", Window: 5 * time.Second, MaxRequests: 10},
		{Name: "free", Prefix: "", Window: 5 * time.Second, MaxRequests: 5},
	})
	require.NoError(t, err)

	overrides := override.NewMemoryStore()
	dispatcher := admission.NewDispatcher(tierSet, overrides)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS("*"))

	overrideHandler := NewOverrideHandler(service.NewOverrideService(overrides, nil))
	router.POST("/admin/override-rate-limit", overrideHandler.Set)
	router.GET("/admin/overrides", overrideHandler.List)
	router.NoRoute(NewAdmissionHandler(dispatcher).Handle)

	return router, overrides
}

func doGet(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPreflightTerminatesWithCORSHeaders(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	router, _ := newTestRouter(t, store)

	req := httptest.NewRequest(http.MethodOptions, "/anything", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	require.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	require.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Retry-After")
}

func TestAdmittedResponse(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	router, _ := newTestRouter(t, store)

	w := doGet(router, "c1")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Available", w.Header().Get("X-Rate-Limit-Remaining"))
	require.Equal(t, "free", w.Header().Get("X-Rate-Limit-Tier"))
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, w.Body.String(), "free")
}

func TestDeniedResponseCarriesRetryAfter(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	router, _ := newTestRouter(t, store)

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, doGet(router, "c1").Code)
	}

	w := doGet(router, "c1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "true", w.Header().Get("X-Rate-Limit-Exceeded"))
	require.NotEmpty(t, w.Header().Get("Retry-After"))
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), "denials are CORS-visible too")
}

func TestPremiumPrefixSelectsLargerTier(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	router, _ := newTestRouter(t, store)

	for i := 1; i <= 10; i++ {
		w := doGet(router, "premium-x")
		require.Equal(t, http.StatusOK, w.Code, "premium request %d", i)
		require.Equal(t, "premium", w.Header().Get("X-Rate-Limit-Tier"))
	}
	require.Equal(t, http.StatusTooManyRequests, doGet(router, "premium-x").Code)

	for i := 1; i <= 5; i++ {
		require.Equal(t, http.StatusOK, doGet(router, "x").Code, "free request %d", i)
	}
	require.Equal(t, http.StatusTooManyRequests, doGet(router, "x").Code)
}

func TestNoIdentityReturnsBadRequest(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	router, _ := newTestRouter(t, store)

	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.RemoteAddr = ""
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "error")
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAddressIdentityIsLimited(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	router, _ := newTestRouter(t, store)

	// No Authorization header: httptest's default RemoteAddr identifies
	// the client.
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, doGet(router, "").Code)
	}
	require.Equal(t, http.StatusTooManyRequests, doGet(router, "").Code)
}

type erroringStore struct {
	*storage.MemoryStore
}

func (e *erroringStore) Count(ctx context.Context, key string) (int64, error) {
	return 0, &storage.StoreError{Op: "count", Err: errors.New("connection reset")}
}

func TestStoreFailureReturnsServerErrorWithCORS(t *testing.T) {
	mem := storage.NewMemoryStore()
	defer mem.Close()
	router, _ := newTestRouter(t, &erroringStore{MemoryStore: mem})

	w := doGet(router, "c1")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "Internal Server Error")
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStoreFailureDoesNotLogBearerToken(t *testing.T) {
	mem := storage.NewMemoryStore()
	defer mem.Close()
	router, _ := newTestRouter(t, &erroringStore{MemoryStore: mem})

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	w := doGet(router, "sekrit-bearer-token")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, buf.String(), "sekrit-bearer-token", "bearer tokens are secrets and must not reach the log")
	require.Contains(t, buf.String(), "token identity")
}
