package api

import (
	"alcyxob/fitness-catalog/internal/logger"
	"alcyxob/fitness-catalog/internal/service"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(runner *fakeRunner, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	log := logger.NewNop()
	SetupRoutes(r, RouterDeps{
		Logger:          log,
		JWTSecret:       secret,
		ExerciseService: &fakeExerciseService{},
		Gifs:            NewGifHandler(GifHandlerOptions{Source: &fakeImages{}}),
		Admin:           NewAdminHandler(runner, 20, log),
	})
	return r
}

func adminPost(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, RoleAdmin, time.Hour))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdminImportUsesDefaultLimit(t *testing.T) {
	runner := &fakeRunner{}
	rec := adminPost(t, newTestServer(runner, testSecret), "/api/v1/admin/import", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 20, runner.lastLimit)
	assert.Contains(t, rec.Body.String(), `"created":2`)
}

func TestAdminImportExplicitLimit(t *testing.T) {
	runner := &fakeRunner{}
	rec := adminPost(t, newTestServer(runner, testSecret), "/api/v1/admin/import", `{"limit":5}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, runner.lastLimit)
}

func TestAdminImportZeroLimitMeansWholeCatalog(t *testing.T) {
	runner := &fakeRunner{lastLimit: -1}
	rec := adminPost(t, newTestServer(runner, testSecret), "/api/v1/admin/import", `{"limit":0}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, runner.importRuns)
	assert.Equal(t, 0, runner.lastLimit)
}

func TestAdminImportRejectsNegativeLimit(t *testing.T) {
	runner := &fakeRunner{}
	rec := adminPost(t, newTestServer(runner, testSecret), "/api/v1/admin/import", `{"limit":-1}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, runner.importRuns)
}

func TestAdminReconcilePassesOptions(t *testing.T) {
	runner := &fakeRunner{}
	rec := adminPost(t, newTestServer(runner, testSecret), "/api/v1/admin/reconcile",
		`{"repairGif":true,"resolveMissingIds":true,"exactMatchOnly":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.Options{RepairGif: true, ResolveMissingIDs: true, ExactMatchOnly: true}, runner.lastOpts)
}

func TestAdminReconcileRequiresARepair(t *testing.T) {
	rec := adminPost(t, newTestServer(&fakeRunner{}, testSecret), "/api/v1/admin/reconcile", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRunInProgressIsConflict(t *testing.T) {
	runner := &fakeRunner{err: service.ErrRunInProgress}
	rec := adminPost(t, newTestServer(runner, testSecret), "/api/v1/admin/import", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminFailureIsServerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("store unavailable")}
	rec := adminPost(t, newTestServer(runner, testSecret), "/api/v1/admin/reconcile", `{"repairFields":true}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAdminRoutesNotMountedWithoutSecret(t *testing.T) {
	runner := &fakeRunner{}
	rec := adminPost(t, newTestServer(runner, ""), "/api/v1/admin/import", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, runner.importRuns)
}

func TestHealthAndPing(t *testing.T) {
	r := newTestServer(&fakeRunner{}, "")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.JSONEq(t, `{"message":"pong"}`, rec.Body.String())
}

func TestProxyRouteIsMounted(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(&fakeRunner{}, "").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/gifs/exercise/0001", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"IMAGE NOT FOUND"}`, rec.Body.String())
}
