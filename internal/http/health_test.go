package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kindle-notion/internal/database"
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type failingPinger struct{}

func (failingPinger) Ping() error { return errors.New("disk I/O error") }

func getHealth(t *testing.T, controller *HealthController) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w, response
}

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when database is connected", func(t *testing.T) {
		w, response := getHealth(t, NewHealthController(setupTestDB(t), "", "1.0.0"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.NotContains(t, response.Checks, "clippings")
		assert.Contains(t, response.Time, "T")
	})

	t.Run("reports missing database", func(t *testing.T) {
		w, response := getHealth(t, NewHealthController(nil, "", "1.0.0"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "not configured", response.Checks["database"])
	})

	t.Run("returns unhealthy when database connection is closed", func(t *testing.T) {
		db := setupTestDB(t)
		require.NoError(t, db.Close())

		w, response := getHealth(t, NewHealthController(db, "", "1.0.0"))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Contains(t, response.Checks["database"], "error")
	})

	t.Run("returns unhealthy when ping fails", func(t *testing.T) {
		w, response := getHealth(t, NewHealthController(failingPinger{}, "", ""))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "error: disk I/O error", response.Checks["database"])
		assert.Empty(t, response.Version)
	})
}

func TestHealthController_Clippings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "My Clippings.txt")

	t.Run("missing file keeps the service healthy", func(t *testing.T) {
		w, response := getHealth(t, NewHealthController(setupTestDB(t), path, ""))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "missing", response.Checks["clippings"])
	})

	t.Run("present file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

		_, response := getHealth(t, NewHealthController(setupTestDB(t), path, ""))
		assert.Equal(t, "ok", response.Checks["clippings"])
	})

	t.Run("directory instead of file", func(t *testing.T) {
		_, response := getHealth(t, NewHealthController(nil, dir, ""))
		assert.Equal(t, "error: is a directory", response.Checks["clippings"])
	})
}
