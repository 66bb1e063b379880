package http

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable.
// Implemented by database.Database.
type Pinger interface {
	Ping() error
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController reports database reachability and whether the clippings
// file is visible. A missing clippings file keeps the service healthy.
type HealthController struct {
	db            Pinger
	clippingsPath string
	version       string
}

func NewHealthController(db Pinger, clippingsPath, version string) *HealthController {
	return &HealthController{
		db:            db,
		clippingsPath: clippingsPath,
		version:       version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.clippingsPath != "" {
		checks["clippings"] = clippingsCheck(h.clippingsPath)
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}

func clippingsCheck(path string) string {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return "missing"
	case err != nil:
		return "error: " + err.Error()
	case info.IsDir():
		return "error: is a directory"
	}
	return "ok"
}
