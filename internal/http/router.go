package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if cfg.MaxUploadSize > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadSize
	}

	health := NewHealthController(cfg.Database, cfg.ClippingsPath, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	if cfg.Parser != nil {
		clippingsController := NewClippingsController(cfg.Parser, cfg.MaxUploadSize)
		api.POST("/clippings/parse", clippingsController.Parse)
	}

	if cfg.Runs != nil {
		syncController := NewSyncController(cfg.TaskEnqueuer, cfg.Runs, cfg.SyncState)
		api.POST("/sync", syncController.RequestSync)
		api.GET("/sync/status", syncController.Status)
		api.GET("/sync/runs", syncController.ListRuns)
		api.GET("/sync/runs/:id", syncController.GetRun)
	}

	if cfg.TaskStatus != nil {
		tasksController := NewTasksController(cfg.TaskStatus)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
