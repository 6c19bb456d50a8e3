package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/api/handlers"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/storage"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reconciliation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, svc, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := storage.New(cfg.Storage.UploadDir, cfg.Storage.OutputDir, cfg.Storage.RetainFiles)
		if err != nil {
			return err
		}

		reconcileHandler := handlers.NewReconcileHandler(svc, store, logger)
		router := newRouter(reconcileHandler, cfg.Server.MaxUploadMB)

		logger.Info("reconciler service listening", zap.String("port", cfg.Server.Port), zap.Bool("retain_files", store.Retains()))
		if err := router.Run(":" + cfg.Server.Port); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	},
}

func newRouter(reconcileHandler *handlers.ReconcileHandler, maxUploadMB int64) *gin.Engine {
	router := gin.Default()
	router.MaxMultipartMemory = maxUploadMB << 20

	apiV1 := router.Group("/api/v1", handlers.LimitUploadSize(maxUploadMB<<20))
	{
		apiV1.POST("/reconcile", reconcileHandler.HandleReconcile)
		apiV1.POST("/reconcile/analysis", reconcileHandler.HandleAnalysis)
	}

	router.GET("/download-template", reconcileHandler.HandleTemplate)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": "reconciler"})
	})

	return router
}
