package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/handlers"
	"github.com/kiranakhata/retail_backend/middlewares"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/voice"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// customErrorLogger logs only requests that produced errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func setupRouter(logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(customErrorLogger(logger))
	r.Use(middlewares.CorrelationIdMiddleware())

	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate app endpoints on dependency readiness.
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Correlation-Id"}
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.SessionMiddleware())

	r.POST("/api/auth/register", handlers.Register)
	r.POST("/api/auth/login", handlers.Login)

	voiceSaleHandler := handlers.NewVoiceSaleHandler(voice.NewHeuristicMatcher())

	api := r.Group("/api", middlewares.RequireUser())
	{
		api.POST("/auth/logout", handlers.Logout)
		api.GET("/auth/me", handlers.Me)

		api.POST("/inventory", handlers.CreateProduct)
		api.GET("/inventory", handlers.GetProducts)
		api.GET("/inventory/alerts", handlers.GetAlerts)
		api.GET("/inventory/:id", handlers.GetProduct)
		api.PUT("/inventory/:id", handlers.UpdateProduct)
		api.GET("/inventory/:id/batches", handlers.GetBatches)
		api.POST("/inventory/:id/quick-adjust", handlers.QuickAdjustStock)
		api.POST("/batches", handlers.AddBatch)
		api.POST("/batches/:id/adjust", handlers.AdjustBatchStock)

		api.POST("/sales", handlers.RecordSale)
		api.GET("/sales", handlers.GetSales)
		api.GET("/sales/:id", handlers.GetSale)

		api.POST("/purchases", handlers.RecordPurchase)
		api.GET("/purchases", handlers.GetPurchases)
		api.GET("/purchases/:id", handlers.GetPurchase)

		api.POST("/suppliers", handlers.CreateSupplier)
		api.GET("/suppliers", handlers.GetSuppliers)
		api.GET("/suppliers/balances", handlers.GetSupplierBalances)
		api.GET("/suppliers/:id", handlers.GetSupplier)
		api.PUT("/suppliers/:id", handlers.UpdateSupplier)
		api.GET("/suppliers/:id/ledger", handlers.GetSupplierLedger)
		api.POST("/suppliers/payments", handlers.RecordSupplierPayment)

		api.POST("/cashflow", handlers.RecordCashEntry)
		api.GET("/cashflow", handlers.GetCashFlow)
		api.GET("/cashflow/overview", handlers.GetAccountOverview)
		api.POST("/cashflow/reconcile", handlers.RunReconciliation)

		api.POST("/capital", handlers.AddCapitalTransaction)
		api.GET("/capital", handlers.GetCapitalTransactions)
		api.GET("/capital/summary", handlers.GetCapitalSummary)

		api.POST("/voice-sales/parse", voiceSaleHandler.ParseVoiceSale)
		api.GET("/voice-sales", voiceSaleHandler.GetVoiceSales)
		api.GET("/voice-sales/pending", voiceSaleHandler.GetPendingVoiceSales)
		api.POST("/voice-sales/:id/confirm", voiceSaleHandler.ConfirmVoiceSale)
		api.POST("/voice-sales/:id/reject", voiceSaleHandler.RejectVoiceSale)
		api.PUT("/voice-sales/:id/items", voiceSaleHandler.UpdateVoiceSaleItems)
	}

	return r
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Shutdown coordination: handle SIGTERM for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the instance
	// healthy. Until the DB is ready, app endpoints return 503.
	r := setupRouter(logger)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow disabling it on
	// startup and running migrations as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	// Set the session isolation level to READ COMMITTED
	if config.IsMySQL() {
		for attempt := 1; ; attempt++ {
			err := db.Exec("SET SESSION TRANSACTION ISOLATION LEVEL READ COMMITTED").Error
			if err == nil {
				break
			}
			sleep := time.Second * time.Duration(1<<min(attempt, 5))
			if sleep > 30*time.Second {
				sleep = 30 * time.Second
			}
			logger.WithFields(logrus.Fields{
				"field":   "database",
				"attempt": attempt,
			}).Warn("failed to set isolation level; retrying in " + sleep.String() + ": " + err.Error())
			time.Sleep(sleep)
		}
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	log.Println("Server started successfully")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Drain HTTP requests.
	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	// Close Redis (best-effort).
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
