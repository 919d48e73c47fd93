// Package api serves the transaction list and currency selection as JSON.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reactbank/reactbank/internal/app"
)

const shutdownTimeout = 5 * time.Second

// NewRouter registers every route on a fresh gin engine.
func NewRouter(a *app.App) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(a.Logger), gin.Recovery())

	h := &handler{app: a}
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/currencies", h.listCurrencies)
		v1.GET("/currency", h.getCurrency)
		v1.POST("/currency", h.selectCurrency)

		v1.GET("/transactions", h.listTransactions)
		v1.POST("/transactions/refresh", h.refreshTransactions)
		v1.GET("/transactions/:refId", h.getTransaction)
		v1.GET("/transactions/:refId/receipt", h.getReceipt)
	}
	return r
}

// Serve runs the API on addr until ctx is cancelled.
func Serve(ctx context.Context, a *app.App, addr string) error {
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server starting", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down api: %w", err)
	}
	a.Logger.Info("server stopped")
	return nil
}
