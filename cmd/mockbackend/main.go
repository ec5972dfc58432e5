// Package main запускает заглушку REST API бэкенда для локальной разработки.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/parcel-portal/internal/mockapi"
)

func main() {
	addr := flag.String("a", "localhost:8081", "address and port for mock backend")
	seed := flag.Int64("seed", 1, "seed for generated data")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	sugar := logger.Sugar()

	server := &http.Server{
		Addr:              *addr,
		Handler:           mockapi.NewServer(*seed, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting mock backend", "addr", *addr, "seed", *seed)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("mock backend terminated with error", "error", err)
	}
}
