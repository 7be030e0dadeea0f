package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BerylCAtieno/icp-profiler/internal/a2a"
	"github.com/BerylCAtieno/icp-profiler/internal/api"
	"github.com/BerylCAtieno/icp-profiler/internal/chat"
	"github.com/BerylCAtieno/icp-profiler/internal/config"
	"github.com/BerylCAtieno/icp-profiler/internal/llm"
	"github.com/BerylCAtieno/icp-profiler/internal/logging"
	"github.com/BerylCAtieno/icp-profiler/internal/profiler"
	"github.com/BerylCAtieno/icp-profiler/internal/telemetry"
)

const serviceName = "icp-profiler"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "text", os.Stderr).WithError(err).Fatal("invalid configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if cfg.TraceStdout {
		shutdownTracing, err := telemetry.SetupTracing(serviceName)
		if err != nil {
			log.WithError(err).Fatal("failed to set up tracing")
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.WithError(err).Warn("tracer shutdown failed")
			}
		}()
	}

	// Initialize Gemini client
	geminiClient, err := llm.NewGeminiClient(context.Background(), cfg.APIKey, cfg.Model, cfg.LLMTimeout)
	if err != nil {
		log.WithError(err).Fatal("failed to create Gemini client")
	}
	defer geminiClient.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)

	analyzer := profiler.NewAnalyzer(geminiClient,
		profiler.WithLogger(log),
		profiler.WithMetrics(metrics),
	)
	chats := chat.NewRegistry(geminiClient,
		chat.WithLogger(log),
		chat.WithMetrics(metrics),
		chat.WithIdleTTL(cfg.ChatIdleTTL),
	)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go chats.Run(sweepCtx, time.Minute)

	router := gin.New()
	router.Use(logging.Middleware(log), gin.Recovery())

	api.NewHandler(analyzer, chats).RegisterRoutes(router)
	a2a.NewA2AHandler(analyzer, a2a.NewAgentCard(cfg.PublicURL)).RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", logging.RequestIDHeader},
		ExposedHeaders: []string{logging.RequestIDHeader},
	})(router)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).WithField("model", cfg.Model).Info("ICP profiler starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	log.Info("server exited")
}
