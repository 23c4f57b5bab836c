package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medreza/honcho-coupon-card/pkg/card"
	"github.com/medreza/honcho-coupon-card/pkg/config"
	"github.com/medreza/honcho-coupon-card/pkg/database"
	"github.com/medreza/honcho-coupon-card/pkg/handlers"
	"github.com/medreza/honcho-coupon-card/pkg/models"
	"github.com/medreza/honcho-coupon-card/pkg/repository"
	"github.com/medreza/honcho-coupon-card/pkg/scheduler"
	"github.com/sirupsen/logrus"
)

func setupLogging(cfg config.LogConfig) {
	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func main() {
	configPath := flag.String("config", "", "Path to a config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	setupLogging(cfg.Log)

	openCtx, cancelOpen := context.WithTimeout(context.Background(), cfg.Storage.OpenTimeout)
	kv, err := database.Open(openCtx, cfg.Storage.StorageOptions())
	cancelOpen()
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	defer kv.Close()

	loc, _ := cfg.Card.Location()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	loop := scheduler.NewLoop(cfg.Card.FrameInterval)
	go loop.Run(loopCtx)

	repo := repository.NewStateRepository(kv, cfg.Storage.Namespace)
	coupon := card.New(repo, loop, nil, card.Options{
		Offer:         models.DefaultOffer(),
		Variant:       cfg.Card.Variant,
		ConfirmDelay:  cfg.Card.ConfirmDelay,
		CloseDelay:    cfg.Card.CloseDelay,
		Location:      loc,
		MaxImageBytes: cfg.Card.MaxImageBytes,
	})
	initial := coupon.Load()
	logrus.WithFields(logrus.Fields{
		"driver":   cfg.Storage.Driver,
		"redeemed": initial.Redeemed,
	}).Info("Card loaded")

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	handlers.NewCardHandler(coupon).Register(router.Group("/api/card"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logrus.Infof("Starting service on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start service: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down service...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Service forced to shutdown: %v", err)
	}

	// Let a pending close or confirm timer land before storage closes.
	time.Sleep(cfg.Card.ConfirmDelay)
	logrus.Info("Service exited")
}
