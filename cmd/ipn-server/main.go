package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/k-code-yt/cashpay-ipn/internal/config"
	"github.com/k-code-yt/cashpay-ipn/internal/ipn"
	"github.com/k-code-yt/cashpay-ipn/internal/logging"
	"github.com/k-code-yt/cashpay-ipn/internal/metrics"
	"github.com/k-code-yt/cashpay-ipn/internal/repos"
	"github.com/k-code-yt/cashpay-ipn/internal/service/outbox"
	httptransport "github.com/k-code-yt/cashpay-ipn/internal/transport/http"
	"github.com/k-code-yt/cashpay-ipn/pkg/db/postgres"
	pkgkafka "github.com/k-code-yt/cashpay-ipn/pkg/kafka"
)

func init() {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		log.Fatal("Unable to get current file path")
	}

	envPath := filepath.Join(filepath.Dir(filename), ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("No .env file found at %s", envPath)
	}
}

func main() {
	logger := logging.NewProcessLogger(os.Getenv("LOG_LEVEL"))
	logrus.SetFormatter(logger.Formatter)
	logrus.SetLevel(logger.Level)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	forensic, closer, err := logging.OpenForensicSink(cfg.Server.LogFile)
	if err != nil {
		logger.WithError(err).Fatal("unable to open ipn log")
	}
	defer closer.Close()

	db, err := postgres.NewDBConn(postgres.NewPostgresConfig("shop"))
	if err != nil {
		logger.WithError(err).Fatal("unable to conn to db")
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New()
	if err := m.Register(reg); err != nil {
		logger.WithError(err).Fatal("unable to register metrics")
	}

	eventRepo := repos.NewEventRepo(db)
	processor := ipn.NewProcessor(
		ipn.NewValidator(),
		ipn.NewSigner(cfg.IPN.NotificationKey),
		ipn.NewTransactionGate(cfg.IPN.ShopID),
		ipn.NewOrderStateMachine(cfg.IPN.PaidStatus, cfg.IPN.ExpiredStatus, cfg.IPN.PaidMessage, cfg.IPN.ExpiredMessage),
		repos.NewDatastore(db, eventRepo),
		ipn.WithLogger(logger),
		ipn.WithForensicLog(forensic, logging.NewRedactor(cfg.Server.LogMaxValue)),
		ipn.WithObserver(m),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Outbox.Enabled {
		producer, err := pkgkafka.NewKafkaProducer(pkgkafka.NewKafkaConfig(cfg.Outbox.BootstrapServers, cfg.Outbox.Topic))
		if err != nil {
			logger.WithError(err).Fatal("unable to create kafka producer")
		}
		defer producer.Close()
		encoder, err := pkgkafka.NewSettlementEncoder()
		if err != nil {
			logger.WithError(err).Fatal("unable to build avro codec")
		}
		relay := outbox.NewOutbox(eventRepo, producer, encoder, cfg.Outbox.Interval, cfg.Outbox.BatchSize, m.OutboxPending)
		go relay.Run(ctx)
	}

	gin.SetMode(gin.ReleaseMode)
	router := httptransport.NewRouter(cfg.Server.CallbackPath, httptransport.NewNotificationHandler(processor), m, reg)
	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithFields(logrus.Fields{
		"ADDR":     cfg.Server.HTTPAddr,
		"CALLBACK": cfg.Server.CallbackPath,
		"OUTBOX":   cfg.Outbox.Enabled,
	}).Info("IPN:SERVER_STARTED")
	if err := serve(ctx, srv, 10*time.Second); err != nil {
		logger.WithError(err).Error("http server failed")
		stop()
	}
	logger.Info("IPN:SERVER_STOPPED")
}

// serve runs srv until ctx is done or the listener fails, then shuts it down.
// It returns the listener error, if any, so the caller's deferred closes run.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if sErr := srv.Shutdown(shutdownCtx); sErr != nil {
		logrus.WithError(sErr).Error("graceful shutdown failed")
	}
	return err
}
