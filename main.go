package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"citoyens/internal/accesslog"
	"citoyens/internal/config"
	"citoyens/internal/logger"
	"citoyens/internal/metrics"
	"citoyens/internal/models"
	"citoyens/internal/services"
	"citoyens/internal/server"
	"citoyens/internal/store"
	"citoyens/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// --- Store ---
	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open the store")
	}

	// --- Services ---
	citizenService := services.NewCitizenService(st.Citizens)
	logService := services.NewLogService(st.Logs)
	var authService *services.AuthService
	if cfg.AdminEnabled() {
		authService = services.NewAuthService(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.TokenDuration)
	} else {
		log.Info("no administrator configured, the log API is disabled")
	}

	if cfg.SeedDemoData {
		seedCitizens(ctx, citizenService, log)
	}

	m := metrics.New()

	// --- Access log sinks ---
	storeSink := accesslog.NewStoreSink(logService)
	var sinks []accesslog.Sink
	var fileSink *accesslog.FileSink
	if cfg.HasSink("file") {
		fileSink, err = accesslog.NewFileSink(cfg.AccessLogFile)
		if err != nil {
			log.WithError(err).Fatal("failed to open the access log file")
		}
		sinks = append(sinks, fileSink)
	}

	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize RabbitMQ client")
		}
		// The broker replaces the direct store write; the consumer persists what it receives.
		sinks = append(sinks, accesslog.NewBrokerSink(mqClient))
		if cfg.HasSink("store") {
			err = mqClient.ConsumeAccessLogs(func(msg amqp.Delivery) error {
				return accesslog.Replay(ctx, storeSink, msg.Body)
			})
			if err != nil {
				log.WithError(err).Fatal("failed to start the access log consumer")
			}
		}
	} else if cfg.HasSink("store") {
		sinks = append(sinks, storeSink)
	}

	dispatcher := accesslog.NewDispatcher(cfg.AccessLogBuffer, log, sinks...)
	dispatcher.OnDrop(m.IncrementAccessLogDrops)

	// --- HTTP ---
	app := server.NewApp(server.Dependencies{
		Config:    cfg,
		Log:       log,
		Metrics:   m,
		Citizens:  citizenService,
		Logs:      logService,
		Auth:      authService,
		AccessLog: dispatcher,
		StoreName: st.Name,
	})

	go func() {
		log.WithField("port", cfg.AppPort).Info("starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("error during Fiber shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.WithError(err).Warn("access log queue not fully drained")
	}
	if fileSink != nil {
		if err := fileSink.Close(); err != nil {
			log.WithError(err).Error("error closing the access log file")
		}
	}
	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			log.WithError(err).Error("error closing RabbitMQ client")
		}
	}
	if err := st.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("error closing the store")
	}

	log.Info("server gracefully stopped")
}

// seedCitizens registers a few demo citizens. Already registered NCIs are skipped.
func seedCitizens(ctx context.Context, service *services.CitizenService, log logrus.FieldLogger) {
	citizens := []models.CitizenInput{
		{LastName: "Diouf", FirstName: "Mor", FatherName: "Alioune Diouf", MotherName: "Fatou Sarr", NCI: "1751199800123"},
		{LastName: "Sarr", FirstName: "Aminata", FatherName: "Ibrahima Sarr", MotherName: "Awa Ndiaye", NCI: "2751199900456"},
		{LastName: "Ndoye", FirstName: "Cheikh", FatherName: "Moussa Ndoye", MotherName: "Khady Fall", NCI: "1751200000789"},
	}

	for _, input := range citizens {
		c, err := service.Save(ctx, input)
		switch {
		case errors.Is(err, services.ErrDuplicateNCI):
			log.WithField("nci", input.NCI).Debug("demo citizen already registered")
		case err != nil:
			log.WithError(err).WithField("nci", input.NCI).Error("error seeding citizen")
		default:
			log.WithFields(logrus.Fields{"id": c.ID, "nci": c.NCI}).Info("seeded citizen")
		}
	}
}
