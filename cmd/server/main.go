package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	httpadapter "github.com/workfound/workfound-server/internal/adapters/http"
	"github.com/workfound/workfound-server/internal/adapters/repository/postgres"
	"github.com/workfound/workfound-server/internal/core/alert"
	"github.com/workfound/workfound-server/internal/core/application"
	"github.com/workfound/workfound-server/internal/core/company"
	"github.com/workfound/workfound-server/internal/core/event"
	"github.com/workfound/workfound-server/internal/core/job"
	"github.com/workfound/workfound-server/internal/core/message"
	corenotify "github.com/workfound/workfound-server/internal/core/notify"
	"github.com/workfound/workfound-server/internal/core/resume"
	"github.com/workfound/workfound-server/internal/core/saved"
	"github.com/workfound/workfound-server/internal/core/user"
	"github.com/workfound/workfound-server/internal/core/wallet"
	"github.com/workfound/workfound-server/internal/platform/config"
	pg "github.com/workfound/workfound-server/internal/platform/db/postgres"
	platformnotify "github.com/workfound/workfound-server/internal/platform/notify"
	"github.com/workfound/workfound-server/internal/platform/server"
	"github.com/workfound/workfound-server/internal/platform/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)

	var notifier corenotify.Notifier = corenotify.Nop{}
	if cfg.Notify.URL != "" {
		amqpNotifier, err := platformnotify.NewAMQPNotifier(cfg.Notify, logger)
		if err != nil {
			log.Fatalf("failed to connect notification broker: %v", err)
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
	}

	store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	userRepo := postgres.NewUserRepository(dbPool)
	companyRepo := postgres.NewCompanyRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	walletRepo := postgres.NewWalletRepository(dbPool)
	resumeRepo := postgres.NewResumeRepository(dbPool)
	eventRepo := postgres.NewEventRepository(dbPool)
	messageRepo := postgres.NewMessageRepository(dbPool)
	alertRepo := postgres.NewAlertRepository(dbPool)
	savedRepo := postgres.NewSavedRepository(dbPool)

	userSvc := user.NewService(userRepo)
	companySvc := company.NewService(companyRepo, nil, txManager, notifier)
	alertSvc := alert.NewService(alertRepo, nil, notifier)
	jobSvc := job.NewService(jobRepo, companySvc, nil, txManager, alertSvc)
	applicationSvc := application.NewService(applicationRepo, companySvc, nil, txManager, notifier)
	walletSvc := wallet.NewService(walletRepo, companySvc, jobSvc, nil, txManager)
	resumeSvc := resume.NewService(resumeRepo, nil)
	eventSvc := event.NewService(eventRepo)
	messageSvc := message.NewService(messageRepo, nil, txManager)
	savedSvc := saved.NewService(savedRepo, nil, txManager)

	var limiter *rate.Limiter
	if cfg.Server.RateLimitPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	}

	router := httpadapter.NewRouter(httpadapter.RouterDependencies{
		Users:        httpadapter.NewUserHandler(userSvc),
		Companies:    httpadapter.NewCompanyHandler(companySvc),
		Jobs:         httpadapter.NewJobHandler(jobSvc),
		Applications: httpadapter.NewApplicationHandler(applicationSvc),
		Wallets:      httpadapter.NewWalletHandler(walletSvc),
		Resumes:      httpadapter.NewResumeHandler(resumeSvc),
		Events:       httpadapter.NewEventHandler(eventSvc),
		Messages:     httpadapter.NewMessageHandler(messageSvc),
		Alerts:       httpadapter.NewAlertHandler(alertSvc),
		Saved:        httpadapter.NewSavedHandler(savedSvc),
		Uploads:      httpadapter.NewUploadHandler(store),
		Verifier:     postgres.NewSessionVerifier(dbPool),
		Limiter:      limiter,
	})

	httpServer := server.New(cfg.Server, router)

	logger.Info("http server listening", "addr", cfg.Server.ListenAddr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpServer.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
