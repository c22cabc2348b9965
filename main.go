package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"youtube-auto-post/domain/repository"
	"youtube-auto-post/infrastructure/cache"
	youtubeclient "youtube-auto-post/infrastructure/clients/youtube"
	"youtube-auto-post/infrastructure/configuration"
	"youtube-auto-post/infrastructure/lock"
	"youtube-auto-post/infrastructure/logger"
	"youtube-auto-post/infrastructure/persistence"
	"youtube-auto-post/infrastructure/pubsub"
	"youtube-auto-post/infrastructure/realtime"
	"youtube-auto-post/infrastructure/servicebus"
	"youtube-auto-post/infrastructure/utils"
	httpHandler "youtube-auto-post/interfaces/http"
	"youtube-auto-post/server"
	"youtube-auto-post/usecase"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	app := configuration.C.App
	if len(os.Args) > 1 && os.Args[1] == "issue-token" {
		issueToken(app.SecretKey, os.Args[2:])
		return
	}

	psqlDb, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Cannot connect to PostgreSQL")
	}
	defer psqlDb.Close()
	if err := persistence.EnsureSchema(psqlDb); err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Failed ensuring record schema")
	}

	attachmentDb, err := persistence.NewRepositories()
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Cannot connect to the attachment store")
	}

	redisClient, err := cache.NewCacheFromConfig(ctx, configuration.C.RedisClient)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - falling back to in-process locks")
		redisClient = nil
	}
	locker := initiateLocker(redisClient)

	tokenStore, err := initiateTokenStore(psqlDb)
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Cannot initialise the OAuth token store")
	}
	tokenCache := persistence.NewGuardedTokenCache(tokenStore, locker)

	messages := initiateMessageLog(ctx, psqlDb)

	hub := realtime.NewUploadHub()
	publishers := []repository.IUploadEventPublisher{hub}
	if p := initiatePubSub(ctx); p != nil {
		defer p.Close()
		publishers = append(publishers, p)
	}
	if p := initiateServiceBus(ctx); p != nil {
		defer p.Close(context.Background())
		publishers = append(publishers, p)
	}
	notifier := usecase.NewNotifier(messages, publishers...)

	yt := configuration.C.YouTube
	authorizer := youtubeclient.NewLocalServerAuthorizer(
		yt.LocalAuthPort,
		time.Duration(yt.AuthTimeoutSeconds)*time.Second,
		youtubeclient.WithAuthURLHandler(func(authURL string) {
			logger.GetLogger().WithField("url", authURL).Warn("YouTube authorization required - open the URL in a browser")
		}),
	)
	credentials := youtubeclient.NewCredentialManager(tokenCache, authorizer)
	connector := youtubeclient.NewConnector(credentials, yt.ChunkSize)

	settingsRepo := persistence.NewSettingsRepository(psqlDb)
	attachmentRepo := persistence.NewAttachmentRepository(attachmentDb)
	uploadRepo := persistence.NewVideoUploadRepository(psqlDb)

	settingsUsecase := usecase.NewSettingsUsecase(settingsRepo, attachmentRepo)
	uploadUsecase := usecase.NewUploadUsecase(
		uploadRepo, attachmentRepo, settingsRepo, connector, locker, notifier,
		usecase.WithConcurrency(configuration.C.Scheduler.Concurrency),
	)
	authUsecase := usecase.NewAuthUsecase(settingsUsecase, credentials, yt.RedirectURI)

	router := server.InitiateRouter(
		httpHandler.NewHealthHandler(psqlDb),
		httpHandler.NewSettingsHandler(settingsUsecase),
		httpHandler.NewUploadHandler(uploadUsecase),
		httpHandler.NewYouTubeAuthHandler(authUsecase),
		hub,
		app.SecretKey,
		app.AllowOrigins,
	)

	if configuration.C.Scheduler.Enabled {
		interval := time.Duration(configuration.C.Scheduler.IntervalSeconds) * time.Second
		g.Go(func() error {
			return runScheduler(ctx, uploadUsecase, interval)
		})
	} else {
		logger.GetLogger().Info("Scheduled upload sweep disabled")
	}

	logger.GetLogger().WithFields(map[string]interface{}{"port": app.Port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", app.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		var err error
		if app.TLSEnabled && app.TLSCertFile != "" && app.TLSKeyFile != "" {
			logger.GetLogger().WithFields(map[string]interface{}{"cert": app.TLSCertFile, "key": app.TLSKeyFile}).Info("Serving HTTPS")
			err = httpServer.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile)
		} else {
			if app.TLSEnabled {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			}
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// issueToken prints a signed operator token for the admin API.
func issueToken(secretKey string, args []string) {
	operator := "operator"
	if len(args) > 0 {
		operator = args[0]
	}
	token, err := utils.GenerateToken(map[string]interface{}{
		"user_name": operator,
		"exp":       utils.GetCurrentTime().Add(30 * 24 * time.Hour).Unix(),
	}, secretKey)
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Cannot sign operator token")
	}
	fmt.Println(token)
}

// runScheduler sweeps due scheduled uploads every interval until ctx ends.
func runScheduler(ctx context.Context, uploads usecase.IUploadUsecase, interval time.Duration) error {
	logger.GetLogger().WithField("interval", interval.String()).Info("Scheduled upload sweep started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			report, err := uploads.ProcessScheduledUploads(ctx)
			if err != nil {
				logger.GetLogger().WithField("error", err).Error("Scheduled upload sweep failed")
				continue
			}
			if report.Processed > 0 {
				logger.GetLogger().WithFields(map[string]interface{}{
					"processed": report.Processed,
					"uploaded":  report.Uploaded,
					"failed":    report.Failed,
				}).Info("Scheduled upload sweep finished")
			}
		}
	}
}

func initiateLocker(rdb *redis.Client) repository.ILocker {
	if rdb == nil {
		logger.GetLogger().Info("Using in-process upload locks")
		return lock.NewKeyedMutex()
	}
	ttl := time.Duration(configuration.C.YouTube.UploadLockTTLMinutes) * time.Minute
	logger.GetLogger().WithField("ttl", ttl.String()).Info("Using Redis upload locks")
	return lock.NewRedisLock(rdb, lock.WithTTL(ttl))
}

func initiateTokenStore(psqlDb *sql.DB) (repository.IOAuthTokenStore, error) {
	backend := configuration.C.YouTube.TokenBackend
	logger.GetLogger().WithField("backend", backend).Info("Initialising OAuth token store")
	switch backend {
	case configuration.TokenBackendPostgres:
		return persistence.NewOAuthTokenRepository(psqlDb), nil
	case configuration.TokenBackendMSSQL:
		mssqlDb, err := persistence.NewMSSQLDB()
		if err != nil {
			return nil, err
		}
		if err := persistence.EnsureOAuthTokenSchemaMSSQL(mssqlDb); err != nil {
			return nil, err
		}
		return persistence.NewOAuthTokenRepositoryMSSQL(mssqlDb), nil
	case configuration.TokenBackendFile, "":
		return persistence.NewFileTokenStore(configuration.C.YouTube.TokenFile), nil
	}
	return nil, fmt.Errorf("unknown token backend %q", backend)
}

// initiateMessageLog prefers MongoDB when configured and reachable.
func initiateMessageLog(ctx context.Context, psqlDb *sql.DB) repository.IUploadMessage {
	mongoCfg := configuration.C.Database.Mongo
	if mongoCfg.Host == "" {
		return persistence.NewUploadMessageRepository(psqlDb)
	}
	mongoDb, err := persistence.NewMongoDb(mongoCfg.Host, mongoCfg.Port, mongoCfg.User, mongoCfg.Password, mongoCfg.Name)
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = mongoDb.Ping(pingCtx, nil)
		cancel()
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - keeping upload messages in PostgreSQL")
		return persistence.NewUploadMessageRepository(psqlDb)
	}
	logger.GetLogger().Info("MongoDB connected successfully; upload messages stored in MongoDB")
	return persistence.NewUploadMessageRepositoryMongo(mongoDb, mongoCfg.Name)
}

func initiatePubSub(ctx context.Context) *pubsub.UploadEventPublisher {
	cfg := configuration.C.Pubsub
	if cfg.ProjectID == "" || cfg.Topic == "" {
		return nil
	}
	client, err := pubsub.NewPubSub(ctx, cfg.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PubSub not available - continuing without upload events")
		return nil
	}
	return pubsub.NewUploadEventPublisher(client, cfg.Topic)
}

func initiateServiceBus(ctx context.Context) *servicebus.UploadEventPublisher {
	cfg := configuration.C.ServiceBus
	if cfg.Namespace == "" || cfg.Queue == "" {
		return nil
	}
	client, err := servicebus.NewServiceBus(ctx, cfg.Namespace)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without upload events")
		return nil
	}
	p, err := servicebus.NewUploadEventPublisher(client, cfg.Queue)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus sender failed")
		return nil
	}
	return p
}
