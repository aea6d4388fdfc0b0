package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handler"
	"inkwell/internal/logger"
	"inkwell/internal/queue"
	"inkwell/internal/redis"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// Run wires the whole application together and serves until interrupted.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	rdb, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()

	ctx := context.Background()
	if err := rdb.Ping(ctx); err != nil {
		return err
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)
	followRepo := repository.NewFollowRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	publisher := queue.NewPublisher(rdb.Client)

	// Services.
	authService := service.NewAuthService(cfg)
	userService := service.NewUserService(userRepo)
	topicService := service.NewTopicService(topicRepo)
	postService := service.NewPostService(postRepo, userRepo, topicRepo, likeRepo, bookmarkRepo, publisher, db, log)
	commentService := service.NewCommentService(commentRepo, postRepo, publisher, db, log)
	followService := service.NewFollowService(followRepo, userRepo, publisher, db, log)
	notificationService := service.NewNotificationService(notificationRepo)

	// Media is optional: the API runs without object storage configured.
	var mediaHandler *handler.MediaHandler
	if mediaService, err := service.NewMediaService(ctx, cfg); err != nil {
		log.Warnw("media service disabled", "error", err)
	} else {
		mediaHandler = handler.NewMediaHandler(mediaService, log)
	}

	// Notification workers.
	consumer := queue.NewConsumer(rdb.Client, log)
	workerHandler := worker.NewHandler(followRepo, userRepo, notificationRepo, log)
	manager := worker.NewManager(consumer, workerHandler, cfg.WorkerCount, log)
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}
	defer manager.Stop()

	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userService, authService, log),
		UserHandler:         handler.NewUserHandler(userService, log),
		PostHandler:         handler.NewPostHandler(postService, topicService, log),
		CommentHandler:      handler.NewCommentHandler(commentService, log),
		FollowHandler:       handler.NewFollowHandler(followService, log),
		NotificationHandler: handler.NewNotificationHandler(notificationService, log),
		MediaHandler:        mediaHandler,
		JWTSecret:           cfg.JWTSecret,
		RateLimitPerMinute:  cfg.RateLimitPerMinute,
		Log:                 log,
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Infow("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
