package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"civicvoice/internal/adapter/api"
	"civicvoice/internal/adapter/api/handler"
	apimiddleware "civicvoice/internal/adapter/api/middleware"
	"civicvoice/internal/adapter/api/router"
	"civicvoice/internal/adapter/repository"
	"civicvoice/internal/domain/entity"
	"civicvoice/internal/domain/service"
	"civicvoice/internal/infrastructure/firebase"
	"civicvoice/internal/infrastructure/gemini"
	"civicvoice/internal/infrastructure/postal"
	"civicvoice/internal/infrastructure/ratelimit"
	"civicvoice/internal/infrastructure/storage"
	"civicvoice/internal/infrastructure/websocket"
	"civicvoice/internal/usecase"
	"civicvoice/pkg/config"
	"civicvoice/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opt option.ClientOption
	if cfg.FirebaseServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))
	} else {
		if _, err := os.Stat(cfg.FirebaseServiceAccountPath); os.IsNotExist(err) {
			logger.Fatal("Service account file does not exist: %s", cfg.FirebaseServiceAccountPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
		opt = option.WithCredentialsFile(cfg.FirebaseServiceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		logger.Fatal("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	var photos service.PhotoStore
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opt)
		if err != nil {
			logger.Fatal("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		photos = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET not set, photos will be stored inline")
	}

	var generator service.TextGenerator
	geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Warn("AI disabled, using fallback responses: %v", err)
	} else {
		generator = geminiClient
	}
	ai := service.NewAIGateway(generator)

	pincodes := postal.NewPincodeClient(cfg.PincodeAPIBaseURL, cfg.PincodeTimeout)

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	grievanceRepo := repository.NewFirestoreGrievanceRepository(firestoreClient)
	socialRepo := repository.NewFirestoreSocialPostRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)
	admins := entity.NewAdminAllowList(cfg.AdminEmails)

	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient, admins)
	grievanceUseCase := usecase.NewGrievanceUseCase(grievanceRepo, socialRepo, ai, pincodes, photos, admins, usecase.GrievanceOptions{
		SocialAutoPost:  cfg.SocialAutoPost,
		AnalysisTimeout: cfg.AnalysisTimeout,
		MaxPhotoBytes:   cfg.MaxPhotoBytes,
	})
	adminUseCase := usecase.NewAdminUseCase(grievanceRepo, ai)
	communityUseCase := usecase.NewCommunityUseCase(grievanceRepo, socialRepo, ai, usecase.TrendingOptions{
		Interval:  cfg.TrendingInterval,
		Threshold: cfg.TrendingThreshold,
		Priority:  cfg.TrendingPriority,
	})

	limiter := ratelimit.NewRateLimiter()
	limiter.SetPolicy(ratelimit.ActionSubmitGrievance, ratelimit.Policy{PerHour: cfg.SubmitRatePerHour})
	limiter.SetPolicy(ratelimit.ActionAdminInsights, ratelimit.Policy{PerHour: cfg.InsightsRatePerHour})
	limiter.StartCleanupRoutine(ctx)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	handler.Setup(authUseCase, grievanceUseCase, adminUseCase, communityUseCase, pincodes, wsManager)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.ErrorHandler

	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient)
	adminMiddleware := apimiddleware.NewAdminMiddleware(admins)

	router.Setup(e, authMiddleware, adminMiddleware, limiter)

	communityUseCase.StartTrendingJob(ctx)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error: %v", err)
	}

	grievanceUseCase.Wait()
	logger.Info("Server stopped")
}
