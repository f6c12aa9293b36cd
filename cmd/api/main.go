package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-movie-api/internal/config"
	"github.com/go-movie-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-movie-api/internal/infrastructure/jwt"
	s3infra "github.com/go-movie-api/internal/infrastructure/s3"
	"github.com/go-movie-api/internal/infrastructure/smtp"
	"github.com/go-movie-api/internal/infrastructure/sns"
	"github.com/go-movie-api/internal/otp"
	transporthttp "github.com/go-movie-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — login is unavailable without keys).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 media store.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer for reset codes.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional fallback channel).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		MovieRepo:   dynamo.NewMovieRepo(dynamoClient, cfg.DynamoTables.Movies),
		CommentRepo: dynamo.NewCommentRepo(dynamoClient, cfg.DynamoTables.Comments),
		HistoryRepo: dynamo.NewHistoryRepo(dynamoClient, cfg.DynamoTables.History),
		FileRepo:    dynamo.NewFileRepo(dynamoClient, cfg.DynamoTables.Files),
		S3Store:     s3Store,
		Registry:    otp.NewRegistry(cfg.ResetCodeTTL),
		Mailer:      mailer,
		SMSSender:   smsSender,
		JWTProvider: jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
