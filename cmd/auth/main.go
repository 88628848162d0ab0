package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mlanina/auth_service/internal/config"
	"github.com/mlanina/auth_service/internal/guard"
	"github.com/mlanina/auth_service/internal/httpserver"
	"github.com/mlanina/auth_service/internal/mailer"
	"github.com/mlanina/auth_service/internal/middleware"
	"github.com/mlanina/auth_service/internal/mykafka"
	"github.com/mlanina/auth_service/internal/repo"
	"github.com/mlanina/auth_service/internal/service"
	"github.com/mlanina/auth_service/pkg/logging"
	"github.com/mlanina/auth_service/pkg/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.RequestLogger(logger))

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	codec := tokens.NewCodec(cfg.JWTSecret)
	access := tokens.NewAccessTokenService(codec, cfg.AccessTTL)
	reset := tokens.NewResetTokenService(codec, cfg.ResetTTL)

	userRepo := repo.GormRepo{DB: db}
	producer := mykafka.NewProducer(cfg.KafkaAddress)
	defer producer.Close()

	svc := &service.AuthService{
		Repo:   userRepo,
		Access: access,
		Reset:  reset,
		Mailer: &mailer.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.SMTPEmail,
			Password: cfg.SMTPPassword,
		},
		Producer: producer,
		APIBase:  cfg.APIBase,
	}

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{
			Svc:         svc,
			FrontendURL: cfg.FrontendURL,
		},
		Guard: guard.New(access, &userRepo),
	})

	go func() {
		if err := e.Start(cfg.Addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
