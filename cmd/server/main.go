package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"leadsboard/server/config"
	"leadsboard/server/internal/api"
	"leadsboard/server/internal/auth"
	"leadsboard/server/internal/normalizer"
	"leadsboard/server/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		logger.WithError(err).Fatal("Failed to create store directory")
	}
	logger.Infof("Using worksheet store at: %s", cfg.Store.Path)

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open worksheet store")
	}
	defer st.Close()

	cached := store.NewCached(st, time.Duration(cfg.Store.CacheTTL)*time.Second)

	authService := auth.NewService(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.CookieExpiryHours)*time.Hour,
		cfg.Auth.BcryptCost,
		logger,
	)

	// Hash any plaintext credentials left over from the users import.
	users, err := st.ReadUsers()
	if err != nil {
		logger.WithError(err).Fatal("Failed to read users worksheet")
	}
	users, changed, err := authService.EnsureHashed(users)
	if err != nil {
		logger.WithError(err).Fatal("Failed to hash user credentials")
	}
	if changed {
		if err := st.WriteUsers(users); err != nil {
			logger.WithError(err).Fatal("Failed to persist hashed credentials")
		}
	}

	handler := api.NewHandler(
		cached,
		normalizer.New(logger),
		authService,
		cfg.Auth.CookieName,
		cfg.Auth.CookieExpiryHours*3600,
		logger,
	)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
