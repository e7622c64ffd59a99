package main

import (
	"log"
	"net/http"

	_ "ecomauth/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ecomauth/internal/auth"
	"ecomauth/internal/cache"
	"ecomauth/internal/config"
	"ecomauth/internal/db"
	"ecomauth/internal/handler"
	"ecomauth/internal/mail"
	"ecomauth/internal/model"
	"ecomauth/internal/repository"
	"ecomauth/internal/router"
	"ecomauth/internal/service"
)

// @title User Authentication API
// @version 1.0
// @description User registration with OTP email verification, login, and password recovery.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	mailer := mail.NewSMTPSender(cfg.SMTP)

	authService := service.NewAuthService(userRepo, jwtService, mailer)
	userService := service.NewUserService(userRepo, cacheClient)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	router.Register(e, cfg, authHandler, userHandler)

	if cfg.SwaggerHost != "" {
		log.Printf("swagger ui available at http://%s/swagger/index.html", cfg.SwaggerHost)
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
