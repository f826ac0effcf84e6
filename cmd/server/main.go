package main // Entry point package

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yurivlk/contacts-api/internal/auth"
	"github.com/yurivlk/contacts-api/internal/avatar"
	"github.com/yurivlk/contacts-api/internal/config"
	"github.com/yurivlk/contacts-api/internal/database"
	"github.com/yurivlk/contacts-api/internal/handler"
	"github.com/yurivlk/contacts-api/internal/mailer"
	"github.com/yurivlk/contacts-api/internal/queue"
	"github.com/yurivlk/contacts-api/internal/repository"
	"github.com/yurivlk/contacts-api/internal/router"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	contacts := repository.NewContactRepo(db)
	tokens := auth.NewTokenService(cfg.JWTSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour,
		time.Duration(cfg.EmailTokenDays)*24*time.Hour)
	avatars := avatar.New()

	authHandler := handler.NewAuthHandler(cfg, users, tokens, avatars)
	contactHandler := handler.NewContactHandler(contacts)
	userHandler := handler.NewUserHandler(users)

	// The mail consumer runs for the lifetime of the process and keeps
	// reconnecting on broker failures; confirmation email is strictly
	// out-of-band.
	go func() {
		if err := queue.StartConfirmationConsumer(mailer.New()); err != nil {
			log.Printf("mail consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, tokens, users)
	router.RegisterContacts(e, contactHandler, userHandler, tokens, users, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
