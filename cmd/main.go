package main

import (
	"context"
	"log"
	"net/http"

	"pairlink/backend/internal/api/handler"
	"pairlink/backend/internal/config"
	"pairlink/backend/internal/localization"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/pairing"
	"pairlink/backend/internal/relay"
	"pairlink/backend/internal/storage"
	"pairlink/backend/internal/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.Invitation{},
		&models.Message{},
		&models.BroadcastLog{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting PairLink backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg := config.Load()
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is not set!")
	}

	db, rdb := setupDependencies(cfg)
	store := storage.NewService(db, rdb)

	loc, err := localization.NewLocalizer("internal/localization", config.DefaultLanguage)
	if err != nil {
		log.Fatalf("Failed to load localization files: %v", err)
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint,
		&http.Client{Timeout: config.SendTimeout})
	if err != nil {
		log.Fatalf("Failed to start the Telegram bot: %v", err)
	}

	sender := telegram.NewSender(bot)
	pairSvc := pairing.NewService(store, sender)
	engine := relay.NewEngine(store, sender, loc)
	botService := telegram.NewBotService(bot, sender, store, pairSvc, engine, loc, cfg)

	go botService.Run()

	r := gin.Default()
	h := handler.NewHandler(store, sender, loc, store, cfg)

	r.POST("/login", h.Login)
	admin := r.Group("/admin", h.AuthRequired())
	{
		admin.GET("/stats", h.GetStats)
		admin.GET("/users", h.GetUsers)
		admin.GET("/chats", h.GetChats)
		admin.POST("/cleanup", h.PostCleanup)
		admin.POST("/broadcast", h.PostBroadcast)
		admin.GET("/events", h.ServeEvents)
	}

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    config.SendTimeout,
		WriteTimeout:   config.SendTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
