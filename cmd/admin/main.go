// Command admin is a maintenance CLI that talks to the database directly:
// stats, listings and retention cleanup without going through the bot.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/storage"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	store := storage.NewService(db, nil) // No redis needed for the CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <stats|users|chats|cleanup> [args]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "stats":
		stats, err := store.GetStats()
		if err != nil {
			log.Fatalf("Error collecting stats: %v", err)
		}
		fmt.Printf("Users: %d\nActive chats: %d\nActive today: %d\nMessages: %d\n",
			stats.TotalUsers, stats.ActiveChats, stats.TodayActive, stats.TotalMessages)

	case "users":
		users, err := store.GetAllUsers()
		if err != nil {
			log.Fatalf("Error listing users: %v", err)
		}
		for _, u := range users {
			fmt.Printf("%d\t%s\tlast active %s\n",
				u.TelegramID, u.DisplayName(), u.LastActive.Format(time.RFC3339))
		}

	case "chats":
		chats, err := store.GetAllChats()
		if err != nil {
			log.Fatalf("Error listing chats: %v", err)
		}
		for _, c := range chats {
			state := "ended"
			if c.IsActive {
				state = "active"
			}
			fmt.Printf("%d\t%s <-> %s\t%s\n", c.ID, c.User1Name, c.User2Name, state)
		}

	case "cleanup":
		retention := config.DefaultRetention
		if len(os.Args) > 2 {
			days, err := strconv.Atoi(os.Args[2])
			if err != nil || days <= 0 {
				fmt.Println("Usage: admin cleanup [days]")
				os.Exit(1)
			}
			retention = time.Duration(days) * 24 * time.Hour
		}
		report, err := store.CleanupOldData(retention)
		if err != nil {
			log.Fatalf("Error running cleanup: %v", err)
		}
		fmt.Printf("Removed: %d chats, %d invitations, %d messages, %d users\n",
			report.Chats, report.Invitations, report.Messages, report.Users)

	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}
