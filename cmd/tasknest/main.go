package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/tasknest-dev/tasknest/db"
	"github.com/tasknest-dev/tasknest/internal/auth"
	"github.com/tasknest-dev/tasknest/internal/mailer"
	"github.com/tasknest-dev/tasknest/internal/notifier"
	"github.com/tasknest-dev/tasknest/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	if err := db.ConnectDatabase(databaseDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	smtpMailer, err := mailer.NewSMTPMailerFromEnv()

	if err != nil {
		log.Fatalf("Failed to configure mailer: %v", err)
	}

	notifier.Initialize(smtpMailer, notifyInterval())
	defer notifier.Shutdown()

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// databaseDSN prefers DATABASE_URL and otherwise assembles the DSN from
// discrete DB_* variables. DATABASE_SSLMODE toggles secure transport to
// the store (e.g. "require" in production).
func databaseDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	sslMode := os.Getenv("DATABASE_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		sslMode,
	)
}

func notifyInterval() time.Duration {
	minutes := 5

	if raw := os.Getenv("NOTIFY_INTERVAL_MINUTES"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			log.Printf("Invalid NOTIFY_INTERVAL_MINUTES %q, using default", raw)
		} else {
			minutes = parsed
		}
	}

	return time.Duration(minutes) * time.Minute
}
