package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tasknest-dev/tasknest/db"

	_ "github.com/lib/pq"
)

// HealthCheck reports liveness and pings the store over a fresh
// database/sql connection, independent of the gorm pool.
func HealthCheck(c *gin.Context) {
	status := "ok"
	database := "up"
	code := http.StatusOK

	if err := pingDatabase(); err != nil {
		status = "degraded"
		database = err.Error()
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"message":   "Tasknest is running",
		"database":  database,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func pingDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := sql.Open("postgres", db.DSN)

	if err != nil {
		return err
	}

	defer conn.Close()

	return conn.PingContext(ctx)
}
