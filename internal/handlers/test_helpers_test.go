package handlers

import (
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/tasknest-dev/tasknest/db"
	"github.com/tasknest-dev/tasknest/internal/auth"
	"github.com/tasknest-dev/tasknest/internal/middleware"
	"github.com/tasknest-dev/tasknest/internal/types"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const testJWTSecret = "tasknest_test_jwt_secret_key_1234567890"

func TestMain(m *testing.M) {
	_ = os.Setenv("JWT_SECRET", testJWTSecret)
	if err := auth.InitJWTSecret(); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// setupMockDB swaps the package-global gorm handle for one backed by a
// sqlmock connection and restores it on cleanup.
func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	previousDB := db.DB
	db.DB = gormDB

	cleanup := func() {
		db.DB = previousDB
		_ = sqlDB.Close()
	}

	return mock, cleanup
}

func withTestUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(types.ContextUserKey, middleware.AuthenticatedUser{
			ID:       userID,
			Username: "alice",
			Email:    "alice@example.com",
		})
		c.Next()
	}
}

func mustStatus(t *testing.T, actual int, expected int) {
	t.Helper()
	if actual != expected {
		t.Fatalf("expected status %d, got %d", expected, actual)
	}
}
