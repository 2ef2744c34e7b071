package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasknest-dev/tasknest/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

var userColumns = []string{"id", "created_at", "updated_at", "deleted_at", "email", "username", "password_hash"}

func authRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/auth/register", Register)
	r.POST("/api/auth/login", Login)
	return r
}

func TestRegister(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "notification_preferences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active"}).AddRow(1, true))
	mock.ExpectCommit()

	router := authRouter()
	body := `{"email":"Alice@Example.com","username":"alice","password":"Str0ng!pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	mustStatus(t, resp.Code, http.StatusCreated)

	var out map[string]map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Equal(t, "alice", out["user"]["username"])
	assert.Equal(t, "alice@example.com", out["user"]["email"])
	assert.NotContains(t, resp.Body.String(), "password")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := authRouter()
	body := `{"email":"alice@example.com","username":"alice","password":"weakpass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	mustStatus(t, resp.Code, http.StatusBadRequest)

	// Nothing may have been inserted.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	router := authRouter()
	body := `{"email":"alice@example.com","username":"alice","password":"Str0ng!pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	mustStatus(t, resp.Code, http.StatusBadRequest)
	assert.Contains(t, resp.Body.String(), "already exists")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestLogin(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!pass"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(42, now, now, nil, "alice@example.com", "alice", string(hash)))

	router := authRouter()
	body := `{"username":"alice","password":"Str0ng!pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	mustStatus(t, resp.Code, http.StatusOK)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)

	// The credential must round-trip to the same user.
	userID, err := auth.VerifyJWT(out.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!pass"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(42, now, now, nil, "alice@example.com", "alice", string(hash)))

	router := authRouter()
	body := `{"username":"alice","password":"Wrong!pass1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	mustStatus(t, resp.Code, http.StatusBadRequest)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username`).
		WillReturnRows(sqlmock.NewRows(userColumns))

	router := authRouter()
	body := `{"username":"nobody","password":"Str0ng!pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	mustStatus(t, resp.Code, http.StatusBadRequest)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
