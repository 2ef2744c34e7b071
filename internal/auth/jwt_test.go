package auth

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestMain(m *testing.M) {
	_ = os.Setenv("JWT_SECRET", "tasknest-test-secret-0123456789")
	if err := InitJWTSecret(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// signWith builds a token directly, bypassing GenerateJWT, so tests can
// control the expiry and the secret.
func signWith(t *testing.T, secret string, userID uint, exp time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
		"exp":     exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func TestVerifyJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT(42)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	userID, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if userID != 42 {
		t.Errorf("VerifyJWT returned user %d, want 42", userID)
	}
}

func TestVerifyJWT_DistinctUsers(t *testing.T) {
	tokenA, _ := GenerateJWT(1)
	tokenB, _ := GenerateJWT(2)

	if tokenA == tokenB {
		t.Fatal("tokens for different users are identical")
	}

	gotA, err := VerifyJWT(tokenA)
	if err != nil {
		t.Fatalf("VerifyJWT(tokenA): %v", err)
	}
	if gotA != 1 {
		t.Errorf("token issued for user 1 verified as user %d", gotA)
	}
}

func TestVerifyJWT_Expired(t *testing.T) {
	token := signWith(t, jwtSecret, 7, time.Now().Add(-time.Minute))

	_, err := VerifyJWT(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("VerifyJWT error = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyJWT_WrongSecret(t *testing.T) {
	token := signWith(t, "some-other-secret-entirely", 7, time.Now().Add(time.Hour))

	_, err := VerifyJWT(token)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("VerifyJWT error = %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyJWT_Tampered(t *testing.T) {
	token, _ := GenerateJWT(7)
	tampered := token[:len(token)-3] + "xxx"

	_, err := VerifyJWT(tampered)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("VerifyJWT error = %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyJWT_Malformed(t *testing.T) {
	for _, bad := range []string{"", "garbage", "a.b"} {
		_, err := VerifyJWT(bad)
		if !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("VerifyJWT(%q) error = %v, want ErrTokenMalformed", bad, err)
		}
	}
}
