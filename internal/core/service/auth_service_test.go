package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/imagetagger/accounts/internal/core/domain"
	"github.com/imagetagger/accounts/internal/core/ports"
)

func newAuthSvc() (*AuthService, *stubUserRepo, *stubSessionStore) {
	users := newStubUserRepo()
	sessions := newStubSessionStore()
	return NewAuthService(users, sessions, "secret", time.Hour, zerolog.Nop()), users, sessions
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, _, sessions := newAuthSvc()

	user, err := svc.Register(context.Background(), ports.RegisterInput{Username: " alice ", Password: "pass123", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user == nil {
		t.Fatalf("expected user, got nil")
	}
	if user.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", user.Username)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatalf("registration must not log the user in")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newAuthSvc()

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "", Password: "pass"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: ""}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newAuthSvc()

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "pass", Email: "bob@example.com"})

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "pass2"}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists for username, got %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "robert", Password: "pass2", Email: "bob@example.com"}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists for email, got %v", err)
	}
}

func TestAuthService_Register_WithoutEmail(t *testing.T) {
	svc, _, _ := newAuthSvc()

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "a", Password: "p"}); err != nil {
		t.Fatalf("register a: %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "b", Password: "p"}); err != nil {
		t.Fatalf("two users without email must not collide: %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, sessions := newAuthSvc()

	registered, err := svc.Register(context.Background(), ports.RegisterInput{Username: "carol", Password: "s3cret"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" || res.SessionID == "" {
		t.Fatalf("expected token and session, got %+v", res)
	}
	if res.User == nil || res.User.ID != registered.ID {
		t.Fatalf("unexpected user: %+v", res.User)
	}
	if sessions.sessions[res.SessionID] != registered.ID {
		t.Fatalf("session not stored for user")
	}
	if sessions.ttls[res.SessionID] != time.Hour {
		t.Fatalf("expected session ttl 1h, got %s", sessions.ttls[res.SessionID])
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != registered.ID {
		t.Fatalf("expected sub %s, got %v", registered.ID, claims["sub"])
	}
	if claims["sid"] != res.SessionID {
		t.Fatalf("expected sid %s, got %v", res.SessionID, claims["sid"])
	}
	if claims["username"] != "carol" {
		t.Fatalf("expected username claim, got %v", claims["username"])
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc, _, sessions := newAuthSvc()

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Username: "dave", Password: "goodpass"})
	if _, err := svc.Login(context.Background(), "dave", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatalf("no session may be created on failure")
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc, _, _ := newAuthSvc()

	if _, err := svc.Login(context.Background(), "ghost", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_SessionStoreFailure(t *testing.T) {
	svc, _, sessions := newAuthSvc()
	_, _ = svc.Register(context.Background(), ports.RegisterInput{Username: "erin", Password: "pw"})
	sessions.createErr = errors.New("redis down")

	if _, err := svc.Login(context.Background(), "erin", "pw"); err == nil || !errors.Is(err, sessions.createErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, sessions := newAuthSvc()
	_, _ = svc.Register(context.Background(), ports.RegisterInput{Username: "frank", Password: "pw"})
	res, err := svc.Login(context.Background(), "frank", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), res.SessionID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, ok := sessions.sessions[res.SessionID]; ok {
		t.Fatalf("session still present after logout")
	}

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("logout without session must succeed, got %v", err)
	}
	if err := svc.Logout(context.Background(), "unknown"); err != nil {
		t.Fatalf("logout of unknown session must succeed, got %v", err)
	}
}
