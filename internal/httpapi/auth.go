package httpapi

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// The backend has a single operator account, configured at startup. Tokens
// are HS256 JWTs; the bcrypt hash of the operator password is computed once
// so the plain text never lives past construction.
type AuthManager struct {
	secret       []byte
	tokenTTL     time.Duration
	username     string
	passwordHash string
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
}

func NewAuthManager(secret string, tokenTTL time.Duration, username string, password string) (*AuthManager, error) {
	if secret == "" {
		return nil, errors.New("auth secret required")
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("operator username required")
	}
	if strings.TrimSpace(password) == "" {
		return nil, errors.New("operator password required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &AuthManager{
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
		username:     username,
		passwordHash: string(hash),
	}, nil
}

func (a *AuthManager) Login(req LoginRequest) (LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username != a.username {
		return LoginResponse{}, errors.New("invalid credentials")
	}
	if strings.TrimSpace(req.Password) == "" {
		return LoginResponse{}, errors.New("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(req.Password)) != nil {
		return LoginResponse{}, errors.New("invalid credentials")
	}

	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	token, err := a.sign(username, expiresAt)
	if err != nil {
		return LoginResponse{}, err
	}

	return LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

func (a *AuthManager) ParseToken(tokenStr string) (Actor, error) {
	claims := &jwtlib.RegisteredClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return Actor{}, errors.New("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Actor{}, errors.New("invalid token subject")
	}
	return Actor{Username: sub}, nil
}

func (a *AuthManager) sign(username string, expiresAt time.Time) (string, error) {
	claims := jwtlib.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
		ExpiresAt: jwtlib.NewNumericDate(expiresAt),
		Issuer:    "receiptgen",
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}
