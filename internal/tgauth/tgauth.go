// Package tgauth verifies Telegram WebApp init data and exchanges it for
// short-lived session tokens. The mini-app sends the raw initData string it
// received from the Telegram client; outside Telegram there is nothing to
// verify and the API falls back to an anonymous identity.
package tgauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidInitData = errors.New("invalid init data")
	ErrHashMismatch    = errors.New("init data hash mismatch")
	ErrExpired         = errors.New("init data expired")
)

// User is the identity Telegram passes into the mini-app.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type TokenClaims struct {
	UserID   string `json:"uid"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator validates init data for one bot and signs session JWTs.
type Authenticator struct {
	botToken  string
	jwtSecret []byte
	maxAge    time.Duration
	tokenTTL  time.Duration
}

func New(botToken string, jwtSecret []byte) *Authenticator {
	return &Authenticator{
		botToken:  botToken,
		jwtSecret: jwtSecret,
		maxAge:    24 * time.Hour,
		tokenTTL:  7 * 24 * time.Hour,
	}
}

// VerifyInitData checks the HMAC signature Telegram attached to the init data
// query string and returns the embedded user.
//
// Per the Bot API docs: secret_key = HMAC_SHA256(bot_token, "WebAppData");
// the reported hash must equal HMAC_SHA256(data_check_string, secret_key)
// where data_check_string is every field except hash, sorted by key and
// joined with newlines.
func (a *Authenticator) VerifyInitData(initData string, now time.Time) (*User, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, ErrInvalidInitData
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(a.botToken))
	secret := secretMac.Sum(nil)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(gotHash)) {
		return nil, ErrHashMismatch
	}

	if authDate := values.Get("auth_date"); authDate != "" {
		ts, err := strconv.ParseInt(authDate, 10, 64)
		if err != nil {
			return nil, ErrInvalidInitData
		}
		if now.Sub(time.Unix(ts, 0)) > a.maxAge {
			return nil, ErrExpired
		}
	}

	var user User
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil || user.ID == 0 {
		return nil, ErrInvalidInitData
	}
	return &user, nil
}

// IssueToken signs a session JWT for a verified user.
func (a *Authenticator) IssueToken(user *User, now time.Time) (string, error) {
	claims := &TokenClaims{
		UserID:   strconv.FormatInt(user.ID, 10),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ParseToken validates a session JWT and returns the user id it carries.
func (a *Authenticator) ParseToken(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || claims.UserID == "" {
		return "", errors.New("invalid token claims")
	}
	return claims.UserID, nil
}
