package tgauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
)

const testBotToken = "123456:test-bot-token"

// signInitData builds a valid initData string the way the Telegram client
// would.
func signInitData(botToken string, fields map[string]string) string {
	pairs := make([]string, 0, len(fields))
	for key, value := range fields {
		pairs = append(pairs, key+"="+value)
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(botToken))
	secret := secretMac.Sum(nil)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(checkString))
	hash := hex.EncodeToString(mac.Sum(nil))

	values := url.Values{}
	for key, value := range fields {
		values.Set(key, value)
	}
	values.Set("hash", hash)
	return values.Encode()
}

func TestVerifyInitData_Success(t *testing.T) {
	a := New(testBotToken, []byte("jwt-secret"))
	now := time.Now()

	initData := signInitData(testBotToken, map[string]string{
		"auth_date": strconv.FormatInt(now.Unix(), 10),
		"query_id":  "AAE1",
		"user":      `{"id":99,"username":"durov","first_name":"Pavel","last_name":""}`,
	})

	user, err := a.VerifyInitData(initData, now)
	if err != nil {
		t.Fatalf("VerifyInitData failed: %v", err)
	}
	if user.ID != 99 {
		t.Errorf("Expected user id 99, got %d", user.ID)
	}
	if user.Username != "durov" {
		t.Errorf("Expected username durov, got %s", user.Username)
	}
}

func TestVerifyInitData_Errors(t *testing.T) {
	a := New(testBotToken, []byte("jwt-secret"))
	now := time.Now()

	tests := []struct {
		name     string
		initData string
		wantErr  error
	}{
		{
			name:     "missing hash",
			initData: "auth_date=1&user=%7B%22id%22%3A1%7D",
			wantErr:  ErrInvalidInitData,
		},
		{
			name: "tampered user",
			initData: signInitData(testBotToken, map[string]string{
				"auth_date": strconv.FormatInt(now.Unix(), 10),
				"user":      `{"id":99,"first_name":"Pavel"}`,
			}) + "&query_id=injected",
			wantErr: ErrHashMismatch,
		},
		{
			name: "wrong bot token",
			initData: signInitData("other:token", map[string]string{
				"auth_date": strconv.FormatInt(now.Unix(), 10),
				"user":      `{"id":99,"first_name":"Pavel"}`,
			}),
			wantErr: ErrHashMismatch,
		},
		{
			name: "expired",
			initData: signInitData(testBotToken, map[string]string{
				"auth_date": strconv.FormatInt(now.Add(-48*time.Hour).Unix(), 10),
				"user":      `{"id":99,"first_name":"Pavel"}`,
			}),
			wantErr: ErrExpired,
		},
		{
			name: "no user field",
			initData: signInitData(testBotToken, map[string]string{
				"auth_date": strconv.FormatInt(now.Unix(), 10),
			}),
			wantErr: ErrInvalidInitData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.VerifyInitData(tt.initData, now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	a := New(testBotToken, []byte("jwt-secret"))
	now := time.Now()

	token, err := a.IssueToken(&User{ID: 99, Username: "durov"}, now)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	userID, err := a.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if userID != "99" {
		t.Errorf("Expected user id 99, got %s", userID)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	a := New(testBotToken, []byte("jwt-secret"))
	b := New(testBotToken, []byte("other-secret"))

	token, err := a.IssueToken(&User{ID: 99}, time.Now())
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := b.ParseToken(token); err == nil {
		t.Error("Expected parse with wrong secret to fail")
	}
}
