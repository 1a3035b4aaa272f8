package token

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestIssueAndDecode(t *testing.T) {
	srv := New(testSecret, 60)

	signed, err := srv.Issue(123)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if signed == "" {
		t.Fatal("expected non-empty token")
	}

	subject, err := srv.Decode(signed)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if subject != 123 {
		t.Fatalf("expected subject 123, got %d", subject)
	}
}

func TestDecode_EmptyToken(t *testing.T) {
	srv := New(testSecret, 60)

	_, err := srv.Decode("")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestDecode_ExpiredToken(t *testing.T) {
	srv := New(testSecret, 60)

	// Sign a token whose expiry is already in the past.
	claims := jwt.RegisteredClaims{
		Subject:   "123",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}

	_, err = srv.Decode(signed)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	issuer := New("other-secret", 60)
	srv := New(testSecret, 60)

	signed, err := issuer.Issue(123)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := srv.Decode(signed); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func TestDecode_MissingExpiry(t *testing.T) {
	srv := New(testSecret, 60)

	claims := jwt.RegisteredClaims{Subject: "123"}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}

	if _, err := srv.Decode(signed); err == nil {
		t.Fatal("expected error for token without expiry")
	}
}

func TestDecode_NonNumericSubject(t *testing.T) {
	srv := New(testSecret, 60)

	claims := jwt.RegisteredClaims{
		Subject:   "not-a-number",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}

	_, err = srv.Decode(signed)
	if !errors.Is(err, ErrInvalidClaims) {
		t.Fatalf("expected ErrInvalidClaims, got %v", err)
	}
}

func TestIssue_SubjectEncoding(t *testing.T) {
	srv := New(testSecret, 60)

	for _, subject := range []int64{1, 42, 1 << 40} {
		t.Run(strconv.FormatInt(subject, 10), func(t *testing.T) {
			signed, err := srv.Issue(subject)
			if err != nil {
				t.Fatalf("Issue returned error: %v", err)
			}
			got, err := srv.Decode(signed)
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if got != subject {
				t.Fatalf("expected subject %d, got %d", subject, got)
			}
		})
	}
}
