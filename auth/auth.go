// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrMissingCredentials = errors.New("missing account credentials")
	ErrInvalidToken       = errors.New("invalid account token")
	ErrInvalidAccount     = errors.New("invalid account id")
)

// Headers carrying the caller identity
const (
	HeaderAccountID    = "X-Account-ID"
	HeaderAccountToken = "X-Account-Token"
)

// GenerateAccountToken creates an HMAC-based token for an account id
// This is deterministic and verifiable without storage
func GenerateAccountToken(account, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(account))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner tokens
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAccountToken checks if the provided token is valid for the account
func ValidateAccountToken(account, token, salt string) error {
	expected := GenerateAccountToken(account, salt)
	if !hmac.Equal([]byte(token), []byte(expected)) {
		return ErrInvalidToken
	}
	return nil
}

// ValidateAccountID checks the shape of an account id: 2-64 characters,
// letters, digits, '.', '-' and '_' only
func ValidateAccountID(account string) error {
	if len(account) < 2 || len(account) > 64 {
		return ErrInvalidAccount
	}
	for _, c := range account {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '-', c == '_':
		default:
			return ErrInvalidAccount
		}
	}
	return nil
}

// Caller authenticates the request and returns the account id
func Caller(r *http.Request, salt string) (string, error) {
	account := r.Header.Get(HeaderAccountID)
	token := r.Header.Get(HeaderAccountToken)
	if account == "" || token == "" {
		return "", ErrMissingCredentials
	}
	if err := ValidateAccountID(account); err != nil {
		return "", err
	}
	if err := ValidateAccountToken(account, token, salt); err != nil {
		return "", err
	}
	return account, nil
}
