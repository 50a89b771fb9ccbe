// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidToken     = errors.New("invalid token format")
)

// GenerateSessionID creates a random 24 byte session identifier
func GenerateSessionID() (string, error) {
	b := make([]byte, 24) // 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	// URL-safe base64 without padding, never contains '.'
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

func signature(value, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(value))
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

// Sign returns value with an appended HMAC so it can sit in a cookie
func Sign(value, secret string) string {
	return value + "." + signature(value, secret)
}

// Verify checks a Sign'd token and returns the original value
func Verify(token, secret string) (string, error) {
	i := strings.LastIndexByte(token, '.')
	if i <= 0 || i == len(token)-1 {
		return "", ErrInvalidToken
	}
	value, sig := token[:i], token[i+1:]
	if !hmac.Equal([]byte(sig), []byte(signature(value, secret))) {
		return "", ErrInvalidSignature
	}
	return value, nil
}
