// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and signing utilities.

# Session IDs

Session IDs are random 24-byte (192-bit) secrets:

	id, err := auth.GenerateSessionID()

They are URL-safe base64 encoded without padding.

# Signed Values

Cookie values carry an HMAC-SHA256 signature so a client cannot forge
another reviewer's session id:

	token := auth.Sign(id, secret)       // "<id>.<sig>"
	id, err := auth.Verify(token, secret)

Verify returns ErrInvalidToken for malformed input and ErrInvalidSignature
when the signature does not match.
*/
package auth
