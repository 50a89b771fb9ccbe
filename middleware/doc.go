// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/health", middleware.WithLogging(handler))

Each request gets a uuid, returned in X-Request-ID and attached to the
start (method, path, remote) and completion (duration_ms) log lines.

# CORS Middleware

Admit the configured frontend origins with credentials:

	handler := middleware.CORS(cfg.AllowedOrigins)(mux)

Allowed origins are mirrored back; others get no CORS headers. OPTIONS
preflights are answered with 200.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "bad row") // {"ok":false,"error":"bad row"}

ParseJSONBody treats an empty body as an empty object.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Used for the remote field of request logs.
*/
package middleware
