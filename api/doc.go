// Package api defines the request and response types of the VideoFlow HTTP API.
//
// # API Overview
//
// VideoFlow exposes a small RESTful surface:
//   - GET  /api/v1/models       lists the selectable video models
//   - POST /api/v1/generations  runs one generation and returns the result URL
//   - GET  /health, /healthz, /ready, /version for monitoring
//
// A generation request blocks until the backend reaches a terminal state,
// so callers should use a client timeout of at least the configured poll
// deadline. Only one generation may run per session; a second concurrent
// request is answered with 409 and code BUSY.
//
// # Authentication
//
// When API keys are configured, requests must send the X-API-Key header:
//
//	X-API-Key: your-api-key
//
// When a JWT secret is configured, a Bearer token is accepted instead and its
// subject becomes the session identity.
//
// # Base URL
//
// The default base URL for the API is:
//
//	http://localhost:8080
package api
