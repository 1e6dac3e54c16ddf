// Package swift is the harness's client for the Swift-compatible object
// storage API.
//
// # Overview
//
// A Client is scoped to one storage account, addressed by the storage URL
// and token obtained from the auth handshake (see pkg/auth):
//
//	client, err := swift.NewClient(creds.StorageURL, creds.Token)
//
// It covers the account, container and object operations the test surface
// exercises: metadata reads and writes, JSON listings with marker
// pagination, uploads with ETag verification and expiry scheduling
// (X-Delete-At / X-Delete-After), and the unauthenticated /info capability
// document that backs __ASK__ feature discovery.
//
// # Errors
//
// Unexpected status codes surface as *APIError; IsNotFound, IsUnauthorized
// and IsConflict classify the common cases without unwrapping by hand.
//
// # Rate limiting
//
// WithRateLimit installs a client-side token bucket so tight polling loops
// do not hammer a single-node test deployment.
package swift
