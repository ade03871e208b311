// Package testkit provides helpers for exercising the store and the GraphQL
// endpoint in tests.
//
// The utilities avoid network databases so tests run quickly within CI: the
// sandbox is backed by pgxmock and the harness serves the real HTTP handler
// through httptest. See sandbox.go and graphql.go for usage examples.
package testkit
