// Package server holds the HTTP server configuration.
//
// The start command owns the server lifecycle; this package only defines the
// listen port, the API key protecting every route and the request body limit.
package server
