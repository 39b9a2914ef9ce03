// Package httpapi implements the HttpFrontEnd: a bounded-buffer HTTP/1.1
// parser that classifies one request per connection into a closed Request
// variant, gates it against an authenticator, and writes the response
// directly to the connection.
package httpapi

// Kind is the closed set of request classifications.
type Kind int

const (
	// Unrecognized covers unrecognized paths, missing methods, malformed
	// headers, and failed auth alike — the client never learns which.
	Unrecognized Kind = iota
	Options
	Status
	LockReq
	UnlockReq
)

// Request is the parsed, classified result of one connection's header
// block.
type Request struct {
	Kind Kind
}
