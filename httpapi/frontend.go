package httpapi

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Second-Last/csci1600-doorlock/fsm"
)

// maxHeaderBytes bounds any single line of a request's header block. Lines
// are scanned in place in the reader's fixed buffer, so a line longer than
// that buffer or this limit is refused without growing any allocation.
const maxHeaderBytes = 8 * 1024

// Authenticator is the narrow auth contract the front end needs;
// auth.Verifier satisfies it.
type Authenticator interface {
	Verify(nonceStr, signatureHex string) bool
}

// ParseRequest reads one HTTP header block from r (the body, if any, is
// never read) and classifies it into a Request. verify is consulted only
// for Status/LockReq/UnlockReq candidates.
func ParseRequest(r *bufio.Reader, verify Authenticator) (Request, error) {
	line, err := readBoundedLine(r)
	if err != nil {
		return Request{Kind: Unrecognized}, err
	}

	method, path, ok := parseRequestLine(line)
	if !ok {
		if err := drainHeaders(r); err != nil {
			return Request{Kind: Unrecognized}, err
		}
		return Request{Kind: Unrecognized}, nil
	}

	var nonce, signature string
	for {
		line, err := readBoundedLine(r)
		if err != nil {
			return Request{Kind: Unrecognized}, err
		}
		if line == "" {
			break
		}
		if v, found := headerValue(line, "X-Nonce:"); found {
			nonce = v
		} else if v, found := headerValue(line, "X-Signature:"); found {
			signature = v
		}
	}

	if method == "OPTIONS" && (path == "/lock" || path == "/unlock" || path == "/status") {
		return Request{Kind: Options}, nil
	}

	var tentative Kind
	switch {
	case method == "GET" && path == "/status":
		tentative = Status
	case method == "POST" && path == "/lock":
		tentative = LockReq
	case method == "POST" && path == "/unlock":
		tentative = UnlockReq
	default:
		return Request{Kind: Unrecognized}, nil
	}

	if !verify.Verify(nonce, signature) {
		return Request{Kind: Unrecognized}, nil
	}
	return Request{Kind: tentative}, nil
}

// readBoundedLine reads one CRLF- or LF-terminated line, stripped of its
// terminator, refusing any line longer than maxHeaderBytes or than r's
// buffer.
func readBoundedLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadSlice('\n')
	if err == bufio.ErrBufferFull || len(line) > maxHeaderBytes {
		return "", fmt.Errorf("httpapi: header line exceeds %d bytes", min(r.Size(), maxHeaderBytes))
	}
	if err != nil && len(line) == 0 {
		return "", err
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}

// drainHeaders consumes and discards header lines up to the blank line, for
// a request whose start line didn't parse — the body is still never read.
func drainHeaders(r *bufio.Reader) error {
	for {
		line, err := readBoundedLine(r)
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
	}
}

func parseRequestLine(line string) (method, path string, ok bool) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// headerValue reports whether line begins with the exact, case-sensitive
// prefix (e.g. "X-Nonce:") and returns the trimmed value if so.
func headerValue(line, prefix string) (string, bool) {
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(prefix):]), true
}

// WriteResponse writes the bounded response for req, evaluated against the
// post-transition FSM state, directly to w — no intermediate owned response
// string is built.
func WriteResponse(w io.Writer, req Request, state fsm.State) error {
	switch req.Kind {
	case Options:
		return writeStatusLine(w, 204, "", map[string]string{
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Headers": "Content-Type, X-Nonce, X-Signature",
			"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		})

	case Status:
		return writeStatusLine(w, 200, state.String(), corsHeaders())

	case LockReq:
		if state == fsm.Locked || state == fsm.BusyMove {
			return writeStatusLine(w, 200, state.String(), corsHeaders())
		}
		return writeStatusLine(w, 503, state.String(), corsHeaders())

	case UnlockReq:
		if state == fsm.Unlocked || state == fsm.BusyMove {
			return writeStatusLine(w, 200, state.String(), corsHeaders())
		}
		return writeStatusLine(w, 503, state.String(), corsHeaders())

	default: // Unrecognized
		return writeStatusLine(w, 403, "", corsHeaders())
	}
}

func corsHeaders() map[string]string {
	return map[string]string{"Access-Control-Allow-Origin": "*"}
}

var statusText = map[int]string{
	200: "OK",
	204: "No Content",
	403: "Forbidden",
	503: "Service Unavailable",
}

func writeStatusLine(w io.Writer, code int, body string, headers map[string]string) error {
	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", code, statusText[code]); err != nil {
		return err
	}
	if code != 204 {
		if _, err := io.WriteString(w, "Content-Type: text/plain\r\n"); err != nil {
			return err
		}
	}
	for k, v := range headers {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", k, v); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return err
	}
	if body != "" {
		if _, err := io.WriteString(w, body); err != nil {
			return err
		}
	}
	return nil
}
