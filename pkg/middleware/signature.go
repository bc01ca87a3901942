package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	apperrors "comanda/pkg/errors"
	"comanda/pkg/logger"
)

const SignatureHeader = "X-Comanda-Signature"

// SignatureVerification requires an HMAC-SHA256 of the raw body, hex encoded and
// optionally prefixed with "sha256=", on every request that can change state.
// Reads pass through unsigned.
func SignatureVerification(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			signature := extractSignature(r)
			if signature == "" {
				reject(w, r, log, apperrors.Unauthorized("Unauthorized"), "Request signature verification failed",
					"reason", "missing "+SignatureHeader+" header")
				return
			}

			body, err := readAndRestoreBody(r)
			if err != nil {
				reject(w, r, log, apperrors.InvalidInput("Failed to read request body"), "Request signature verification failed",
					"reason", "unreadable body", "error", err)
				return
			}

			if !VerifySignature(body, signature, secret) {
				reject(w, r, log, apperrors.Unauthorized("Unauthorized"), "Request signature verification failed",
					"reason", "signature mismatch", "remote_addr", r.RemoteAddr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(body []byte, receivedSignature string, secret string) bool {
	return hmac.Equal([]byte(Sign(body, secret)), []byte(strings.ToLower(receivedSignature)))
}

func extractSignature(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get(SignatureHeader))
	if signature, found := strings.CutPrefix(header, "sha256="); found {
		return signature
	}
	return header
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
