package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// WebhookSecretGetter returns the current webhook secret. The secret is
// read on each request so configuration reloads take effect immediately.
type WebhookSecretGetter func() string

// PagerDutyAuth creates middleware for PagerDuty webhook signature
// verification. Implements the PagerDuty webhook signature protocol:
// https://developer.pagerduty.com/docs/ZG9jOjQ1MTg4ODQ0-verifying-signatures
func PagerDutyAuth(secretGetter WebhookSecretGetter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			webhookSecret := secretGetter()

			// Skip auth if no secret configured
			if webhookSecret == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				logger.Error("failed to read request body", "error", err)
				http.Error(w, "failed to read body", http.StatusBadRequest)
				return
			}
			r.Body.Close()

			// PagerDuty may send multiple signatures
			signatures := r.Header.Values("X-PagerDuty-Signature")
			if len(signatures) == 0 {
				logger.Warn("pagerduty webhook rejected",
					"reason", "missing_signature",
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "missing signature", http.StatusUnauthorized)
				return
			}

			if !verifyPagerDutySignature(body, signatures, webhookSecret) {
				logger.Warn("pagerduty webhook rejected",
					"reason", "invalid_signature",
					"remote_addr", r.RemoteAddr,
					"signature_count", len(signatures),
				)
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}

			// Restore body for handler
			r.Body = io.NopCloser(bytes.NewReader(body))

			next.ServeHTTP(w, r)
		})
	}
}

// verifyPagerDutySignature returns true if at least one "v1=<hex>"
// signature matches the HMAC-SHA256 of the body.
func verifyPagerDutySignature(body []byte, signatures []string, webhookSecret string) bool {
	for _, sig := range signatures {
		parts := strings.SplitN(sig, "=", 2)
		if len(parts) != 2 {
			continue
		}

		if parts[0] != "v1" {
			continue
		}

		mac := hmac.New(sha256.New, []byte(webhookSecret))
		mac.Write(body)
		expectedSig := hex.EncodeToString(mac.Sum(nil))

		if hmac.Equal([]byte(parts[1]), []byte(expectedSig)) {
			return true
		}
	}

	return false
}
