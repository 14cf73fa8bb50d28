package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
)

// Auth guards a route group. When hmacSecret is set every request must be
// signed; otherwise the static API key is checked.
func Auth(apiKey, hmacSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hmacSecret != "" {
				ok, err := verifySignature(r, hmacSecret)
				if err != nil || !ok {
					unauthorized(w, "BAD_SIGNATURE")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get("X-API-Key")
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
				unauthorized(w, "UNAUTHORIZED")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Sign returns the hex HMAC-SHA256 of "<timestamp>.<body>", the value
// expected in X-Signature.
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// verifySignature reads the body to check it and puts it back for the
// handler.
func verifySignature(r *http.Request, secret string) (bool, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return false, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	want := Sign(secret, r.Header.Get("X-Timestamp"), body)
	got := r.Header.Get("X-Signature")
	return hmac.Equal([]byte(got), []byte(want)), nil
}

func unauthorized(w http.ResponseWriter, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// ServiceHeader stamps every response with the X-Service header.
func ServiceHeader(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Service", name)
			next.ServeHTTP(w, r)
		})
	}
}
