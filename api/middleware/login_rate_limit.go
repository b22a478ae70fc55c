package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/amoura-app/amoura-backend/api/responses"
	"github.com/amoura-app/amoura-backend/pkg/config"
	pkgerrors "github.com/amoura-app/amoura-backend/pkg/errors"
	"github.com/amoura-app/amoura-backend/pkg/logger"
)

// RateLimiterStore counts attempts inside a fixed window.
type RateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// LoginRateLimit throttles credential guessing on the admin login route with
// two fixed windows: one keyed by client IP, one by the sha256 of the
// submitted email. Emails are hashed before they touch redis or the logs.
// With no store or a zero window the middleware is a passthrough.
func LoginRateLimit(cfg config.AuthRateLimitConfig, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || cfg.LoginWindow <= 0 || (cfg.LoginIPLimit <= 0 && cfg.LoginEmailLimit <= 0) {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if cfg.LoginIPLimit > 0 {
				ip := clientIP(r)
				if ip != "" {
					count, err := store.IncrWithTTL(ctx, "rl:login:ip:"+ip, cfg.LoginWindow)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if count > int64(cfg.LoginIPLimit) {
						blockAttempt(ctx, logg, w, "ip", cfg.LoginWindow, count, cfg.LoginIPLimit)
						return
					}
				}
			}

			if cfg.LoginEmailLimit > 0 {
				emailHash, restored, err := peekEmailHash(r)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
					return
				}
				r.Body = restored
				if emailHash != "" {
					count, err := store.IncrWithTTL(ctx, "rl:login:email:"+emailHash, cfg.LoginWindow)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if count > int64(cfg.LoginEmailLimit) {
						blockAttempt(ctx, logg, w, "email", cfg.LoginWindow, count, cfg.LoginEmailLimit)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// peekEmailHash reads the login body to hash its email field, then hands back
// a replacement body so the handler can decode the request again.
func peekEmailHash(r *http.Request) (string, io.ReadCloser, error) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return "", r.Body, err
	}
	restored := io.NopCloser(bytes.NewReader(payload))

	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", restored, nil
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		return "", restored, nil
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:]), restored, nil
}

func blockAttempt(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, scope string, window time.Duration, count int64, limit int) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"scope":          scope,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(window.Seconds()),
		})
		logg.Warn(logCtx, "auth.login.rate_limited")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
