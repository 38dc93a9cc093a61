package middleware

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"stockmaster/internal/domain"
	"stockmaster/internal/pkg/cache"
	"stockmaster/internal/pkg/httpx"
	"stockmaster/internal/pkg/logger"
)

// RateLimiter limita requisições por IP em janela fixa, com contadores no cache.
// Falhas do cache não bloqueiam o tráfego: a requisição segue e o erro é registrado.
func RateLimiter(client cache.Client, limit int, duration time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "rate-limit:" + ip
			ctx := r.Context()

			count, err := client.GetInt(ctx, key)
			if errors.Is(err, cache.ErrCacheMiss) {
				if setErr := client.Set(ctx, key, 1, duration); setErr != nil {
					log.Error("Falha ao iniciar janela de rate limit.", setErr)
				}
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-1))
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				log.Error("Falha ao ler contador de rate limit.", err)
				next.ServeHTTP(w, r)
				return
			}

			if count >= limit {
				log.Warn("Rate limit excedido.", map[string]interface{}{"ip": ip, "limit": limit})
				w.Header().Set("X-RateLimit-Remaining", "0")
				_ = httpx.JSON(w, http.StatusTooManyRequests, domain.ErrorResponse{
					Code:     http.StatusTooManyRequests,
					Category: "RATE_LIMITED",
					Message:  "Limite de requisições excedido.",
				})
				return
			}

			if _, err := client.Incr(ctx, key); err != nil {
				log.Error("Falha ao incrementar contador de rate limit.", err)
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count-1))
			next.ServeHTTP(w, r)
		})
	}
}
