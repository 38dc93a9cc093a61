package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"stockmaster/internal/pkg/cache"
)

// CodeLength é o número de dígitos do código de redefinição.
const CodeLength = 6

// Store guarda códigos de uso único com expiração no cache.
type Store struct {
	cache cache.Client
	ttl   time.Duration
}

// NewStore cria um Store cujos códigos expiram após ttl.
func NewStore(c cache.Client, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

func key(email string) string {
	return "otp:" + strings.ToLower(email)
}

// Issue gera um novo código para o e-mail, substituindo qualquer código anterior.
func (s *Store) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("falha ao gerar código OTP: %w", err)
	}
	if err := s.cache.Set(ctx, key(email), code, s.ttl); err != nil {
		return "", fmt.Errorf("falha ao gravar código OTP: %w", err)
	}
	return code, nil
}

// Verify confere o código e o consome em caso de acerto.
// Código ausente ou expirado devolve false sem erro.
func (s *Store) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.cache.Get(ctx, key(email))
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("falha ao ler código OTP: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return false, nil
	}
	if err := s.cache.Delete(ctx, key(email)); err != nil {
		return false, fmt.Errorf("falha ao consumir código OTP: %w", err)
	}
	return true, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}
