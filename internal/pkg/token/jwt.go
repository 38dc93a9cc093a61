package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer identifica os tokens emitidos por esta API.
const Issuer = "StockMaster-API"

// Erros devolvidos por ValidateToken. O middleware responde 401 para ambos.
var (
	ErrExpired = errors.New("token expirado")
	ErrInvalid = errors.New("token inválido")
)

// CustomClaims carrega a identidade do usuário autenticado.
type CustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service assina e confere JWTs HS256 com uma chave simétrica.
type Service struct {
	secretKey []byte
	expiry    time.Duration
	leeway    time.Duration
	now       func() time.Time
}

// NewService cria o serviço de tokens. expiry define a validade de cada token emitido.
func NewService(secretKey string, expiry time.Duration) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		expiry:    expiry,
		leeway:    5 * time.Second,
		now:       time.Now,
	}
}

// GenerateToken emite um token para o usuário. O subject é o ID do usuário.
func (s *Service) GenerateToken(userID, email, userRole string) (string, error) {
	if userID == "" {
		return "", errors.New("ID do usuário é obrigatório para emitir o token")
	}

	issuedAt := s.now()
	claims := CustomClaims{
		UserID: userID,
		Email:  email,
		Role:   userRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("falha ao assinar o token: %w", err)
	}
	return signed, nil
}

// ValidateToken confere assinatura, emissor e validade e devolve as claims.
func (s *Service) ValidateToken(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(s.now),
	)

	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if claims.UserID == "" || claims.UserID != claims.Subject {
		return nil, fmt.Errorf("%w: subject não confere com o usuário", ErrInvalid)
	}
	return claims, nil
}
