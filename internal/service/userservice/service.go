package userservice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/pkg/validation"
)

// UserRepository define o contrato de persistência de usuários.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) (domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	FindUserByID(ctx context.Context, id string) (domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID, email, userRole string) (string, error)
}

// OTPStore emite e confere códigos de redefinição de senha.
type OTPStore interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) (bool, error)
}

// UserService define o serviço de lógica de negócio para a entidade User.
type UserService struct {
	UserRepo  UserRepository
	TokenSvc  TokenService
	OTP       OTPStore
	ExposeOTP bool // Devolve o código na resposta (apenas fora de produção)
	Cost      int  // Custo do bcrypt
	logger    logger.Logger
	validator *validation.Validator
}

// NewService cria uma nova instância do UserService, injetando o Repositório.
func NewService(repo UserRepository, tokenSvc TokenService, otpStore OTPStore, logger logger.Logger) *UserService {
	return &UserService{
		UserRepo:  repo,
		TokenSvc:  tokenSvc,
		OTP:       otpStore,
		Cost:      bcrypt.DefaultCost,
		logger:    logger,
		validator: validation.New(),
	}
}

// Register registra um novo usuário no sistema e já devolve o token de acesso.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.AuthResponse, error) {
	if err := s.validator.Struct(registration); err != nil {
		return domain.AuthResponse{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), s.Cost)
	if err != nil {
		return domain.AuthResponse{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	now := time.Now().UTC()
	user, err := s.UserRepo.SaveUser(ctx, domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(registration.Email)),
		Name:         strings.TrimSpace(registration.Name),
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// E-mail duplicado já chega como ConflictError do repositório.
		return domain.AuthResponse{}, err
	}

	s.logger.Info("Usuário registrado.", map[string]interface{}{"user_id": user.ID})
	return s.authResponse(user)
}

// Login autentica um usuário, verifica a senha e gera um JWT.
func (s *UserService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return domain.AuthResponse{}, err
	}

	user, err := s.UserRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		// NotFound vira Unauthorized para não revelar quais e-mails existem.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return domain.AuthResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return domain.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Tentativa de login com senha incorreta.", map[string]interface{}{"user_id": user.ID})
		return domain.AuthResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	return s.authResponse(user)
}

// RequestOTP emite um código de redefinição de senha para um usuário existente.
func (s *UserService) RequestOTP(ctx context.Context, req domain.OTPRequest) (domain.OTPResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return domain.OTPResponse{}, err
	}
	user, err := s.UserRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return domain.OTPResponse{}, err
	}

	code, err := s.OTP.Issue(ctx, user.Email)
	if err != nil {
		return domain.OTPResponse{}, apperror.NewInternalError("Falha ao emitir código OTP.", err)
	}
	s.logger.Info("Código OTP emitido.", map[string]interface{}{"user_id": user.ID})

	resp := domain.OTPResponse{Message: "Código OTP enviado com sucesso"}
	if s.ExposeOTP {
		resp.OTP = code
	}
	return resp, nil
}

// ResetPassword troca a senha se o código OTP for válido. O código é consumido no acerto.
func (s *UserService) ResetPassword(ctx context.Context, req domain.PasswordReset) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	ok, err := s.OTP.Verify(ctx, req.Email, req.OTP)
	if err != nil {
		return apperror.NewInternalError("Falha ao verificar código OTP.", err)
	}
	if !ok {
		return apperror.NewValidationError("Código OTP inválido ou expirado")
	}

	user, err := s.UserRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.Cost)
	if err != nil {
		return apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}
	if err := s.UserRepo.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return err
	}

	s.logger.Info("Senha redefinida.", map[string]interface{}{"user_id": user.ID})
	return nil
}

// Profile devolve o usuário autenticado.
func (s *UserService) Profile(ctx context.Context, userID string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, apperror.NewUnauthorizedError("Usuário não autenticado.")
	}
	return s.UserRepo.FindUserByID(ctx, userID)
}

func (s *UserService) authResponse(user domain.User) (domain.AuthResponse, error) {
	tokenString, err := s.TokenSvc.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return domain.AuthResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}
	return domain.AuthResponse{Token: tokenString, User: user}, nil
}
