package user

import (
	"context"
	"net/http"

	"stockmaster/internal/domain"
	"stockmaster/internal/pkg/httpx"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/pkg/middleware"
)

// UserService define o contrato para as operações de autenticação.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.AuthResponse, error)
	Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
	RequestOTP(ctx context.Context, req domain.OTPRequest) (domain.OTPResponse, error)
	ResetPassword(ctx context.Context, req domain.PasswordReset) error
	Profile(ctx context.Context, userID string) (domain.User, error)
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// RegisterUserHandler lida com a requisição POST /v1/auth/register.
// @Summary Registra um novo usuário
// @Description Cria um novo usuário, hasheia a senha e devolve um JWT.
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "E-mail, senha e nome"
// @Success 201 {object} domain.AuthResponse "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido (JSON malformado ou campos obrigatórios ausentes)"
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /v1/auth/register [post]
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var reg domain.UserRegistration
	if err := httpx.DecodeJSON(r, &reg); err != nil {
		httpx.Respond(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	// O hash da senha não aparece na resposta (tag json:"-").
	resp, err := h.Service.Register(r.Context(), reg)
	httpx.Respond(w, r, h.Logger, resp, err, http.StatusCreated)
}

// LoginUserHandler lida com a requisição POST /v1/auth/login.
// @Summary Autentica um usuário e retorna um JWT
// @Description Recebe email/senha, verifica a validade e emite um JSON Web Token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body domain.LoginRequest true "Credenciais do usuário (email e senha)"
// @Success 200 {object} domain.AuthResponse "Token JWT emitido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /v1/auth/login [post]
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Respond(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}

	resp, err := h.Service.Login(r.Context(), req)
	httpx.Respond(w, r, h.Logger, resp, err, http.StatusOK)
}

// RequestOTPHandler lida com a requisição POST /v1/auth/request-otp.
// @Summary Solicita um código de redefinição de senha
// @Description Gera um código de 6 dígitos válido por 10 minutos. Fora de produção o código volta na resposta.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.OTPRequest true "E-mail do usuário"
// @Success 200 {object} domain.OTPResponse
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Router /v1/auth/request-otp [post]
func (h *Handler) RequestOTPHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Respond(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}

	resp, err := h.Service.RequestOTP(r.Context(), req)
	httpx.Respond(w, r, h.Logger, resp, err, http.StatusOK)
}

// ResetPasswordHandler lida com a requisição POST /v1/auth/reset-password.
// @Summary Redefine a senha com o código OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.PasswordReset true "E-mail, código e nova senha"
// @Success 200 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse "Código inválido ou expirado"
// @Router /v1/auth/reset-password [post]
func (h *Handler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordReset
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Respond(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}

	if err := h.Service.ResetPassword(r.Context(), req); err != nil {
		httpx.Respond(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}
	httpx.Respond(w, r, h.Logger, domain.MessageResponse{Message: "Senha redefinida com sucesso"}, nil, http.StatusOK)
}

// ProfileHandler lida com a requisição GET /v1/auth/me.
// @Summary Perfil do usuário autenticado
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.User
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Router /v1/auth/me [get]
func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	var userID string
	if claims, ok := middleware.GetUserClaimsFromContext(r.Context()); ok {
		userID = claims.UserID
	}
	user, err := h.Service.Profile(r.Context(), userID)
	httpx.Respond(w, r, h.Logger, user, err, http.StatusOK)
}
