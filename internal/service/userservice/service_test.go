package userservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/cache"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/pkg/otp"
	"stockmaster/internal/pkg/token"
	"stockmaster/internal/repository/memstore"
	"stockmaster/internal/service/userservice"
)

const secret = "segredo-de-teste"

func newUserService(t *testing.T) (*userservice.UserService, *token.Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := token.NewService(secret, time.Hour)
	svc := userservice.NewService(memstore.New(), tokens, otp.NewStore(cache.NewFromRedis(rdb), 10*time.Minute), logger.NewNop())
	svc.Cost = bcrypt.MinCost
	svc.ExposeOTP = true
	return svc, tokens
}

func register(t *testing.T, svc *userservice.UserService) domain.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), domain.UserRegistration{
		Email: "Ana@Example.com", Password: "senha-forte", Name: "Ana",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister_ReturnsTokenAndUser(t *testing.T) {
	svc, tokens := newUserService(t)

	resp := register(t, svc)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Equal(t, domain.RoleUser, resp.User.Role)
	assert.NotEqual(t, "senha-forte", resp.User.PasswordHash)

	claims, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)
	register(t, svc)

	_, err := svc.Register(context.Background(), domain.UserRegistration{
		Email: "ana@example.com", Password: "outra-senha", Name: "Ana 2",
	})
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestRegister_InvalidPayload(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.Register(context.Background(), domain.UserRegistration{Email: "nao-e-email", Password: "curta", Name: ""})
	var vErr *apperror.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Msg, "email")
	assert.Contains(t, vErr.Msg, "password")
	assert.Contains(t, vErr.Msg, "name")
}

func TestLogin(t *testing.T) {
	svc, _ := newUserService(t)
	registered := register(t, svc)
	ctx := context.Background()

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "ana@example.com", Password: "senha-forte"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	var unauthorized *apperror.UnauthorizedError
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "ana@example.com", Password: "errada"})
	assert.ErrorAs(t, err, &unauthorized)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "ninguem@example.com", Password: "senha-forte"})
	assert.ErrorAs(t, err, &unauthorized)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _ := newUserService(t)
	register(t, svc)
	ctx := context.Background()

	otpResp, err := svc.RequestOTP(ctx, domain.OTPRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	require.Len(t, otpResp.OTP, otp.CodeLength)

	wrong := "000000"
	if otpResp.OTP == wrong {
		wrong = "111111"
	}
	err = svc.ResetPassword(ctx, domain.PasswordReset{Email: "ana@example.com", OTP: wrong, NewPassword: "nova-senha-1"})
	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)

	require.NoError(t, svc.ResetPassword(ctx, domain.PasswordReset{Email: "ana@example.com", OTP: otpResp.OTP, NewPassword: "nova-senha-1"}))

	// O código é de uso único.
	err = svc.ResetPassword(ctx, domain.PasswordReset{Email: "ana@example.com", OTP: otpResp.OTP, NewPassword: "nova-senha-2"})
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "ana@example.com", Password: "nova-senha-1"})
	assert.NoError(t, err)
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "ana@example.com", Password: "senha-forte"})
	var unauthorized *apperror.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)
}

func TestRequestOTP_UnknownUser(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.RequestOTP(context.Background(), domain.OTPRequest{Email: "ninguem@example.com"})
	var nf *apperror.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestRequestOTP_HiddenInProduction(t *testing.T) {
	svc, _ := newUserService(t)
	svc.ExposeOTP = false
	register(t, svc)

	resp, err := svc.RequestOTP(context.Background(), domain.OTPRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Empty(t, resp.OTP)
	assert.NotEmpty(t, resp.Message)
}

func TestProfile(t *testing.T) {
	svc, _ := newUserService(t)
	registered := register(t, svc)

	user, err := svc.Profile(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)

	var unauthorized *apperror.UnauthorizedError
	_, err = svc.Profile(context.Background(), "")
	assert.ErrorAs(t, err, &unauthorized)
}

// MockTokenService é uma implementação mock da interface TokenService.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID, email, userRole string) (string, error) {
	args := m.Called(userID, email, userRole)
	return args.String(0), args.Error(1)
}

func TestRegister_TokenFailure(t *testing.T) {
	tokens := new(MockTokenService)
	tokens.On("GenerateToken", mock.Anything, "ana@example.com", "user").Return("", errors.New("chave ausente"))

	svc := userservice.NewService(memstore.New(), tokens, nil, logger.NewNop())
	svc.Cost = bcrypt.MinCost

	_, err := svc.Register(context.Background(), domain.UserRegistration{Email: "ana@example.com", Password: "senha-forte", Name: "Ana"})
	var internal *apperror.InternalError
	assert.ErrorAs(t, err, &internal)
	tokens.AssertExpectations(t)
}
