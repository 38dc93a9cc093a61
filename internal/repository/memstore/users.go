package memstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
)

// SaveUser grava um usuário novo. E-mail duplicado: ConflictError.
func (s *Store) SaveUser(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, exists := s.usersByMail[email]; exists {
		return domain.User{}, apperror.NewConflictError(fmt.Sprintf("E-mail '%s' já cadastrado", user.Email))
	}
	s.users[user.ID] = user
	s.usersByMail[email] = user.ID
	return user, nil
}

// FindUserByEmail busca um usuário pelo e-mail (sem diferenciar maiúsculas).
func (s *Store) FindUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByMail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com email '%s' não encontrado", email))
	}
	return s.users[id], nil
}

// FindUserByID busca um usuário pelo ID.
func (s *Store) FindUserByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID %s não encontrado", id))
	}
	return u, nil
}

// UpdatePassword troca o hash de senha do usuário.
func (s *Store) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID %s não encontrado", id))
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}
