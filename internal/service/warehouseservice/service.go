package warehouseservice

import (
	"context"

	"github.com/google/uuid"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/logger"
)

// WarehouseRepository define o contrato que o Serviço de Armazéns espera da camada de Persistência.
type WarehouseRepository interface {
	ListWarehouses(ctx context.Context) ([]domain.Warehouse, error)
	ListLocations(ctx context.Context) ([]domain.Location, error)
	FindLocation(ctx context.Context, id string) (domain.Location, error)
}

// Service expõe as leituras de armazéns e localizações.
type Service struct {
	repo   WarehouseRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Armazéns.
func NewService(repo WarehouseRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetAllWarehouses busca todos os armazéns ativos.
func (s *Service) GetAllWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	s.logger.Debug("Iniciando busca de todos os armazéns no serviço.", nil)

	warehouses, err := s.repo.ListWarehouses(ctx)
	if err != nil {
		s.logger.Error("Falha ao buscar todos os armazéns no repositório.", err)
		return nil, err
	}

	s.logger.Info("Todos os armazéns encontrados com sucesso.", map[string]interface{}{"count": len(warehouses)})
	return warehouses, nil
}

// GetAllLocations busca as localizações com o nome do armazém a que pertencem.
func (s *Service) GetAllLocations(ctx context.Context) ([]domain.Location, error) {
	locations, err := s.repo.ListLocations(ctx)
	if err != nil {
		s.logger.Error("Falha ao buscar localizações no repositório.", err)
		return nil, err
	}
	return locations, nil
}

// GetLocationByID busca uma localização pelo ID após validação de formato.
func (s *Service) GetLocationByID(ctx context.Context, id string) (domain.Location, error) {
	s.logger.Debug("Iniciando busca de localização por ID no serviço.", map[string]interface{}{"id": id})

	if _, err := uuid.Parse(id); err != nil {
		s.logger.Warn("ID de localização inválido fornecido.", map[string]interface{}{"id": id, "error": err.Error()})
		return domain.Location{}, apperror.NewValidationError("O ID da localização deve ser um UUID válido.")
	}

	location, err := s.repo.FindLocation(ctx, id)
	if err != nil {
		return domain.Location{}, err // Erros do repositório já são NotFoundError ou DBError
	}
	return location, nil
}
