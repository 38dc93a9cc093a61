package warehouserepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/cache"
	"stockmaster/internal/pkg/database"
	"stockmaster/internal/pkg/logger"
)

const locationCacheKey = "location:%s"

// WarehouseRepository lê armazéns e localizações do catálogo.
type WarehouseRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewWarehouseRepository cria e retorna uma nova instância do Repositório de Armazéns.
func NewWarehouseRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *WarehouseRepository {
	return &WarehouseRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// ListWarehouses busca os armazéns ativos.
func (r *WarehouseRepository) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	r.logger.Debug("Iniciando ListWarehouses no repositório.", nil)

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `
        SELECT id, name, COALESCE(location, ''), is_active
        FROM warehouses
        WHERE is_active = true
        ORDER BY name`)
	if err != nil {
		r.logger.Error("Falha ao executar ListWarehouses query.", err)
		return nil, apperror.NewDBError("Falha ao buscar armazéns", err)
	}
	defer rows.Close()

	warehouses := make([]domain.Warehouse, 0)
	for rows.Next() {
		var w domain.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Location, &w.IsActive); err != nil {
			r.logger.Error("Falha ao mapear armazém na iteração de ListWarehouses.", err)
			return nil, apperror.NewDBError("Falha ao mapear armazéns do DB", err)
		}
		warehouses = append(warehouses, w)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Erro após iteração das linhas de armazéns.", err)
		return nil, apperror.NewDBError("Erro após iteração de armazéns", err)
	}

	r.logger.Info("ListWarehouses concluído com sucesso.", map[string]interface{}{"total_warehouses": len(warehouses)})
	return warehouses, nil
}

// ListLocations busca as localizações com o nome do armazém.
func (r *WarehouseRepository) ListLocations(ctx context.Context) ([]domain.Location, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `
        SELECT l.id, l.warehouse_id, w.name, l.name, l.type
        FROM locations l
        JOIN warehouses w ON w.id = l.warehouse_id
        ORDER BY w.name, l.name`)
	if err != nil {
		r.logger.Error("Falha ao executar ListLocations query.", err)
		return nil, apperror.NewDBError("Falha ao buscar localizações", err)
	}
	defer rows.Close()

	locations := make([]domain.Location, 0)
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.WarehouseID, &l.WarehouseName, &l.Name, &l.Type); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear localizações do DB", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Erro após iteração de localizações", err)
	}
	return locations, nil
}

// FindLocation busca uma localização pelo ID (cache-aside).
func (r *WarehouseRepository) FindLocation(ctx context.Context, id string) (domain.Location, error) {
	key := fmt.Sprintf(locationCacheKey, id)

	var l domain.Location
	if r.Cache != nil {
		hit, err := cache.GetJSON(ctx, r.Cache, key, &l)
		if err != nil {
			r.logger.Warn("Falha ao ler localização do cache.", map[string]interface{}{"location_id": id, "error": err.Error()})
		} else if hit {
			return l, nil
		}
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	err := r.DB.QueryRowContext(ctxTimeout, `
        SELECT l.id, l.warehouse_id, w.name, l.name, l.type
        FROM locations l
        JOIN warehouses w ON w.id = l.warehouse_id
        WHERE l.id = $1`, id,
	).Scan(&l.ID, &l.WarehouseID, &l.WarehouseName, &l.Name, &l.Type)
	if errors.Is(err, sql.ErrNoRows) || database.IsInvalidText(err) {
		r.logger.Info("Localização não encontrada.", map[string]interface{}{"location_id": id})
		return domain.Location{}, apperror.NewNotFoundError(fmt.Sprintf("Localização com ID %s não encontrada", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar localização no DB.", err)
		return domain.Location{}, apperror.NewDBError("Falha ao buscar localização", err)
	}

	if r.Cache != nil {
		if err := cache.SetJSON(ctx, r.Cache, key, l, r.CacheTTL); err != nil {
			r.logger.Warn("Falha ao gravar localização no cache.", map[string]interface{}{"location_id": id, "error": err.Error()})
		}
	}
	return l, nil
}
