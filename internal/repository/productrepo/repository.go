package productrepo

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

// Define a chave de cache para produtos.
const productCacheKey = "product:%s"

// ProductRepository lê e grava produtos, com cache-aside no Redis para buscas por ID.
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client // Opcional: sem cache, todas as leituras vão ao DB
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository cria uma nova instância do ProductRepository.
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// SaveProduct insere um novo produto. SKU duplicado: ConflictError.
func (r *ProductRepository) SaveProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	r.logger.Debug("Iniciando Save de produto no repositório.", map[string]interface{}{"sku": p.SKU})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var categoryID sql.NullString
	if p.CategoryID != "" {
		categoryID = sql.NullString{String: p.CategoryID, Valid: true}
	}

	err := r.DB.QueryRowContext(ctxTimeout, `
        INSERT INTO products (id, sku, name, category_id, unit_of_measure, reorder_point, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at`,
		p.ID, p.SKU, p.Name, categoryID, p.UnitOfMeasure, p.ReorderPoint, p.CreatedAt,
	).Scan(&p.CreatedAt)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			r.logger.Info("SKU já cadastrado.", map[string]interface{}{"sku": p.SKU})
			return domain.Product{}, apperror.NewConflictError(fmt.Sprintf("SKU '%s' já cadastrado", p.SKU))
		case database.IsForeignKeyViolation(err), database.IsInvalidText(err):
			return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Categoria com ID %s não encontrada", p.CategoryID))
		}
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao criar produto", err)
	}

	r.logger.Info("Produto salvo com sucesso no repositório.", map[string]interface{}{"product_id": p.ID, "sku": p.SKU})
	return p, nil
}

// FindProduct busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProductRepository) FindProduct(ctx context.Context, id string) (domain.Product, error) {
	key := fmt.Sprintf(productCacheKey, id)

	var product domain.Product
	if r.Cache != nil {
		hit, err := cache.GetJSON(ctx, r.Cache, key, &product)
		if err != nil {
			// Falha de cache não impede a leitura do DB
			r.logger.Warn("Falha ao ler produto do cache.", map[string]interface{}{"product_id": id, "error": err.Error()})
		} else if hit {
			r.logger.Debug("Produto encontrado no cache.", map[string]interface{}{"product_id": id})
			return product, nil
		}
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var categoryID sql.NullString
	err := r.DB.QueryRowContext(ctxTimeout, `
        SELECT id, sku, name, category_id::text, unit_of_measure, reorder_point, created_at
        FROM products
        WHERE id = $1`, id,
	).Scan(&product.ID, &product.SKU, &product.Name, &categoryID, &product.UnitOfMeasure, &product.ReorderPoint, &product.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) || database.IsInvalidText(err) {
		r.logger.Info("Produto não encontrado no DB.", map[string]interface{}{"product_id": id})
		return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao buscar produto", err)
	}
	product.CategoryID = categoryID.String

	if r.Cache != nil {
		if err := cache.SetJSON(ctx, r.Cache, key, product, r.CacheTTL); err != nil {
			r.logger.Warn("Falha ao gravar produto no cache.", map[string]interface{}{"product_id": id, "error": err.Error()})
		}
	}
	return product, nil
}

// ListProducts devolve os produtos com o estoque somado em todas as localizações.
func (r *ProductRepository) ListProducts(ctx context.Context) ([]domain.ProductSummary, error) {
	r.logger.Debug("Listando produtos no repositório.", nil)

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `
        SELECT p.id, p.sku, p.name, p.category_id::text, COALESCE(c.name, ''), p.unit_of_measure,
               p.reorder_point, p.created_at, COALESCE(SUM(s.quantity), 0)
        FROM products p
        LEFT JOIN categories c ON c.id = p.category_id
        LEFT JOIN stock_levels s ON s.product_id = p.id
        GROUP BY p.id, c.name
        ORDER BY p.created_at DESC, p.id`)
	if err != nil {
		r.logger.Error("Falha ao listar produtos no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	out := make([]domain.ProductSummary, 0)
	for rows.Next() {
		var (
			ps         domain.ProductSummary
			categoryID sql.NullString
		)
		if err := rows.Scan(&ps.ID, &ps.SKU, &ps.Name, &categoryID, &ps.CategoryName, &ps.UnitOfMeasure,
			&ps.ReorderPoint, &ps.CreatedAt, &ps.TotalStock); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear produtos do DB", err)
		}
		ps.CategoryID = categoryID.String
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Erro após iteração de produtos", err)
	}

	r.logger.Info("ListProducts concluído com sucesso.", map[string]interface{}{"total_products": len(out)})
	return out, nil
}

// ListCategories devolve as categorias ordenadas por nome.
func (r *ProductRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `SELECT id, name, COALESCE(description, '') FROM categories ORDER BY name`)
	if err != nil {
		r.logger.Error("Falha ao listar categorias no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar categorias", err)
	}
	defer rows.Close()

	out := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear categorias do DB", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Erro após iteração de categorias", err)
	}
	return out, nil
}
