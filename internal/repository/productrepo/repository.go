package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopoint/internal/domain"
	apperror "gopoint/internal/errors"
	"gopoint/internal/pkg/cache"
	"gopoint/internal/pkg/logger"
)

// Chave de cache para a leitura de produto por ID.
const productCacheKey = "product:%s"

// ProductRepository implementa a interface domain.ProductRepository.
// Contém as conexões necessárias para acessar dados (DB e Cache).
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

const productColumns = `id, user_id, name, type, price, description, point, created_at, updated_at`

// scanProduct mapeia uma linha do resultado para a struct Product.
func scanProduct(scanner interface{ Scan(...interface{}) error }) (domain.Product, error) {
	var product domain.Product
	err := scanner.Scan(
		&product.ID,
		&product.UserID,
		&product.Name,
		&product.Type,
		&product.Price,
		&product.Description,
		&product.Point,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	return product, err
}

// Save persiste um novo Produto no banco de dados.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const insertSQL = `INSERT INTO products (` + productColumns + `)
                       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.DB.ExecContext(ctxTimeout, insertSQL,
		product.ID,
		product.UserID,
		product.Name,
		product.Type,
		product.Price,
		product.Description,
		product.Point,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("falha ao inserir produto", err)
	}

	return product, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	// --- 1. Cache-Aside (READ) ---
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &product) == nil {
			// Cache HIT
			return product, nil
		}
		// Se a desserialização falhar, seguimos para o DB
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (e.g., conexão perdida): logamos, mas continuamos.
		r.logger.Warn("Falha ao ler do cache Redis, caindo para o DB.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	// --- 2. Busca no Banco de Dados (PostgreSQL) ---
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err = scanProduct(r.DB.QueryRowContext(ctxTimeout, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		// O Serviço decide como expor a ausência (política de ownership).
		return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("produto com id '%s' não existe", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("falha ao buscar produto", err)
	}

	// --- 3. Cache-Aside (WRITE) ---
	if productJSON, marshalErr := json.Marshal(product); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, productJSON, r.CacheTTL)
	}

	return product, nil
}

// FindAllByUser lista os produtos de um único dono.
// O escopo de visibilidade é aplicado na própria query, nunca por pós-filtragem.
func (r *ProductRepository) FindAllByUser(ctx context.Context, userID string) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT ` + productColumns + ` FROM products WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.DB.QueryContext(ctxTimeout, query, userID)
	if err != nil {
		r.logger.Error("Falha ao listar produtos no DB.", err)
		return nil, apperror.NewDBError("falha ao listar produtos", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, apperror.NewDBError("falha ao mapear produto", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("falha ao iterar produtos", err)
	}

	return products, nil
}

// Update aplica uma atualização parcial no produto (COALESCE para campos nil)
// e invalida a entrada de cache correspondente.
func (r *ProductRepository) Update(ctx context.Context, id string, update domain.ProductUpdate) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const updateSQL = `UPDATE products
                       SET name        = COALESCE($2, name),
                           type        = COALESCE($3, type),
                           price       = COALESCE($4, price),
                           description = COALESCE($5, description),
                           point       = COALESCE($6, point),
                           updated_at  = $7
                       WHERE id = $1
                       RETURNING ` + productColumns

	row := r.DB.QueryRowContext(ctxTimeout, updateSQL,
		id,
		update.Name,
		update.Type,
		update.Price,
		update.Description,
		update.Point,
		time.Now().UTC(),
	)

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("produto com id '%s' não existe", id))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("falha ao atualizar produto", err)
	}

	// Invalidação do cache: a próxima leitura repopula com o valor novo.
	r.Cache.Delete(ctxTimeout, fmt.Sprintf(productCacheKey, id))

	return product, nil
}

// Delete remove um produto do banco e invalida o cache.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const deleteSQL = `DELETE FROM products WHERE id = $1`

	result, err := r.DB.ExecContext(ctxTimeout, deleteSQL, id)
	if err != nil {
		r.logger.Error("Falha ao deletar produto no DB.", err)
		return apperror.NewDBError("falha ao deletar produto", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("produto com id '%s' não existe", id))
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(productCacheKey, id))

	return nil
}
