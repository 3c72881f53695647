package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gopoint/internal/domain"
	apperror "gopoint/internal/errors"
	"gopoint/internal/pkg/logger"
)

// Código de erro do PostgreSQL para violação de chave única (UNIQUE constraint).
const pqUniqueViolation = "23505"

// UserRepository implementa a interface domain.UserRepository.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const userColumns = `id, full_name, email, hash, role, birth_date, gender, total_point, created_at, updated_at`

// scanUser mapeia uma linha do resultado para a struct User.
func scanUser(row *sql.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Hash,
		&user.Role,
		&user.BirthDate,
		&user.Gender,
		&user.TotalPoint,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

// Save insere um novo usuário no banco de dados.
// A unicidade do e-mail é garantida pela constraint UNIQUE: registros
// concorrentes com o mesmo e-mail disputam no banco, nunca na aplicação.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"email": user.Email})

	// 1. Configura Contexto com Timeout
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// 2. Prepara dados e ID
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	insertSQL := `INSERT INTO users (` + userColumns + `)
                  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	// 3. Executa o INSERT
	_, err := r.DB.ExecContext(
		ctxTimeout,
		insertSQL,
		user.ID,
		user.FullName,
		user.Email,
		user.Hash,
		user.Role,
		user.BirthDate,
		user.Gender,
		user.TotalPoint,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// Violação de unicidade (e-mail duplicado) é um erro de negócio,
		// não uma falha de infraestrutura.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			r.logger.Info("Tentativa de registro com e-mail duplicado.", map[string]interface{}{"email": user.Email})
			return domain.User{}, apperror.NewConflictError("e-mail já cadastrado")
		}

		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("falha ao inserir usuário", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// FindByEmail busca um usuário pelo endereço de e-mail.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug("Usuário não encontrado no DB por email.", map[string]interface{}{"email": email})
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("usuário com email '%s' não encontrado", email))
		}
		r.logger.Error("Falha ao buscar usuário por email no DB.", err)
		return domain.User{}, apperror.NewDBError("falha ao buscar usuário por email", err)
	}

	return user, nil
}

// FindByID busca um usuário pelo ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("usuário com id '%s' não encontrado", id))
		}
		r.logger.Error("Falha ao buscar usuário por ID no DB.", err)
		return domain.User{}, apperror.NewDBError("falha ao buscar usuário por id", err)
	}

	return user, nil
}

// Update aplica uma atualização parcial no usuário.
// Campos nil no UserUpdate são preservados via COALESCE, então um PATCH com
// corpo vazio é um no-op (apenas updated_at avança).
func (r *UserRepository) Update(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error) {
	r.logger.Debug("Iniciando Update de usuário no repositório.", map[string]interface{}{"user_id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	updateSQL := `UPDATE users
                  SET full_name  = COALESCE($2, full_name),
                      email      = COALESCE($3, email),
                      hash       = COALESCE($4, hash),
                      birth_date = COALESCE($5, birth_date),
                      updated_at = $6
                  WHERE id = $1
                  RETURNING ` + userColumns

	row := r.DB.QueryRowContext(
		ctxTimeout,
		updateSQL,
		id,
		update.FullName,
		update.Email,
		update.Hash,
		update.BirthDate,
		time.Now().UTC(),
	)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("usuário com id '%s' não encontrado", id))
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			r.logger.Info("Tentativa de atualização com e-mail duplicado.", map[string]interface{}{"user_id": id})
			return domain.User{}, apperror.NewConflictError("e-mail já cadastrado")
		}

		r.logger.Error("Falha ao atualizar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("falha ao atualizar usuário", err)
	}

	r.logger.Info("Usuário atualizado com sucesso no repositório.", map[string]interface{}{"user_id": id})
	return user, nil
}
