package productservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"gopoint/internal/domain"
	apperror "gopoint/internal/errors"
	"gopoint/internal/pkg/logger"
)

// Mensagem única para "não existe" e "não é seu": o cliente não consegue
// descobrir se um ID pertence a outro usuário.
const accessDeniedMsg = "Acesso ao recurso negado."

// Service é a estrutura que implementa a interface domain.ProductService.
// Toda operação sobre um produto existente passa pela política de ownership:
// só o dono enxerga e muta o recurso.
type Service struct {
	repo   domain.ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo domain.ProductRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// --- Implementação: CreateProduct ---

// CreateProduct cria um produto pertencente ao usuário autenticado.
// O dono vem sempre do contexto da requisição, nunca do payload.
func (s *Service) CreateProduct(ctx context.Context, userID string, creation domain.ProductCreation) (domain.Product, error) {
	// Validação de Regras de Negócio
	if creation.Name == "" || creation.Type == "" {
		return domain.Product{}, apperror.NewValidationError("Nome e tipo são obrigatórios para o produto.")
	}
	if creation.Price <= 0 {
		return domain.Product{}, apperror.NewValidationError("O preço do produto deve ser positivo.")
	}
	if creation.Point < 0 {
		return domain.Product{}, apperror.NewValidationError("A pontuação do produto não pode ser negativa.")
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        creation.Name,
		Type:        creation.Type,
		Price:       creation.Price,
		Description: creation.Description,
		Point:       creation.Point,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Save(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("Produto criado.", map[string]interface{}{"product_id": created.ID, "user_id": userID})
	return created, nil
}

// --- Implementação: ListProducts ---

// ListProducts lista apenas os produtos do usuário autenticado.
// O escopo é aplicado na query do repositório, não por pós-filtragem.
func (s *Service) ListProducts(ctx context.Context, userID string) ([]domain.Product, error) {
	return s.repo.FindAllByUser(ctx, userID)
}

// --- Implementação: GetProductByID ---

// GetProductByID busca um produto do próprio usuário.
// Produto inexistente e produto de outro dono produzem o mesmo 403.
func (s *Service) GetProductByID(ctx context.Context, userID string, productID string) (domain.Product, error) {
	product, err := s.loadOwned(ctx, userID, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// --- Implementação: EditProductByID ---

// EditProductByID aplica uma atualização parcial em um produto do próprio usuário.
func (s *Service) EditProductByID(ctx context.Context, userID string, productID string, update domain.ProductUpdate) (domain.Product, error) {
	if update.Price != nil && *update.Price <= 0 {
		return domain.Product{}, apperror.NewValidationError("O preço do produto deve ser positivo.")
	}

	// A política de ownership roda ANTES da mutação.
	if _, err := s.loadOwned(ctx, userID, productID); err != nil {
		return domain.Product{}, err
	}

	updated, err := s.repo.Update(ctx, productID, update)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("Produto atualizado.", map[string]interface{}{"product_id": productID, "user_id": userID})
	return updated, nil
}

// --- Implementação: DeleteProductByID ---

// DeleteProductByID remove um produto do próprio usuário.
func (s *Service) DeleteProductByID(ctx context.Context, userID string, productID string) error {
	if _, err := s.loadOwned(ctx, userID, productID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}

	s.logger.Info("Produto removido.", map[string]interface{}{"product_id": productID, "user_id": userID})
	return nil
}

// loadOwned carrega um produto e aplica a política de ownership.
// NotFound do repositório e dono divergente colapsam no mesmo ForbiddenError,
// para não vazar a existência de recursos de outros usuários.
func (s *Service) loadOwned(ctx context.Context, userID string, productID string) (domain.Product, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.Product{}, apperror.NewForbiddenError(accessDeniedMsg)
		}
		// Falha de infraestrutura (DB/cache): propaga como 500.
		return domain.Product{}, err
	}

	if product.UserID != userID {
		s.logger.Warn("Acesso negado a produto de outro usuário.", map[string]interface{}{
			"product_id": productID,
			"user_id":    userID,
		})
		return domain.Product{}, apperror.NewForbiddenError(accessDeniedMsg)
	}

	return product, nil
}
