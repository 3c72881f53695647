package domain

import (
	"context"
	"time"
)

// Product representa um item do catálogo de pontos (a Entidade).
// Todo produto pertence a exatamente um usuário (UserID): o dono é o único
// que pode visualizar, editar ou remover o registro.
type Product struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Price       int64     `json:"price"`
	Description *string   `json:"description,omitempty"`
	Point       int       `json:"point"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductCreation representa o payload de entrada para a criação de um produto.
// O dono nunca vem do payload: é sempre a identidade autenticada da requisição.
type ProductCreation struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Price       int64   `json:"price"`
	Description *string `json:"description,omitempty"`
	Point       int     `json:"point"`
}

// ProductUpdate representa uma atualização parcial do produto.
// Campos nil são preservados como estão no banco (semântica de PATCH).
type ProductUpdate struct {
	Name        *string `json:"name,omitempty"`
	Type        *string `json:"type,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	Description *string `json:"description,omitempty"`
	Point       *int    `json:"point,omitempty"`
}

// --- Interfaces de Contrato ---

// ProductService é a interface que a camada de Serviço (Business Logic) DEVE implementar.
// Ela define o que o Handler (Camada API) pode pedir para a camada de Serviço fazer.
type ProductService interface {
	CreateProduct(ctx context.Context, userID string, creation ProductCreation) (Product, error)
	GetProductByID(ctx context.Context, userID string, productID string) (Product, error)
	ListProducts(ctx context.Context, userID string) ([]Product, error)
	EditProductByID(ctx context.Context, userID string, productID string, update ProductUpdate) (Product, error)
	DeleteProductByID(ctx context.Context, userID string, productID string) error
}

// ProductRepository é a interface que a camada de Repositório (Data Access) DEVE implementar.
// Ela define o que a camada de Serviço pode pedir para a camada de Persistência (DB/Cache) fazer.
type ProductRepository interface {
	Save(ctx context.Context, product Product) (Product, error)
	FindByID(ctx context.Context, id string) (Product, error)
	FindAllByUser(ctx context.Context, userID string) ([]Product, error)
	Update(ctx context.Context, id string, update ProductUpdate) (Product, error)
	Delete(ctx context.Context, id string) error
}
