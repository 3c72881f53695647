package product

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"gopoint/internal/domain"
	apperror "gopoint/internal/errors"
	"gopoint/internal/pkg/logger"
	"gopoint/internal/pkg/middleware"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	CreateProduct(ctx context.Context, userID string, creation domain.ProductCreation) (domain.Product, error)
	GetProductByID(ctx context.Context, userID string, productID string) (domain.Product, error)
	ListProducts(ctx context.Context, userID string) ([]domain.Product, error)
	EditProductByID(ctx context.Context, userID string, productID string, update domain.ProductUpdate) (domain.Product, error)
	DeleteProductByID(ctx context.Context, userID string, productID string) error
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse padroniza o tratamento de erros e respostas HTTP.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)

		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta.", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error("Erro interno no serviço de produto.", err)
	} else {
		// Erros de cliente (4xx) quase sempre incluem tentativas de acesso a
		// recursos de outros usuários; ficam em debug para não poluir o log.
		h.Logger.Debug("Requisição de produto rejeitada.", map[string]interface{}{
			"path":     r.URL.Path,
			"status":   status,
			"category": category,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}

// claims extrai a identidade autenticada; ausência indica rota mal registrada.
func (h *Handler) claims(w http.ResponseWriter, r *http.Request) (middleware.UserClaims, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.Logger.Warn("Requisição de produto sem claims de usuário no contexto.", nil)
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
	}
	return claims, ok
}

// ProductsHandler despacha GET (listar) e POST (criar) em /v1/products.
func (h *Handler) ProductsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listProducts(w, r)
	case http.MethodPost:
		h.createProduct(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// listProducts lida com GET /v1/products.
// @Summary Lista os produtos do usuário autenticado
// @Description Retorna apenas os produtos cujo dono é a identidade autenticada.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Product "Produtos do usuário"
// @Failure 401 {object} domain.ErrorResponse "Token ausente, inválido ou expirado"
// @Router /products [get]
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	products, err := h.Service.ListProducts(r.Context(), claims.UserID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, products, nil, http.StatusOK)
}

// createProduct lida com POST /v1/products.
// @Summary Cria um produto para o usuário autenticado
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body domain.ProductCreation true "Dados do produto"
// @Success 201 {object} domain.Product "Produto criado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Router /products [post]
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var creation domain.ProductCreation
	if err := json.NewDecoder(r.Body).Decode(&creation); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
		return
	}

	product, err := h.Service.CreateProduct(r.Context(), claims.UserID, creation)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, product, nil, http.StatusCreated)
}

// ProductByIDHandler despacha GET/PATCH/DELETE em /v1/products/{id}.
// @Summary Opera sobre um único produto do usuário autenticado
// @Description Produto inexistente e produto de outro dono retornam o mesmo 403.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do produto (UUID)"
// @Success 200 {object} domain.Product "Produto"
// @Success 204 "Produto removido"
// @Failure 403 {object} domain.ErrorResponse "Acesso ao recurso negado"
// @Router /products/{id} [get]
func (h *Handler) ProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	// Extrai o ID do último segmento da URL: /v1/products/{id}
	path := strings.Trim(r.URL.Path, "/")
	segments := strings.Split(path, "/")
	if len(segments) != 3 || segments[2] == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formato de URL inválido ou ID ausente."), http.StatusOK)
		return
	}
	productID := segments[2]

	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		product, err := h.Service.GetProductByID(ctx, claims.UserID, productID)
		if err != nil {
			h.handleServiceResponse(w, r, nil, err, http.StatusOK)
			return
		}
		h.handleServiceResponse(w, r, product, nil, http.StatusOK)

	case http.MethodPatch:
		var update domain.ProductUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
			return
		}

		product, err := h.Service.EditProductByID(ctx, claims.UserID, productID, update)
		if err != nil {
			h.handleServiceResponse(w, r, nil, err, http.StatusOK)
			return
		}
		h.handleServiceResponse(w, r, product, nil, http.StatusOK)

	case http.MethodDelete:
		if err := h.Service.DeleteProductByID(ctx, claims.UserID, productID); err != nil {
			h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
			return
		}
		// 204: corpo vazio por definição
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
