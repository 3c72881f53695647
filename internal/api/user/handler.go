package user

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"gopoint/internal/domain"
	apperror "gopoint/internal/errors"
	"gopoint/internal/pkg/logger"
	"gopoint/internal/pkg/middleware"
	"gopoint/internal/service/userservice"
)

// UserService define o contrato que o Handler espera da camada de Serviço.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (domain.UserProfile, error)
	EditUser(ctx context.Context, userID string, edit userservice.UserEdit) (domain.UserProfile, error)
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
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
			json.NewEncoder(w).Encode(data)
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error("Erro interno no serviço de usuário.", err)
	} else {
		h.Logger.Debug("Requisição de usuário rejeitada.", map[string]interface{}{
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

// MeHandler lida com a requisição GET /v1/users/me.
// @Summary Retorna o perfil do usuário autenticado
// @Description Perfil sem o hash da senha e sem o papel (projeção pública).
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.UserProfile "Perfil do usuário"
// @Failure 401 {object} domain.ErrorResponse "Token ausente, inválido ou expirado"
// @Router /users/me [get]
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		// Só acontece se a rota for registrada sem o middleware de autenticação.
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return
	}

	profile, err := h.Service.GetProfile(ctx, claims.UserID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, profile, nil, http.StatusOK)
}

// EditUserHandler lida com a requisição PATCH /v1/users.
// @Summary Atualiza parcialmente o perfil do usuário autenticado
// @Description Todos os campos são opcionais; corpo vazio é um no-op válido.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param edit body userservice.UserEdit true "Campos a atualizar"
// @Success 200 {object} domain.UserProfile "Perfil atualizado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 403 {object} domain.ErrorResponse "Credenciais já utilizadas"
// @Router /users [patch]
func (h *Handler) EditUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return
	}

	// Corpo ausente equivale a um PATCH vazio (no-op).
	var edit userservice.UserEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil && err != io.EOF {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	profile, err := h.Service.EditUser(ctx, claims.UserID, edit)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, profile, nil, http.StatusOK)
}
