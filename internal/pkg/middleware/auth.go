package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"gopoint/internal/domain"
	apperror "gopoint/internal/errors"
	"gopoint/internal/pkg/token"
)

// ContextKey é o tipo da chave usada para armazenar as claims do usuário no
// contexto. Usamos um tipo próprio para garantir que não haja conflito com
// chaves string de outros pacotes.
type ContextKey int

const (
	UserClaimsKey ContextKey = iota
)

// UserClaims representa a identidade autenticada anexada ao contexto da
// requisição, já re-resolvida contra o banco (snapshot atual, não o do token).
type UserClaims struct {
	UserID string
	Email  string
	Role   domain.UserRole
}

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// UserFinder define a consulta mínima de identidade que o middleware precisa.
// domain.UserRepository satisfaz esta interface.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// NewAuthMiddleware cria uma função de middleware que valida um JWT, re-resolve
// o usuário no banco e anexa as claims ao contexto da requisição.
// O middleware é um gate puro: nenhuma mutação de estado, apenas anexa contexto.
// Qualquer falha (header ausente, token expirado, assinatura inválida, usuário
// removido) vira um único 401, sem distinção para o cliente.
func NewAuthMiddleware(tokenSvc TokenService, users UserFinder) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			// 1. Extrair o Token do Header Authorization: Bearer <token>
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeUnauthorized(w, "Token de autorização ausente ou malformado.")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			// 2. Validar o Token (assinatura + expiração)
			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				writeUnauthorized(w, "Token inválido ou expirado.")
				return
			}

			// 3. Re-resolver o usuário no banco de dados.
			// O token é stateless, mas o snapshot anexado ao contexto deve
			// refletir o estado atual (papel/pontos podem ter mudado, a conta
			// pode ter sido removida).
			user, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil {
				writeUnauthorized(w, "Token inválido ou expirado.")
				return
			}

			// 4. Anexar Claims ao Contexto
			userClaims := UserClaims{
				UserID: user.ID,
				Email:  user.Email,
				Role:   user.Role,
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, userClaims)

			// Chama o próximo handler com o novo contexto
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// GetUserClaimsFromContext é uma função utilitária para extrair as claims no handler.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

// writeUnauthorized escreve a resposta 401 no formato padronizado de erro da API.
func writeUnauthorized(w http.ResponseWriter, msg string) {
	appErr := apperror.NewUnauthorizedError(msg)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     http.StatusUnauthorized,
		Category: appErr.Category(),
		Message:  appErr.Error(),
	})
}
