package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"gopoint/internal/api/auth"
	"gopoint/internal/api/product"
	"gopoint/internal/api/user"
)

// AuthMiddleware é a forma do decorador aplicado às rotas protegidas.
type AuthMiddleware func(next http.HandlerFunc) http.HandlerFunc

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(
	authHandler *auth.Handler,
	userHandler *user.Handler,
	productHandler *product.Handler,
	authMW AuthMiddleware,
) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	// Em projetos maiores, pode-se usar um mux de terceiros (e.g., gorilla/mux, chi)
	mux := http.NewServeMux()

	// --- 1. Rotas de Health Check e Documentação ---
	mux.HandleFunc("/ping", PingHandler)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// --- 2. Rotas de Autenticação (públicas — produzem os tokens que o
	// middleware valida nas rotas abaixo) ---
	mux.HandleFunc("/v1/auth/register", authHandler.RegisterUserHandler)
	mux.HandleFunc("/v1/auth/login", authHandler.LoginUserHandler)

	// --- 3. Rotas de Usuário (protegidas) ---
	mux.HandleFunc("/v1/users/me", authMW(userHandler.MeHandler))
	mux.HandleFunc("/v1/users", authMW(userHandler.EditUserHandler))

	// --- 4. Rotas de Produto (protegidas, ownership aplicado no serviço) ---
	mux.HandleFunc("/v1/products", authMW(productHandler.ProductsHandler))
	mux.HandleFunc("/v1/products/", authMW(productHandler.ProductByIDHandler))

	return mux
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
