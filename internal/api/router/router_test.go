package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"gopoint/internal/api/auth"
	"gopoint/internal/api/product"
	"gopoint/internal/api/router"
	"gopoint/internal/api/user"
	"gopoint/internal/domain"
	apperror "gopoint/internal/errors"
	"gopoint/internal/pkg/hasher"
	"gopoint/internal/pkg/logger"
	"gopoint/internal/pkg/middleware"
	"gopoint/internal/pkg/token"
	"gopoint/internal/service/authservice"
	"gopoint/internal/service/productservice"
	"gopoint/internal/service/userservice"
)

// --- Fakes em memória ---
// Diferente dos mocks dos testes de serviço, aqui os repositórios guardam
// estado entre requisições para exercitar o cenário completo da API.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User // chave: ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]domain.User{}}
}

func (r *fakeUserRepo) Save(ctx context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.User{}, apperror.NewConflictError("e-mail já cadastrado")
		}
	}
	u.ID = uuid.NewString()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, apperror.NewNotFoundError("usuário não encontrado")
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, apperror.NewNotFoundError("usuário não encontrado")
	}
	return u, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, apperror.NewNotFoundError("usuário não encontrado")
	}
	if update.Email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *update.Email {
				return domain.User{}, apperror.NewConflictError("e-mail já cadastrado")
			}
		}
		u.Email = *update.Email
	}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.Hash != nil {
		u.Hash = *update.Hash
	}
	if update.BirthDate != nil {
		u.BirthDate = *update.BirthDate
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return u, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]domain.Product{}}
}

func (r *fakeProductRepo) Save(ctx context.Context, p domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return p, nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id string) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, apperror.NewNotFoundError("produto não encontrado")
	}
	return p, nil
}

func (r *fakeProductRepo) FindAllByUser(ctx context.Context, userID string) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []domain.Product{}
	for _, p := range r.products {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, id string, update domain.ProductUpdate) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, apperror.NewNotFoundError("produto não encontrado")
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Type != nil {
		p.Type = *update.Type
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.Description != nil {
		p.Description = update.Description
	}
	if update.Point != nil {
		p.Point = *update.Point
	}
	p.UpdatedAt = time.Now().UTC()
	r.products[id] = p
	return p, nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return apperror.NewNotFoundError("produto não encontrado")
	}
	delete(r.products, id)
	return nil
}

// newTestServer monta a aplicação completa sobre os fakes em memória.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.NewLogger("error")
	h := hasher.NewArgon2Hasher(hasher.Params{Time: 1, MemoryKB: 16 * 1024, Threads: 1})
	tokenSvc := token.NewService("segredo-do-teste", 15*time.Minute)

	userRepo := newFakeUserRepo()
	productRepo := newFakeProductRepo()

	authHandler := auth.NewHandler(authservice.NewService(userRepo, h, tokenSvc, log), log)
	userHandler := user.NewHandler(userservice.NewService(userRepo, h, log), log)
	productHandler := product.NewHandler(productservice.NewService(productRepo, log), log)

	authMW := middleware.NewAuthMiddleware(tokenSvc, userRepo)

	srv := httptest.NewServer(router.NewRouter(authHandler, userHandler, productHandler, authMW))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, bearer string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func registerUser(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]interface{}{
		"full_name":  "Khan",
		"email":      email,
		"password":   "khan",
		"birth_date": "2000-05-07T00:00:00Z",
		"gender":     "male",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var tokenResp domain.TokenResponse
	assert.NoError(t, json.Unmarshal(body, &tokenResp))
	assert.NotEmpty(t, tokenResp.AccessToken)
	return tokenResp.AccessToken
}

// TestScenario_FullLifecycle percorre o ciclo completo da API:
// registro, login, perfil, CRUD de produto e remoção.
func TestScenario_FullLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// 1. Registro emite token imediatamente
	accessToken := registerUser(t, srv, "khan@gmail.com")

	// 2. Registro duplicado: 403 sem revelar o campo
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]interface{}{
		"full_name":  "Khan",
		"email":      "khan@gmail.com",
		"password":   "outra",
		"birth_date": "2000-05-07T00:00:00Z",
		"gender":     "male",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), "Credenciais já utilizadas.")

	// 3. Login com senha errada: 403
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", map[string]string{
		"email":    "khan@gmail.com",
		"password": "errada",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// 4. Login correto: 200 + access_token
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", map[string]string{
		"email":    "khan@gmail.com",
		"password": "khan",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var tokenResp domain.TokenResponse
	assert.NoError(t, json.Unmarshal(body, &tokenResp))
	accessToken = tokenResp.AccessToken

	// 5. Perfil: sem hash e sem papel na resposta
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/users/me", accessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "khan@gmail.com")
	assert.NotContains(t, string(body), "hash")
	assert.NotContains(t, string(body), "role")

	// 6. Edição parcial do perfil
	newName := "Khan Editado"
	resp, body = doJSON(t, http.MethodPatch, srv.URL+"/v1/users", accessToken, map[string]string{
		"full_name": newName,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), newName)

	// 7. Criação de produto: o dono vem do token
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/v1/products", accessToken, map[string]interface{}{
		"name":  "Kopi",
		"type":  "bebida",
		"price": 15000,
		"point": 50,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created domain.Product
	assert.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Kopi", created.Name)
	assert.NotEmpty(t, created.ID)

	// 8. Listagem retorna só o que é do usuário
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/products", accessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []domain.Product
	assert.NoError(t, json.Unmarshal(body, &listed))
	assert.Len(t, listed, 1)

	// 9. Busca e edição por ID
	productURL := fmt.Sprintf("%s/v1/products/%s", srv.URL, created.ID)
	resp, _ = doJSON(t, http.MethodGet, productURL, accessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPatch, productURL, accessToken, map[string]interface{}{
		"price": 20000,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var edited domain.Product
	assert.NoError(t, json.Unmarshal(body, &edited))
	assert.Equal(t, int64(20000), edited.Price)

	// 10. Remoção: 204 sem corpo, e a lista volta a ficar vazia
	resp, body = doJSON(t, http.MethodDelete, productURL, accessToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/products", accessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, json.Unmarshal(body, &listed))
	assert.Len(t, listed, 0)
}

// TestScenario_OwnershipIsolation verifica que um usuário não enxerga nem
// muta produtos de outro, e que "não existe" e "não é seu" são indistinguíveis.
func TestScenario_OwnershipIsolation(t *testing.T) {
	srv := newTestServer(t)

	ownerToken := registerUser(t, srv, "khan@gmail.com")
	intruderToken := registerUser(t, srv, "intruso@gmail.com")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/products", ownerToken, map[string]interface{}{
		"name":  "Kopi",
		"type":  "bebida",
		"price": 15000,
		"point": 50,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created domain.Product
	assert.NoError(t, json.Unmarshal(body, &created))

	productURL := fmt.Sprintf("%s/v1/products/%s", srv.URL, created.ID)
	ghostURL := fmt.Sprintf("%s/v1/products/%s", srv.URL, uuid.NewString())

	// Intruso: GET, PATCH e DELETE recebem o mesmo 403
	for _, tc := range []struct {
		method string
		url    string
	}{
		{http.MethodGet, productURL},
		{http.MethodPatch, productURL},
		{http.MethodDelete, productURL},
		{http.MethodGet, ghostURL}, // inexistente: indistinguível de alheio
	} {
		resp, body = doJSON(t, tc.method, tc.url, intruderToken, map[string]interface{}{})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s", tc.method, tc.url)
		assert.Contains(t, string(body), "Acesso ao recurso negado.")
	}

	// A listagem do intruso continua vazia
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/products", intruderToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []domain.Product
	assert.NoError(t, json.Unmarshal(body, &listed))
	assert.Len(t, listed, 0)

	// O produto do dono permanece intacto
	resp, _ = doJSON(t, http.MethodGet, productURL, ownerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestScenario_Unauthenticated verifica que as rotas protegidas rejeitam
// requisições sem token com um 401 uniforme.
func TestScenario_Unauthenticated(t *testing.T) {
	srv := newTestServer(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/users/me"},
		{http.MethodPatch, "/v1/users"},
		{http.MethodGet, "/v1/products"},
		{http.MethodPost, "/v1/products"},
	}

	for _, tc := range protected {
		resp, body := doJSON(t, tc.method, srv.URL+tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
		assert.Contains(t, string(body), "UNAUTHORIZED")
	}
}

// TestPing verifica o health check.
func TestPing(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/ping", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}
