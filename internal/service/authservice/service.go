package authservice

import (
	"context"
	"errors"

	"gopoint/internal/domain"
	apperror "gopoint/internal/errors"
	"gopoint/internal/pkg/hasher"
	"gopoint/internal/pkg/logger"
)

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID string, email string) (string, error)
}

// Service implementa o fluxo de autenticação (registro e login).
// Ambas as entradas são públicas: os tokens emitidos aqui são os que o
// middleware de autenticação valida nas rotas protegidas.
type Service struct {
	UserRepo domain.UserRepository
	Hasher   hasher.Hasher
	TokenSvc TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do serviço de autenticação.
func NewService(repo domain.UserRepository, h hasher.Hasher, tokenSvc TokenService, log logger.Logger) *Service {
	return &Service{
		UserRepo: repo,
		Hasher:   h,
		TokenSvc: tokenSvc,
		logger:   log,
	}
}

// Register registra um novo usuário: hash da senha → persistência → emissão
// do token. O hash armazenado nunca é retornado ao chamador.
func (s *Service) Register(ctx context.Context, registration domain.UserRegistration) (string, error) {
	// 1. Validação Básica de forma
	if registration.FullName == "" || registration.Email == "" || registration.Password == "" {
		return "", apperror.NewValidationError("Nome completo, e-mail e senha são obrigatórios.")
	}
	if registration.BirthDate.IsZero() {
		return "", apperror.NewValidationError("Data de nascimento é obrigatória.")
	}

	// 2. Hashing da Senha (Argon2id com salt aleatório)
	hash, err := s.Hasher.Hash(registration.Password)
	if err != nil {
		return "", apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	role := registration.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	newUser := domain.User{
		FullName:   registration.FullName,
		Email:      registration.Email,
		Hash:       hash,
		Role:       role,
		BirthDate:  registration.BirthDate,
		Gender:     registration.Gender,
		TotalPoint: registration.TotalPoint,
	}

	// 3. Persistência com constraint de e-mail único.
	// A disputa entre registros concorrentes é resolvida atomicamente no banco;
	// aqui só traduzimos a violação para o erro de negócio.
	user, err := s.UserRepo.Save(ctx, newUser)
	if err != nil {
		var conflict *apperror.ConflictError
		if errors.As(err, &conflict) {
			// Não revelamos qual campo causou o conflito.
			return "", apperror.NewForbiddenError("Credenciais já utilizadas.")
		}
		return "", err
	}

	s.logger.Info("Usuário registrado com sucesso.", map[string]interface{}{"user_id": user.ID})

	// 4. Emissão do token de acesso
	tokenString, err := s.TokenSvc.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return tokenString, nil
}

// Login autentica um usuário, verifica a senha e emite um JWT.
//
// "Usuário não encontrado" e "Senha incorreta" são deliberadamente
// distinguíveis (ambos 403). Isso permite enumeração de e-mails e é um
// trade-off consciente herdado do comportamento original do sistema,
// não um bug a corrigir silenciosamente.
func (s *Service) Login(ctx context.Context, email string, password string) (string, error) {
	// 1. Validação Básica
	if email == "" || password == "" {
		return "", apperror.NewValidationError("E-mail e senha são obrigatórios.")
	}

	// 2. Buscar Usuário pelo Email
	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return "", apperror.NewForbiddenError("Usuário não encontrado.")
		}
		// Falha de infraestrutura (DB indisponível): propaga como 500.
		return "", err
	}

	// 3. Comparar Senhas
	// Senha incorreta retorna (false, nil); erro só ocorre com hash corrompido.
	match, err := s.Hasher.Verify(user.Hash, password)
	if err != nil {
		return "", apperror.NewInternalError("Falha ao verificar credenciais.", err)
	}
	if !match {
		return "", apperror.NewForbiddenError("Senha incorreta.")
	}

	// 4. Gerar JWT
	tokenString, err := s.TokenSvc.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Login realizado com sucesso.", map[string]interface{}{"user_id": user.ID})
	return tokenString, nil
}
