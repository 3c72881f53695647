package userservice

import (
	"context"
	"errors"
	"time"

	"gopoint/internal/domain"
	apperror "gopoint/internal/errors"
	"gopoint/internal/pkg/hasher"
	"gopoint/internal/pkg/logger"
)

// UserEdit representa a atualização parcial do perfil recebida da API.
// Todos os campos são opcionais; a senha, se presente, é re-hasheada aqui —
// texto puro nunca desce até o repositório.
type UserEdit struct {
	FullName  *string    `json:"full_name,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Password  *string    `json:"password,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}

// Service implementa a lógica de negócio do perfil do usuário.
type Service struct {
	UserRepo domain.UserRepository
	Hasher   hasher.Hasher
	logger   logger.Logger
}

// NewService cria uma nova instância do serviço de usuário.
func NewService(repo domain.UserRepository, h hasher.Hasher, log logger.Logger) *Service {
	return &Service{
		UserRepo: repo,
		Hasher:   h,
		logger:   log,
	}
}

// GetProfile retorna a projeção pública do usuário autenticado.
// A projeção exclui estruturalmente o hash e o papel.
func (s *Service) GetProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return user.Profile(), nil
}

// EditUser aplica uma atualização parcial no perfil do usuário autenticado.
// Um corpo vazio é um no-op válido: nenhum campo muda. Conflito de e-mail
// com outro cadastro é exposto como o mesmo 403 do registro.
func (s *Service) EditUser(ctx context.Context, userID string, edit UserEdit) (domain.UserProfile, error) {
	update := domain.UserUpdate{
		FullName:  edit.FullName,
		Email:     edit.Email,
		BirthDate: edit.BirthDate,
	}

	// Senha nova chega em texto puro e sai daqui como hash.
	if edit.Password != nil {
		if *edit.Password == "" {
			return domain.UserProfile{}, apperror.NewValidationError("Senha não pode ser vazia.")
		}
		hash, err := s.Hasher.Hash(*edit.Password)
		if err != nil {
			return domain.UserProfile{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
		}
		update.Hash = &hash
	}

	user, err := s.UserRepo.Update(ctx, userID, update)
	if err != nil {
		var conflict *apperror.ConflictError
		if errors.As(err, &conflict) {
			return domain.UserProfile{}, apperror.NewForbiddenError("Credenciais já utilizadas.")
		}
		return domain.UserProfile{}, err
	}

	s.logger.Info("Perfil de usuário atualizado.", map[string]interface{}{"user_id": userID})
	return user.Profile(), nil
}
