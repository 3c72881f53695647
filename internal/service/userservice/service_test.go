package userservice_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gopoint/internal/domain"
	apperror "gopoint/internal/errors"
	"gopoint/internal/pkg/hasher"
	"gopoint/internal/pkg/logger"
	"gopoint/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface domain.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.User), args.Error(1)
}

var testHasher = hasher.NewArgon2Hasher(hasher.Params{Time: 1, MemoryKB: 16 * 1024, Threads: 1})

func storedUser() domain.User {
	return domain.User{
		ID:        "user-1",
		FullName:  "Khan",
		Email:     "khan@gmail.com",
		Hash:      "$argon2id$v=19$m=16384,t=1,p=1$c2FsdA$aGFzaA",
		Role:      domain.RoleCustomer,
		BirthDate: time.Date(2000, 5, 7, 0, 0, 0, 0, time.UTC),
		Gender:    domain.GenderMale,
	}
}

// TestGetProfile_ExcludesSecrets verifica que a projeção de leitura nunca
// serializa hash nem papel, nem como campos vazios.
func TestGetProfile_ExcludesSecrets(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := userservice.NewService(mockRepo, testHasher, logger.NewLogger("error"))

	mockRepo.On("FindByID", mock.Anything, "user-1").Return(storedUser(), nil)

	profile, err := svc.GetProfile(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Equal(t, "khan@gmail.com", profile.Email)

	body, err := json.Marshal(profile)
	assert.NoError(t, err)
	assert.NotContains(t, string(body), "hash")
	assert.NotContains(t, string(body), "role")
	mockRepo.AssertExpectations(t)
}

// TestEditUser_RehashesPassword verifica que a senha nova desce ao
// repositório apenas como hash Argon2id.
func TestEditUser_RehashesPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := userservice.NewService(mockRepo, testHasher, logger.NewLogger("error"))

	var captured domain.UserUpdate
	mockRepo.On("Update", mock.Anything, "user-1", mock.AnythingOfType("domain.UserUpdate")).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(domain.UserUpdate)
		}).
		Return(storedUser(), nil)

	password := "nova-senha"
	_, err := svc.EditUser(context.Background(), "user-1", userservice.UserEdit{Password: &password})

	assert.NoError(t, err)
	assert.NotNil(t, captured.Hash)
	assert.True(t, strings.HasPrefix(*captured.Hash, "$argon2id$"))
	assert.NotEqual(t, password, *captured.Hash)

	match, err := testHasher.Verify(*captured.Hash, password)
	assert.NoError(t, err)
	assert.True(t, match)
	mockRepo.AssertExpectations(t)
}

// TestEditUser_EmptyEdit verifica que um corpo vazio é um no-op válido:
// todos os ponteiros nil chegam ao repositório e nada é alterado.
func TestEditUser_EmptyEdit(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := userservice.NewService(mockRepo, testHasher, logger.NewLogger("error"))

	mockRepo.On("Update", mock.Anything, "user-1", domain.UserUpdate{}).
		Return(storedUser(), nil)

	profile, err := svc.EditUser(context.Background(), "user-1", userservice.UserEdit{})

	assert.NoError(t, err)
	assert.Equal(t, "Khan", profile.FullName)
	mockRepo.AssertExpectations(t)
}

// TestEditUser_EmptyPassword verifica a rejeição de senha explícita vazia.
func TestEditUser_EmptyPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := userservice.NewService(mockRepo, testHasher, logger.NewLogger("error"))

	empty := ""
	_, err := svc.EditUser(context.Background(), "user-1", userservice.UserEdit{Password: &empty})

	var validationErr *apperror.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// TestEditUser_EmailConflict verifica que e-mail já usado por outro cadastro
// vira o mesmo 403 do registro.
func TestEditUser_EmailConflict(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := userservice.NewService(mockRepo, testHasher, logger.NewLogger("error"))

	mockRepo.On("Update", mock.Anything, "user-1", mock.AnythingOfType("domain.UserUpdate")).
		Return(domain.User{}, apperror.NewConflictError("e-mail já cadastrado"))

	email := "outro@gmail.com"
	_, err := svc.EditUser(context.Background(), "user-1", userservice.UserEdit{Email: &email})

	var forbidden *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
	assert.Equal(t, "Credenciais já utilizadas.", forbidden.Msg)
	mockRepo.AssertExpectations(t)
}
