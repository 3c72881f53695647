package domain

import (
	"context"
	"time"
)

// User representa a entidade do usuário no sistema.
type User struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Hash       string    `json:"-"` // Oculta o hash da senha no JSON de resposta
	Role       UserRole  `json:"role"`
	BirthDate  time.Time `json:"birth_date"`
	Gender     Gender    `json:"gender"`
	TotalPoint int       `json:"total_point"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
// O papel é apenas armazenado; nenhuma política de autorização é derivada dele.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// Gender é um tipo string para o campo de gênero do cadastro.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Password   string    `json:"password"`
	BirthDate  time.Time `json:"birth_date"`
	Gender     Gender    `json:"gender"`
	Role       UserRole  `json:"role"`
	TotalPoint int       `json:"total_point"`
}

// UserUpdate representa uma atualização parcial do usuário.
// Campos nil são preservados como estão no banco (semântica de PATCH).
// O Hash já chega calculado pelo serviço; senha em texto puro nunca desce até o repositório.
type UserUpdate struct {
	FullName  *string
	Email     *string
	Hash      *string
	BirthDate *time.Time
}

// UserProfile é a projeção de leitura do usuário exposta pela API.
// Exclui estruturalmente o hash e o papel, em vez de apagá-los depois.
type UserProfile struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	BirthDate  time.Time `json:"birth_date"`
	Gender     Gender    `json:"gender"`
	TotalPoint int       `json:"total_point"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Profile converte a entidade para a projeção pública.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		BirthDate:  u.BirthDate,
		Gender:     u.Gender,
		TotalPoint: u.TotalPoint,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UserRepository define o contrato de persistência para a entidade User.
type UserRepository interface {
	Save(ctx context.Context, user User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	Update(ctx context.Context, id string, update UserUpdate) (User, error)
}
