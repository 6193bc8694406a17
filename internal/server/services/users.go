package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/schooladmin/internal/common"
	"github.com/dmitrijs2005/schooladmin/internal/logging"
	"github.com/dmitrijs2005/schooladmin/internal/models"
	"github.com/dmitrijs2005/schooladmin/internal/server/repositories"
)

// UserService manages accounts. Passwords are stored as bcrypt hashes and
// never leave the service: every returned Usuario has an empty Senha.
type UserService struct {
	repo repositories.UserRepository
	log  logging.Logger
	cost int
}

func NewUserService(repo repositories.UserRepository, log logging.Logger) *UserService {
	return &UserService{repo: repo, log: log, cost: bcrypt.DefaultCost}
}

func strip(u models.Usuario) models.Usuario {
	u.Senha = ""
	return u
}

func (s *UserService) hash(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *UserService) List(ctx context.Context) ([]models.Usuario, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = strip(users[i])
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (models.Usuario, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Usuario{}, err
	}
	return strip(u), nil
}

// Create requires a password.
func (s *UserService) Create(ctx context.Context, u models.Usuario) (models.Usuario, error) {
	if err := validate(u); err != nil {
		return models.Usuario{}, err
	}
	if u.Senha == "" {
		return models.Usuario{}, fmt.Errorf("%w: %w", ErrValidation,
			&models.InvalidError{Fields: []models.FieldError{{Field: "senha", Rule: "required"}}})
	}

	h, err := s.hash(u.Senha)
	if err != nil {
		return models.Usuario{}, err
	}
	u.Senha = h

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return models.Usuario{}, err
	}
	s.log.Info(ctx, "account created", "id", created.ID, "usuario", created.Usuario)
	return strip(created), nil
}

// Update keeps the stored password when Senha is empty.
func (s *UserService) Update(ctx context.Context, u models.Usuario) (models.Usuario, error) {
	if err := validate(u); err != nil {
		return models.Usuario{}, err
	}

	if u.Senha == "" {
		current, err := s.repo.Get(ctx, u.ID)
		if err != nil {
			return models.Usuario{}, err
		}
		u.Senha = current.Senha
	} else {
		h, err := s.hash(u.Senha)
		if err != nil {
			return models.Usuario{}, err
		}
		u.Senha = h
	}

	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return models.Usuario{}, err
	}
	return strip(updated), nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Authenticate checks a login against the stored hash. Unknown, inactive
// and wrong-password accounts all yield common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, username, secret string) (models.Usuario, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.Usuario{}, common.ErrorUnauthorized
		}
		return models.Usuario{}, err
	}
	if u.Ativo != 1 {
		return models.Usuario{}, common.ErrorUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Senha), []byte(secret)); err != nil {
		return models.Usuario{}, common.ErrorUnauthorized
	}
	return strip(u), nil
}

// EnsureUser creates an active account unless one with that name exists.
// It is used to seed the first administrator.
func (s *UserService) EnsureUser(ctx context.Context, username, secret string) error {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	_, err = s.Create(ctx, models.Usuario{Usuario: username, Senha: secret, Ativo: 1})
	if err != nil {
		return fmt.Errorf("seed user %q: %w", username, err)
	}
	return nil
}
