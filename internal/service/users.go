package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/repository"
	"github.com/iliyamo/media-backlog/internal/utils"
)

const minPasswordLen = 8

// UsersService implements user registration and profile management.
type UsersService struct {
	users      repository.UserStore
	bcryptCost int
	log        *zap.Logger
}

func NewUsersService(users repository.UserStore, bcryptCost int, log *zap.Logger) *UsersService {
	return &UsersService{users: users, bcryptCost: bcryptCost, log: log.Named("users")}
}

// CreateUserParams carries the registration input.
type CreateUserParams struct {
	Name     string
	Email    string
	Password string
	Roles    []string
}

// UpdateUserParams carries a partial profile update. Nil pointers leave
// the stored value untouched. Changing the password requires the
// current one.
type UpdateUserParams struct {
	Name        *string
	Email       *string
	Password    string // current password, required with NewPassword
	NewPassword string
}

// Create registers a user. The email must be unused, the password at
// least eight characters. The returned user never carries the hash.
func (s *UsersService) Create(ctx context.Context, p CreateUserParams) (model.User, error) {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Email) == "" {
		return model.User{}, fmt.Errorf("%w: name and email required", ErrInvalidArgument)
	}
	if len(p.Password) < minPasswordLen {
		return model.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidArgument, minPasswordLen)
	}
	hash, err := utils.HashPassword(p.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	roles := p.Roles
	if len(roles) == 0 {
		roles = []string{model.RoleUser}
	}
	u, err := s.users.Create(ctx, model.User{
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: hash,
		Roles:        roles,
	})
	if err != nil {
		return model.User{}, err
	}
	s.log.Info("user created", zap.String("user_id", u.ID))
	return u.Sanitized(), nil
}

func (s *UsersService) Get(ctx context.Context, id string) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	return u.Sanitized(), nil
}

func (s *UsersService) List(ctx context.Context, q repository.ListQuery, search string) (repository.Page[model.User], error) {
	page, err := s.users.List(ctx, q, search)
	if err != nil {
		return repository.Page[model.User]{}, err
	}
	for i := range page.Data {
		page.Data[i] = page.Data[i].Sanitized()
	}
	return page, nil
}

// Update applies a partial profile update. If NewPassword is set, the
// current password must be supplied and match, and the new one must
// differ from the old and satisfy the length rule.
func (s *UsersService) Update(ctx context.Context, id string, p UpdateUserParams) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.NewPassword != "" {
		if p.Password == "" {
			return model.User{}, fmt.Errorf("%w: current password required to set a new one", ErrInvalidArgument)
		}
		if !utils.VerifyPassword(u.PasswordHash, p.Password) {
			return model.User{}, fmt.Errorf("%w: current password does not match", ErrInvalidArgument)
		}
		if p.NewPassword == p.Password {
			return model.User{}, fmt.Errorf("%w: new password must differ from the current one", ErrInvalidArgument)
		}
		if len(p.NewPassword) < minPasswordLen {
			return model.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidArgument, minPasswordLen)
		}
		hash, err := utils.HashPassword(p.NewPassword, s.bcryptCost)
		if err != nil {
			return model.User{}, err
		}
		u.PasswordHash = hash
	}
	u, err = s.users.Update(ctx, u)
	if err != nil {
		return model.User{}, err
	}
	s.log.Info("user updated", zap.String("user_id", u.ID))
	return u.Sanitized(), nil
}

// Delete removes the user; the store cascades sessions, items and
// backlog entries.
func (s *UsersService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.String("user_id", id))
	return nil
}
