package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/promotion-manager/internal/policy"
	"github.com/angelmondragon/promotion-manager/internal/users"
	"github.com/angelmondragon/promotion-manager/pkg/config"
	"github.com/angelmondragon/promotion-manager/pkg/db"
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/angelmondragon/promotion-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/promotion-manager/pkg/errors"
	"gorm.io/gorm"
)

// RegisterRequest is the account sign-up payload. Role defaults to promoter.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,max=80"`
	Password string  `json:"password" validate:"required,min=6"`
	Email    *string `json:"email,omitempty" validate:"omitempty,eq=|email"`
	Role     string  `json:"role,omitempty"`
}

// RegisterService handles account creation through the public endpoint and
// the startup bootstrap.
type RegisterService interface {
	Register(ctx context.Context, actor *policy.Actor, req RegisterRequest) (*users.UserDTO, error)
	Bootstrap(ctx context.Context, cfg config.BootstrapConfig) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

type authorizer interface {
	Authorize(ctx context.Context, actor *policy.Actor, resource policy.Resource, action policy.Action, target any) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner        txRunner
	UserRepoFactory func(tx *gorm.DB) registerUserRepository
	Hasher          passwordHasher
	Gate            authorizer
}

type registerService struct {
	tx       txRunner
	userRepo func(tx *gorm.DB) registerUserRepository
	hasher   passwordHasher
	gate     authorizer
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.Gate == nil {
		return nil, fmt.Errorf("policy gate is required")
	}
	factory := params.UserRepoFactory
	if factory == nil {
		factory = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	return &registerService{
		tx:       params.TxRunner,
		userRepo: factory,
		hasher:   params.Hasher,
		gate:     params.Gate,
	}, nil
}

// NewRegisterServiceFromClient wires the registration flow on a database client.
func NewRegisterServiceFromClient(client *db.Client, hasher passwordHasher, gate authorizer) (RegisterService, error) {
	if client == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return NewRegisterService(RegisterServiceParams{TxRunner: client, Hasher: hasher, Gate: gate})
}

func (s *registerService) Register(ctx context.Context, actor *policy.Actor, req RegisterRequest) (*users.UserDTO, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	role := enums.RolePromoter
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := enums.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}
	// anyone may sign up as a promoter; other roles need a caller allowed to grant them
	if role != enums.RolePromoter {
		if err := s.gate.Authorize(ctx, actor, policy.ResourceUser, policy.ActionCreate, policy.UserChange{Role: &role}); err != nil {
			return nil, err
		}
	}

	var email *string
	if req.Email != nil {
		if v := strings.ToLower(strings.TrimSpace(*req.Email)); v != "" {
			email = &v
		}
	}

	user, err := s.create(ctx, username, req.Password, email, role)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

func (s *registerService) Bootstrap(ctx context.Context, cfg config.BootstrapConfig) (bool, error) {
	if !cfg.Enabled() {
		return false, nil
	}
	var email *string
	if v := strings.ToLower(strings.TrimSpace(cfg.Email)); v != "" {
		email = &v
	}
	_, err := s.create(ctx, strings.TrimSpace(cfg.Username), cfg.Password, email, enums.RoleSuperAdministrator)
	if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *registerService) create(ctx context.Context, username, password string, email *string, role enums.Role) (*models.User, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.userRepo(tx)
		if _, err := repo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
		}

		if err := repo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
