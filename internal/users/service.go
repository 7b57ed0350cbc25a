package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/promotion-manager/internal/policy"
	"github.com/angelmondragon/promotion-manager/internal/stats"
	"github.com/angelmondragon/promotion-manager/pkg/db"
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/angelmondragon/promotion-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/promotion-manager/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes account management to the HTTP layer.
type Service interface {
	List(ctx context.Context, actor *policy.Actor) ([]UserDTO, error)
	ListPromoters(ctx context.Context, actor *policy.Actor) ([]UserDTO, error)
	Get(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*UserDTO, error)
	Create(ctx context.Context, actor *policy.Actor, req CreateUserRequest) (*UserDTO, error)
	Update(ctx context.Context, actor *policy.Actor, id uuid.UUID, req UpdateUserRequest) (*UserDTO, error)
	Delete(ctx context.Context, actor *policy.Actor, id uuid.UUID) error
	Stats(ctx context.Context, actor *policy.Actor) (*RoleStats, error)
	Performance(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*stats.PromoterReport, error)
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, roles []enums.Role) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByRole(ctx context.Context) (map[enums.Role]int64, error)
	CountDependents(ctx context.Context, id uuid.UUID) (int64, error)
}

type recordReader interface {
	ListByPromoter(ctx context.Context, promoterID uuid.UUID) ([]models.MissionRecord, error)
	CampaignNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

type authorizer interface {
	Authorize(ctx context.Context, actor *policy.Actor, resource policy.Resource, action policy.Action, target any) error
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo    userRepository
	Records recordReader
	Hasher  passwordHasher
	Gate    authorizer
}

type service struct {
	repo    userRepository
	records recordReader
	hasher  passwordHasher
	gate    authorizer
}

// NewService constructs the users service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Records == nil {
		return nil, fmt.Errorf("record reader is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.Gate == nil {
		return nil, fmt.Errorf("policy gate is required")
	}
	return &service{repo: params.Repo, records: params.Records, hasher: params.Hasher, gate: params.Gate}, nil
}

func (s *service) List(ctx context.Context, actor *policy.Actor) ([]UserDTO, error) {
	if err := s.gate.Authorize(ctx, actor, policy.ResourceUser, policy.ActionList, nil); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, policy.UserListScope(actor).Roles)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return fromModels(rows), nil
}

func (s *service) ListPromoters(ctx context.Context, actor *policy.Actor) ([]UserDTO, error) {
	if err := s.gate.Authorize(ctx, actor, policy.ResourceUser, policy.ActionList, nil); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, []enums.Role{enums.RolePromoter})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promoters")
	}
	return fromModels(rows), nil
}

func (s *service) Get(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*UserDTO, error) {
	if actor == nil {
		return nil, s.gate.Authorize(ctx, nil, policy.ResourceUser, policy.ActionRead, nil)
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, actor, policy.ResourceUser, policy.ActionRead, user); err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Create(ctx context.Context, actor *policy.Actor, req CreateUserRequest) (*UserDTO, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	role := enums.RolePromoter
	if strings.TrimSpace(req.Role) != "" {
		if role, err = enums.ParseRole(req.Role); err != nil {
			return nil, err
		}
	}
	if err := s.gate.Authorize(ctx, actor, policy.ResourceUser, policy.ActionCreate, policy.UserChange{Role: &role}); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	user := &models.User{
		Username:     username,
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, mapWriteError(err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, actor *policy.Actor, id uuid.UUID, req UpdateUserRequest) (*UserDTO, error) {
	var (
		username *string
		role     *enums.Role
	)
	if req.Username != nil {
		name, err := normalizeUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		username = &name
	}
	if req.Role != nil {
		parsed, err := enums.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		role = &parsed
	}
	if req.Password != nil && *req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password cannot be empty")
	}
	if actor == nil {
		return nil, s.gate.Authorize(ctx, nil, policy.ResourceUser, policy.ActionUpdate, nil)
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, actor, policy.ResourceUser, policy.ActionUpdate, policy.UserChange{Target: user, Role: role}); err != nil {
		return nil, err
	}

	if username != nil {
		user.Username = *username
	}
	if req.Email != nil {
		user.Email = normalizeEmail(req.Email)
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		user.PasswordHash = hash
	}
	if role != nil {
		user.Role = *role
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, mapWriteError(err, "update user")
	}
	return FromModel(user), nil
}

func (s *service) Delete(ctx context.Context, actor *policy.Actor, id uuid.UUID) error {
	if actor == nil {
		return s.gate.Authorize(ctx, nil, policy.ResourceUser, policy.ActionDelete, nil)
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.Authorize(ctx, actor, policy.ResourceUser, policy.ActionDelete, user); err != nil {
		return err
	}

	dependents, err := s.repo.CountDependents(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count user dependents")
	}
	if dependents > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "user still owns campaigns or mission records").
			WithDetails(map[string]int64{"dependents": dependents})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.NotFound("user")
		}
		return mapWriteError(err, "delete user")
	}
	return nil
}

func (s *service) Stats(ctx context.Context, actor *policy.Actor) (*RoleStats, error) {
	if err := s.gate.Authorize(ctx, actor, policy.ResourceUser, policy.ActionViewStats, nil); err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByRole(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	out := &RoleStats{
		TotalPromoters:           counts[enums.RolePromoter],
		TotalSupervisors:         counts[enums.RoleSupervisor],
		TotalAdministrators:      counts[enums.RoleAdministrator],
		TotalSuperAdministrators: counts[enums.RoleSuperAdministrator],
	}
	for _, n := range counts {
		out.TotalUsers += n
	}
	return out, nil
}

func (s *service) Performance(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*stats.PromoterReport, error) {
	if actor == nil {
		return nil, s.gate.Authorize(ctx, nil, policy.ResourceUser, policy.ActionRead, nil)
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, actor, policy.ResourceUser, policy.ActionRead, user); err != nil {
		return nil, err
	}

	records, err := s.records.ListByPromoter(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promoter records")
	}
	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.CampaignID)
	}
	names, err := s.records.CampaignNames(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign names")
	}

	report := stats.BuildPromoterReport(id, records, names)
	return &report, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func normalizeUsername(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	return name, nil
}

func normalizeEmail(raw *string) *string {
	if raw == nil {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(*raw))
	if email == "" {
		return nil
	}
	return &email
}

func mapWriteError(err error, action string) error {
	switch {
	case db.IsUniqueViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username already taken")
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user still referenced by other records")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}
