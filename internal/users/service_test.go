package users

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/promotion-manager/internal/policy"
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/angelmondragon/promotion-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/promotion-manager/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users      map[uuid.UUID]*models.User
	listRoles  []enums.Role
	listErr    error
	findErr    error
	saveErr    error
	created    *models.User
	saved      *models.User
	deleted    uuid.UUID
	counts     map[enums.Role]int64
	dependents int64
}

func newStubUserRepo(users ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{users: map[uuid.UUID]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	user.ID = uuid.New()
	s.created = user
	return nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *stubUserRepo) List(_ context.Context, roles []enums.Role) ([]models.User, error) {
	s.listRoles = roles
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubUserRepo) Save(_ context.Context, user *models.User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = user
	return nil
}

func (s *stubUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = id
	return nil
}

func (s *stubUserRepo) CountByRole(context.Context) (map[enums.Role]int64, error) {
	return s.counts, nil
}

func (s *stubUserRepo) CountDependents(context.Context, uuid.UUID) (int64, error) {
	return s.dependents, nil
}

type stubRecords struct {
	records []models.MissionRecord
	names   map[uuid.UUID]string
}

func (s stubRecords) ListByPromoter(context.Context, uuid.UUID) ([]models.MissionRecord, error) {
	return s.records, nil
}

func (s stubRecords) CampaignNames(context.Context, []uuid.UUID) (map[uuid.UUID]string, error) {
	return s.names, nil
}

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func newTestService(t *testing.T, repo *stubUserRepo, records stubRecords) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Records: records,
		Hasher:  stubHasher{},
		Gate:    policy.NewGate(nil, nil),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func userWithRole(role enums.Role) *models.User {
	return &models.User{ID: uuid.New(), Username: string(role) + "-user", Role: role}
}

func actorFor(u *models.User) *policy.Actor {
	return &policy.Actor{ID: u.ID, Role: u.Role}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if !pkgerrors.IsCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func ptr[T any](v T) *T { return &v }

func TestNewServiceRequiresDependencies(t *testing.T) {
	cases := map[string]ServiceParams{
		"repo":    {Records: stubRecords{}, Hasher: stubHasher{}, Gate: policy.NewGate(nil, nil)},
		"records": {Repo: newStubUserRepo(), Hasher: stubHasher{}, Gate: policy.NewGate(nil, nil)},
		"hasher":  {Repo: newStubUserRepo(), Records: stubRecords{}, Gate: policy.NewGate(nil, nil)},
		"gate":    {Repo: newStubUserRepo(), Records: stubRecords{}, Hasher: stubHasher{}},
	}
	for name, params := range cases {
		if _, err := NewService(params); err == nil {
			t.Fatalf("expected error without %s", name)
		}
	}
}

func TestListScopesSupervisorToPromoters(t *testing.T) {
	supervisor := userWithRole(enums.RoleSupervisor)
	repo := newStubUserRepo(supervisor)
	svc := newTestService(t, repo, stubRecords{})

	if _, err := svc.List(context.Background(), actorFor(supervisor)); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(repo.listRoles) != 1 || repo.listRoles[0] != enums.RolePromoter {
		t.Fatalf("expected promoter scope, got %v", repo.listRoles)
	}

	admin := userWithRole(enums.RoleAdministrator)
	if _, err := svc.List(context.Background(), actorFor(admin)); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.listRoles != nil {
		t.Fatalf("expected unscoped listing for administrators, got %v", repo.listRoles)
	}
}

func TestListDeniedForPromoter(t *testing.T) {
	promoter := userWithRole(enums.RolePromoter)
	svc := newTestService(t, newStubUserRepo(promoter), stubRecords{})

	_, err := svc.List(context.Background(), actorFor(promoter))
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestListDependencyError(t *testing.T) {
	admin := userWithRole(enums.RoleAdministrator)
	repo := newStubUserRepo(admin)
	repo.listErr = errors.New("boom")
	svc := newTestService(t, repo, stubRecords{})

	_, err := svc.List(context.Background(), actorFor(admin))
	assertCode(t, err, pkgerrors.CodeDependency)
}

func TestGetSelfAndOthers(t *testing.T) {
	promoter := userWithRole(enums.RolePromoter)
	other := userWithRole(enums.RolePromoter)
	svc := newTestService(t, newStubUserRepo(promoter, other), stubRecords{})

	dto, err := svc.Get(context.Background(), actorFor(promoter), promoter.ID)
	if err != nil {
		t.Fatalf("get self: %v", err)
	}
	if dto.ID != promoter.ID {
		t.Fatalf("expected %s got %s", promoter.ID, dto.ID)
	}

	_, err = svc.Get(context.Background(), actorFor(promoter), other.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)

	_, err = svc.Get(context.Background(), actorFor(promoter), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateDefaultsToPromoterAndHashes(t *testing.T) {
	admin := userWithRole(enums.RoleAdministrator)
	repo := newStubUserRepo(admin)
	svc := newTestService(t, repo, stubRecords{})

	dto, err := svc.Create(context.Background(), actorFor(admin), CreateUserRequest{
		Username: "  alice ",
		Password: "secret1",
		Email:    ptr(" Alice@Example.com "),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Role != enums.RolePromoter {
		t.Fatalf("expected promoter role, got %s", dto.Role)
	}
	if repo.created.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", repo.created.Username)
	}
	if repo.created.PasswordHash != "hashed:secret1" {
		t.Fatalf("expected hashed password, got %q", repo.created.PasswordHash)
	}
	if repo.created.Email == nil || *repo.created.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %v", repo.created.Email)
	}
}

func TestCreateSuperAdministratorRequiresSuperAdministrator(t *testing.T) {
	admin := userWithRole(enums.RoleAdministrator)
	root := userWithRole(enums.RoleSuperAdministrator)
	svc := newTestService(t, newStubUserRepo(admin, root), stubRecords{})
	req := CreateUserRequest{Username: "boss", Password: "secret1", Role: "super_administrator"}

	_, err := svc.Create(context.Background(), actorFor(admin), req)
	assertCode(t, err, pkgerrors.CodeForbidden)

	dto, err := svc.Create(context.Background(), actorFor(root), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Role != enums.RoleSuperAdministrator {
		t.Fatalf("expected super administrator, got %s", dto.Role)
	}
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	admin := userWithRole(enums.RoleAdministrator)
	svc := newTestService(t, newStubUserRepo(admin), stubRecords{})

	_, err := svc.Create(context.Background(), actorFor(admin), CreateUserRequest{Username: "x", Password: "secret1", Role: "emperor"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateDuplicateUsernameConflict(t *testing.T) {
	admin := userWithRole(enums.RoleAdministrator)
	repo := newStubUserRepo(admin)
	repo.saveErr = gorm.ErrDuplicatedKey
	svc := newTestService(t, repo, stubRecords{})

	_, err := svc.Create(context.Background(), actorFor(admin), CreateUserRequest{Username: "dup", Password: "secret1"})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestUpdateSelfCannotChangeRole(t *testing.T) {
	promoter := userWithRole(enums.RolePromoter)
	repo := newStubUserRepo(promoter)
	svc := newTestService(t, repo, stubRecords{})

	_, err := svc.Update(context.Background(), actorFor(promoter), promoter.ID, UpdateUserRequest{Role: ptr("administrator")})
	assertCode(t, err, pkgerrors.CodeForbidden)
	if repo.saved != nil {
		t.Fatal("expected no save on denied update")
	}

	dto, err := svc.Update(context.Background(), actorFor(promoter), promoter.ID, UpdateUserRequest{Username: ptr("renamed"), Password: ptr("another")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Username != "renamed" {
		t.Fatalf("expected renamed, got %s", dto.Username)
	}
	if repo.saved.PasswordHash != "hashed:another" {
		t.Fatalf("expected rehashed password, got %q", repo.saved.PasswordHash)
	}
}

func TestUpdateEmptyEmailClears(t *testing.T) {
	promoter := userWithRole(enums.RolePromoter)
	promoter.Email = ptr("old@example.com")
	repo := newStubUserRepo(promoter)
	svc := newTestService(t, repo, stubRecords{})

	if _, err := svc.Update(context.Background(), actorFor(promoter), promoter.ID, UpdateUserRequest{Email: ptr("")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.saved.Email != nil {
		t.Fatalf("expected cleared email, got %v", *repo.saved.Email)
	}
}

func TestUpdateRoleChanges(t *testing.T) {
	admin := userWithRole(enums.RoleAdministrator)
	root := userWithRole(enums.RoleSuperAdministrator)
	promoter := userWithRole(enums.RolePromoter)
	svc := newTestService(t, newStubUserRepo(admin, root, promoter), stubRecords{})

	dto, err := svc.Update(context.Background(), actorFor(admin), promoter.ID, UpdateUserRequest{Role: ptr("supervisor")})
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if dto.Role != enums.RoleSupervisor {
		t.Fatalf("expected supervisor, got %s", dto.Role)
	}

	_, err = svc.Update(context.Background(), actorFor(admin), root.ID, UpdateUserRequest{Role: ptr("promoter")})
	assertCode(t, err, pkgerrors.CodeForbidden)

	_, err = svc.Update(context.Background(), actorFor(admin), promoter.ID, UpdateUserRequest{Role: ptr("super_administrator")})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestUpdateRejectsEmptyPassword(t *testing.T) {
	promoter := userWithRole(enums.RolePromoter)
	svc := newTestService(t, newStubUserRepo(promoter), stubRecords{})

	_, err := svc.Update(context.Background(), actorFor(promoter), promoter.ID, UpdateUserRequest{Password: ptr("")})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestDeleteRules(t *testing.T) {
	admin := userWithRole(enums.RoleAdministrator)
	promoter := userWithRole(enums.RolePromoter)
	repo := newStubUserRepo(admin, promoter)
	svc := newTestService(t, repo, stubRecords{})

	err := svc.Delete(context.Background(), actorFor(admin), admin.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)

	repo.dependents = 2
	err = svc.Delete(context.Background(), actorFor(admin), promoter.ID)
	assertCode(t, err, pkgerrors.CodeConflict)

	repo.dependents = 0
	if err := svc.Delete(context.Background(), actorFor(admin), promoter.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if repo.deleted != promoter.ID {
		t.Fatalf("expected %s deleted, got %s", promoter.ID, repo.deleted)
	}
}

func TestStatsTotals(t *testing.T) {
	supervisor := userWithRole(enums.RoleSupervisor)
	repo := newStubUserRepo(supervisor)
	repo.counts = map[enums.Role]int64{
		enums.RolePromoter:           5,
		enums.RoleSupervisor:         2,
		enums.RoleAdministrator:      1,
		enums.RoleSuperAdministrator: 1,
	}
	svc := newTestService(t, repo, stubRecords{})

	out, err := svc.Stats(context.Background(), actorFor(supervisor))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if out.TotalUsers != 9 || out.TotalPromoters != 5 || out.TotalSupervisors != 2 {
		t.Fatalf("unexpected stats %+v", out)
	}

	_, err = svc.Stats(context.Background(), actorFor(userWithRole(enums.RolePromoter)))
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestPerformanceAggregatesOwnRecords(t *testing.T) {
	promoter := userWithRole(enums.RolePromoter)
	other := userWithRole(enums.RolePromoter)
	campaignID := uuid.New()
	records := stubRecords{
		records: []models.MissionRecord{
			{CampaignID: campaignID, ProductsSold: 8, InitialStock: 10, PeopleApproached: 10, PeoplePurchased: 8},
			{CampaignID: campaignID, ProductsSold: 12, InitialStock: 20, PeopleApproached: 20, PeoplePurchased: 12},
		},
		names: map[uuid.UUID]string{campaignID: "Spring"},
	}
	svc := newTestService(t, newStubUserRepo(promoter, other), records)

	report, err := svc.Performance(context.Background(), actorFor(promoter), promoter.ID)
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if report.Overall.Sales != 20 || report.Overall.ConversionRate != 66.67 {
		t.Fatalf("unexpected overall %+v", report.Overall)
	}
	if len(report.Campaigns) != 1 || report.Campaigns[0].CampaignName != "Spring" {
		t.Fatalf("unexpected breakdown %+v", report.Campaigns)
	}

	_, err = svc.Performance(context.Background(), actorFor(promoter), other.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)
}
