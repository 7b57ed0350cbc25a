package missions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/promotion-manager/internal/policy"
	"github.com/angelmondragon/promotion-manager/pkg/db"
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	pkgerrors "github.com/angelmondragon/promotion-manager/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service exposes mission record management.
type Service interface {
	List(ctx context.Context, actor *policy.Actor) ([]MissionDTO, error)
	ListByCampaign(ctx context.Context, actor *policy.Actor, campaignID uuid.UUID) ([]MissionDTO, error)
	Get(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*MissionDTO, error)
	Create(ctx context.Context, actor *policy.Actor, req CreateMissionRequest) (*MissionDTO, error)
	Update(ctx context.Context, actor *policy.Actor, id uuid.UUID, req UpdateMissionRequest) (*MissionDTO, error)
	Delete(ctx context.Context, actor *policy.Actor, id uuid.UUID) error
}

type missionRepository interface {
	List(ctx context.Context, authorID *uuid.UUID) ([]models.MissionRecord, error)
	ListByCampaign(ctx context.Context, campaignID uuid.UUID, authorID *uuid.UUID) ([]models.MissionRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.MissionRecord, error)
	Create(ctx context.Context, record *models.MissionRecord) error
	Save(ctx context.Context, record *models.MissionRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type campaignFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
}

type authorizer interface {
	Authorize(ctx context.Context, actor *policy.Actor, resource policy.Resource, action policy.Action, target any) error
}

type service struct {
	repo      missionRepository
	campaigns campaignFinder
	gate      authorizer
}

// NewService constructs the missions service.
func NewService(repo missionRepository, campaigns campaignFinder, gate authorizer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("mission repository is required")
	}
	if campaigns == nil {
		return nil, fmt.Errorf("campaign finder is required")
	}
	if gate == nil {
		return nil, fmt.Errorf("policy gate is required")
	}
	return &service{repo: repo, campaigns: campaigns, gate: gate}, nil
}

func (s *service) List(ctx context.Context, actor *policy.Actor) ([]MissionDTO, error) {
	if err := s.gate.Authorize(ctx, actor, policy.ResourceMission, policy.ActionList, nil); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, policy.MissionListScope(actor).AuthorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list mission records")
	}
	return fromModels(rows), nil
}

func (s *service) ListByCampaign(ctx context.Context, actor *policy.Actor, campaignID uuid.UUID) ([]MissionDTO, error) {
	if err := s.gate.Authorize(ctx, actor, policy.ResourceMission, policy.ActionList, nil); err != nil {
		return nil, err
	}
	if err := s.ensureCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByCampaign(ctx, campaignID, policy.MissionListScope(actor).AuthorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list campaign mission records")
	}
	return fromModels(rows), nil
}

func (s *service) Get(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*MissionDTO, error) {
	record, err := s.authorized(ctx, actor, id, policy.ActionRead)
	if err != nil {
		return nil, err
	}
	return FromModel(record), nil
}

func (s *service) Create(ctx context.Context, actor *policy.Actor, req CreateMissionRequest) (*MissionDTO, error) {
	if err := s.gate.Authorize(ctx, actor, policy.ResourceMission, policy.ActionCreate, nil); err != nil {
		return nil, err
	}

	authorID := actor.ID
	record := &models.MissionRecord{
		PromoterName:       strings.TrimSpace(req.PromoterName),
		PromoterContact:    optionalText(req.PromoterContact),
		StoreName:          strings.TrimSpace(req.StoreName),
		MissionDate:        req.MissionDate,
		ArrivalTime:        req.ArrivalTime.Ptr(),
		DepartureTime:      req.DepartureTime.Ptr(),
		InitialStock:       req.InitialStock,
		ProductsSold:       req.ProductsSold,
		RemainingStock:     req.RemainingStock,
		PeopleApproached:   req.PeopleApproached,
		PeoplePurchased:    req.PeoplePurchased,
		CustomerComments:   optionalText(req.CustomerComments),
		GadgetsDistributed: optionalText(req.GadgetsDistributed),
		PromoterID:         &authorID,
		CampaignID:         req.CampaignID,
	}
	if err := validateRecord(record); err != nil {
		return nil, err
	}
	if err := s.ensureCampaign(ctx, record.CampaignID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, mapWriteError(err, "create mission record")
	}
	return FromModel(record), nil
}

func (s *service) Update(ctx context.Context, actor *policy.Actor, id uuid.UUID, req UpdateMissionRequest) (*MissionDTO, error) {
	record, err := s.authorized(ctx, actor, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if req.PromoterName != nil {
		record.PromoterName = strings.TrimSpace(*req.PromoterName)
	}
	if req.PromoterContact != nil {
		record.PromoterContact = optionalText(req.PromoterContact)
	}
	if req.StoreName != nil {
		record.StoreName = strings.TrimSpace(*req.StoreName)
	}
	if req.MissionDate != nil {
		record.MissionDate = *req.MissionDate
	}
	if req.ArrivalTime.Valid {
		record.ArrivalTime = req.ArrivalTime.Value
	}
	if req.DepartureTime.Valid {
		record.DepartureTime = req.DepartureTime.Value
	}
	if req.InitialStock != nil {
		record.InitialStock = *req.InitialStock
	}
	if req.ProductsSold != nil {
		record.ProductsSold = *req.ProductsSold
	}
	if req.RemainingStock != nil {
		record.RemainingStock = *req.RemainingStock
	}
	if req.PeopleApproached != nil {
		record.PeopleApproached = *req.PeopleApproached
	}
	if req.PeoplePurchased != nil {
		record.PeoplePurchased = *req.PeoplePurchased
	}
	if req.CustomerComments != nil {
		record.CustomerComments = optionalText(req.CustomerComments)
	}
	if req.GadgetsDistributed != nil {
		record.GadgetsDistributed = optionalText(req.GadgetsDistributed)
	}
	if err := validateRecord(record); err != nil {
		return nil, err
	}
	if req.CampaignID != nil && *req.CampaignID != record.CampaignID {
		if err := s.ensureCampaign(ctx, *req.CampaignID); err != nil {
			return nil, err
		}
		record.CampaignID = *req.CampaignID
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, mapWriteError(err, "update mission record")
	}
	return FromModel(record), nil
}

func (s *service) Delete(ctx context.Context, actor *policy.Actor, id uuid.UUID) error {
	if _, err := s.authorized(ctx, actor, id, policy.ActionDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("mission record")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete mission record")
	}
	return nil
}

func (s *service) authorized(ctx context.Context, actor *policy.Actor, id uuid.UUID, action policy.Action) (*models.MissionRecord, error) {
	if actor == nil {
		return nil, s.gate.Authorize(ctx, nil, policy.ResourceMission, action, nil)
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("mission record")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load mission record")
	}
	if err := s.gate.Authorize(ctx, actor, policy.ResourceMission, action, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) ensureCampaign(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "campaign_id is required").
			WithDetails(map[string]string{"campaign_id": "required"})
	}
	if _, err := s.campaigns.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("campaign")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
	}
	return nil
}

func validateRecord(r *models.MissionRecord) error {
	var errs error
	fields := map[string]string{}
	required := func(field string, missing bool) {
		if missing {
			errs = multierr.Append(errs, fmt.Errorf("%s is required", field))
			fields[field] = "required"
		}
	}
	required("promoter_name", r.PromoterName == "")
	required("store_name", r.StoreName == "")
	required("mission_date", r.MissionDate.IsZero())

	counters := []struct {
		field string
		value int
	}{
		{"initial_stock", r.InitialStock},
		{"products_sold", r.ProductsSold},
		{"people_approached", r.PeopleApproached},
		{"people_purchased", r.PeoplePurchased},
	}
	for _, c := range counters {
		if c.value < 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s must not be negative", c.field))
			fields[c.field] = "must be >= 0"
		}
	}
	if errs == nil {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid mission record").WithDetails(fields)
}

func mapWriteError(err error, action string) error {
	if db.IsForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "campaign not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func optionalText(raw *string) *string {
	if raw == nil {
		return nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil
	}
	return &v
}
