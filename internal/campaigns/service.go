package campaigns

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/promotion-manager/internal/policy"
	"github.com/angelmondragon/promotion-manager/internal/stats"
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	pkgerrors "github.com/angelmondragon/promotion-manager/pkg/errors"
	"github.com/angelmondragon/promotion-manager/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service exposes campaign management and campaign-scope statistics.
type Service interface {
	List(ctx context.Context, actor *policy.Actor) ([]CampaignDTO, error)
	Get(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*CampaignDTO, error)
	Create(ctx context.Context, actor *policy.Actor, req CreateCampaignRequest) (*CampaignDTO, error)
	Update(ctx context.Context, actor *policy.Actor, id uuid.UUID, req UpdateCampaignRequest) (*CampaignDTO, error)
	Delete(ctx context.Context, actor *policy.Actor, id uuid.UUID) error
	Stats(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*CampaignStats, error)
}

type campaignRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Campaign, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	Create(ctx context.Context, campaign *models.Campaign) error
	Save(ctx context.Context, campaign *models.Campaign) error
	DeleteWithTx(tx *gorm.DB, id uuid.UUID) error
}

type recordLister interface {
	ListByCampaign(ctx context.Context, campaignID uuid.UUID, authorID *uuid.UUID) ([]models.MissionRecord, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type authorizer interface {
	Authorize(ctx context.Context, actor *policy.Actor, resource policy.Resource, action policy.Action, target any) error
}

// ServiceParams bundles the dependencies of the campaigns service. Now and
// Location default to time.Now and time.Local.
type ServiceParams struct {
	Repo     campaignRepository
	Records  recordLister
	Tx       txRunner
	Gate     authorizer
	Now      func() time.Time
	Location *time.Location
}

type service struct {
	repo    campaignRepository
	records recordLister
	tx      txRunner
	gate    authorizer
	now     func() time.Time
	loc     *time.Location
}

// NewService constructs the campaigns service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("campaign repository is required")
	}
	if params.Records == nil {
		return nil, fmt.Errorf("record lister is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Gate == nil {
		return nil, fmt.Errorf("policy gate is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	loc := params.Location
	if loc == nil {
		loc = time.Local
	}
	return &service{
		repo:    params.Repo,
		records: params.Records,
		tx:      params.Tx,
		gate:    params.Gate,
		now:     now,
		loc:     loc,
	}, nil
}

func (s *service) today() types.Date {
	return types.DateOf(s.now().In(s.loc))
}

func (s *service) List(ctx context.Context, actor *policy.Actor) ([]CampaignDTO, error) {
	if err := s.gate.Authorize(ctx, actor, policy.ResourceCampaign, policy.ActionList, nil); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, policy.CampaignListScope(actor).ActiveOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list campaigns")
	}
	today := s.today()
	out := make([]CampaignDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i], today))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*CampaignDTO, error) {
	campaign, err := s.authorized(ctx, actor, id, policy.ActionRead)
	if err != nil {
		return nil, err
	}
	return FromModel(campaign, s.today()), nil
}

func (s *service) Create(ctx context.Context, actor *policy.Actor, req CreateCampaignRequest) (*CampaignDTO, error) {
	if err := s.gate.Authorize(ctx, actor, policy.ResourceCampaign, policy.ActionCreate, nil); err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		Name:           strings.TrimSpace(req.Name),
		Description:    optionalText(req.Description),
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		IsActive:       true,
		CreatedBy:      actor.ID,
		Gadgets:        optionalText(req.AvailableGadgets),
		TargetAudience: optionalText(req.TargetAudience),
		Budget:         req.Budget,
	}
	if req.IsActive != nil {
		campaign.IsActive = *req.IsActive
	}
	if err := validateCampaign(campaign); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, campaign); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create campaign")
	}
	return FromModel(campaign, s.today()), nil
}

func (s *service) Update(ctx context.Context, actor *policy.Actor, id uuid.UUID, req UpdateCampaignRequest) (*CampaignDTO, error) {
	campaign, err := s.authorized(ctx, actor, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		campaign.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		campaign.Description = optionalText(req.Description)
	}
	if req.StartDate != nil {
		campaign.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		campaign.EndDate = *req.EndDate
	}
	if req.IsActive != nil {
		campaign.IsActive = *req.IsActive
	}
	if req.AvailableGadgets != nil {
		campaign.Gadgets = optionalText(req.AvailableGadgets)
	}
	if req.TargetAudience != nil {
		campaign.TargetAudience = optionalText(req.TargetAudience)
	}
	if req.Budget != nil {
		campaign.Budget = req.Budget
	}
	if err := validateCampaign(campaign); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, campaign); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update campaign")
	}
	return FromModel(campaign, s.today()), nil
}

func (s *service) Delete(ctx context.Context, actor *policy.Actor, id uuid.UUID) error {
	if _, err := s.authorized(ctx, actor, id, policy.ActionDelete); err != nil {
		return err
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.DeleteWithTx(tx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("campaign")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete campaign")
	}
	return nil
}

func (s *service) Stats(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*CampaignStats, error) {
	campaign, err := s.authorized(ctx, actor, id, policy.ActionViewStats)
	if err != nil {
		return nil, err
	}
	records, err := s.records.ListByCampaign(ctx, id, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list campaign records")
	}
	return &CampaignStats{
		CampaignInfo:         *FromModel(campaign, s.today()),
		Summary:              stats.Summarize(records),
		PromotersPerformance: stats.PerformanceByPromoter(records),
	}, nil
}

// authorized loads the campaign and checks action against it. Unauthenticated
// callers are rejected before the lookup so they cannot probe for ids.
func (s *service) authorized(ctx context.Context, actor *policy.Actor, id uuid.UUID, action policy.Action) (*models.Campaign, error) {
	if actor == nil {
		return nil, s.gate.Authorize(ctx, nil, policy.ResourceCampaign, action, nil)
	}
	campaign, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("campaign")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
	}
	if err := s.gate.Authorize(ctx, actor, policy.ResourceCampaign, action, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func validateCampaign(c *models.Campaign) error {
	var errs error
	fields := map[string]string{}
	if c.Name == "" {
		errs = multierr.Append(errs, errors.New("name is required"))
		fields["name"] = "required"
	}
	if c.StartDate.IsZero() {
		errs = multierr.Append(errs, errors.New("start_date is required"))
		fields["start_date"] = "required"
	}
	if c.EndDate.IsZero() {
		errs = multierr.Append(errs, errors.New("end_date is required"))
		fields["end_date"] = "required"
	}
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && c.StartDate.After(c.EndDate) {
		errs = multierr.Append(errs, errors.New("start_date must not be after end_date"))
		fields["end_date"] = "must be on or after start_date"
	}
	if c.Budget != nil && c.Budget.IsNegative() {
		errs = multierr.Append(errs, errors.New("budget must not be negative"))
		fields["budget"] = "must be >= 0"
	}
	if errs == nil {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid campaign").WithDetails(fields)
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
