package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/promotion-manager/api/middleware"
	"github.com/angelmondragon/promotion-manager/internal/campaigns"
	"github.com/angelmondragon/promotion-manager/internal/missions"
	"github.com/angelmondragon/promotion-manager/internal/policy"
	"github.com/angelmondragon/promotion-manager/internal/stats"
	"github.com/angelmondragon/promotion-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/promotion-manager/pkg/errors"
	"github.com/angelmondragon/promotion-manager/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type stubCampaignService struct {
	actor     *policy.Actor
	id        uuid.UUID
	createReq campaigns.CreateCampaignRequest
	updateReq campaigns.UpdateCampaignRequest
	dto       *campaigns.CampaignDTO
	stats     *campaigns.CampaignStats
	err       error
}

func (s *stubCampaignService) List(ctx context.Context, actor *policy.Actor) ([]campaigns.CampaignDTO, error) {
	s.actor = actor
	if s.err != nil {
		return nil, s.err
	}
	return []campaigns.CampaignDTO{*s.dto}, nil
}

func (s *stubCampaignService) Get(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*campaigns.CampaignDTO, error) {
	s.actor, s.id = actor, id
	return s.dto, s.err
}

func (s *stubCampaignService) Create(ctx context.Context, actor *policy.Actor, req campaigns.CreateCampaignRequest) (*campaigns.CampaignDTO, error) {
	s.actor, s.createReq = actor, req
	return s.dto, s.err
}

func (s *stubCampaignService) Update(ctx context.Context, actor *policy.Actor, id uuid.UUID, req campaigns.UpdateCampaignRequest) (*campaigns.CampaignDTO, error) {
	s.actor, s.id, s.updateReq = actor, id, req
	return s.dto, s.err
}

func (s *stubCampaignService) Delete(ctx context.Context, actor *policy.Actor, id uuid.UUID) error {
	s.actor, s.id = actor, id
	return s.err
}

func (s *stubCampaignService) Stats(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*campaigns.CampaignStats, error) {
	s.actor, s.id = actor, id
	return s.stats, s.err
}

// withURLParam routes a request through chi so URL params resolve.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func withActor(req *http.Request, role enums.Role) (*http.Request, *policy.Actor) {
	actor := &policy.Actor{ID: uuid.New(), Role: role}
	return req.WithContext(middleware.WithActor(req.Context(), actor)), actor
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var env types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return env.Error
}

func sampleCampaignDTO() *campaigns.CampaignDTO {
	return &campaigns.CampaignDTO{
		ID:        uuid.New(),
		Name:      "Spring launch",
		StartDate: types.NewDate(2025, 3, 1),
		EndDate:   types.NewDate(2025, 3, 31),
		IsActive:  true,
		IsCurrent: true,
	}
}

func TestCampaignCreateReturnsCreated(t *testing.T) {
	svc := &stubCampaignService{dto: sampleCampaignDTO()}
	handler := CampaignCreate(svc, nil)

	body := `{"name":"Spring launch","start_date":"2025-03-01","end_date":"2025-03-31","budget":"1500.50"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns", strings.NewReader(body))
	req, actor := withActor(req, enums.RoleSupervisor)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.actor != actor {
		t.Fatalf("expected actor from context to reach the service")
	}
	if svc.createReq.StartDate.String() != "2025-03-01" {
		t.Fatalf("unexpected start date %s", svc.createReq.StartDate)
	}
	if svc.createReq.Budget == nil || svc.createReq.Budget.String() != "1500.5" {
		t.Fatalf("unexpected budget %v", svc.createReq.Budget)
	}

	var envelope struct {
		Data campaigns.CampaignDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Name != "Spring launch" || !envelope.Data.IsCurrent {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestCampaignCreateRejectsMissingName(t *testing.T) {
	svc := &stubCampaignService{dto: sampleCampaignDTO()}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns", strings.NewReader(`{"start_date":"2025-03-01","end_date":"2025-03-31"}`))
	req, _ = withActor(req, enums.RoleSupervisor)
	rec := httptest.NewRecorder()

	CampaignCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if apiErr := decodeError(t, rec); apiErr.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", apiErr.Code)
	}
	if svc.actor != nil {
		t.Fatal("service should not be called")
	}
}

func TestCampaignGetRejectsMalformedID(t *testing.T) {
	svc := &stubCampaignService{dto: sampleCampaignDTO()}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/nope", nil), "id", "nope")
	rec := httptest.NewRecorder()

	CampaignGet(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCampaignGetMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"forbidden", pkgerrors.Denied("campaign", "read"), http.StatusForbidden},
		{"not found", pkgerrors.NotFound("campaign"), http.StatusNotFound},
		{"dependency", pkgerrors.Wrap(pkgerrors.CodeDependency, errBoom, "load campaign"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := uuid.New()
			svc := &stubCampaignService{err: tc.err}
			req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/"+id.String(), nil), "id", id.String())
			rec := httptest.NewRecorder()

			CampaignGet(svc, nil).ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, rec.Code)
			}
			if svc.id != id {
				t.Fatalf("expected id %s got %s", id, svc.id)
			}
		})
	}
}

func TestCampaignUpdatePassesPartialBody(t *testing.T) {
	svc := &stubCampaignService{dto: sampleCampaignDTO()}
	id := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/campaigns/"+id.String(), strings.NewReader(`{"is_active":false}`))
	req = withURLParam(req, "id", id.String())
	req, _ = withActor(req, enums.RoleAdministrator)
	rec := httptest.NewRecorder()

	CampaignUpdate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.updateReq.IsActive == nil || *svc.updateReq.IsActive {
		t.Fatalf("expected is_active=false, got %v", svc.updateReq.IsActive)
	}
	if svc.updateReq.Name != nil {
		t.Fatalf("expected name untouched")
	}
}

func TestCampaignDeleteReturnsNoContent(t *testing.T) {
	svc := &stubCampaignService{}
	id := uuid.New()
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/campaigns/"+id.String(), nil), "id", id.String())
	req, _ = withActor(req, enums.RoleAdministrator)
	rec := httptest.NewRecorder()

	CampaignDelete(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if svc.id != id {
		t.Fatalf("expected delete of %s", id)
	}
}

func TestCampaignStatsPayload(t *testing.T) {
	dto := sampleCampaignDTO()
	svc := &stubCampaignService{stats: &campaigns.CampaignStats{
		CampaignInfo: *dto,
		Summary: stats.Summary{
			Totals:         stats.Totals{Sales: 20, Approached: 30, Purchased: 20, MissionsCount: 2},
			ConversionRate: 66.67,
		},
		PromotersPerformance: map[string]stats.PromoterPerformance{},
	}}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", dto.ID.String())
	req, _ = withActor(req, enums.RoleSupervisor)
	rec := httptest.NewRecorder()

	CampaignStats(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["conversion_rate"] != 66.67 {
		t.Fatalf("unexpected conversion rate %v", envelope.Data["conversion_rate"])
	}
	if _, ok := envelope.Data["campaign_info"]; !ok {
		t.Fatalf("expected campaign_info in payload: %v", envelope.Data)
	}
}

func TestCampaignListServiceUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	CampaignList(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}

func TestCampaignMissionsUsesPathID(t *testing.T) {
	svc := &stubMissionService{}
	id := uuid.New()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String())
	req, _ = withActor(req, enums.RolePromoter)
	rec := httptest.NewRecorder()

	CampaignMissions(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.campaignID != id {
		t.Fatalf("expected campaign %s got %s", id, svc.campaignID)
	}
}

var _ missions.Service = (*stubMissionService)(nil)
