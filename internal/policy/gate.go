package policy

import (
	"context"

	"github.com/angelmondragon/promotion-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/promotion-manager/pkg/errors"
	"github.com/angelmondragon/promotion-manager/pkg/logger"
	"github.com/angelmondragon/promotion-manager/pkg/metrics"
	"github.com/google/uuid"
)

// Action is an operation an actor attempts on a resource.
type Action string

const (
	ActionList      Action = "list"
	ActionRead      Action = "read"
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionViewStats Action = "view_stats"
)

// Resource names a kind of entity guarded by a policy.
type Resource string

const (
	ResourceCampaign Resource = "campaign"
	ResourceMission  Resource = "mission"
	ResourceUser     Resource = "user"
)

// Actor is the authenticated identity a decision is made for.
type Actor struct {
	ID   uuid.UUID
	Role enums.Role
}

func (a *Actor) valid() bool {
	return a != nil && a.ID != uuid.Nil && a.Role.IsValid()
}

func (a *Actor) is(id uuid.UUID) bool {
	return a.ID == id
}

// Policy decides the actions of one resource. target is nil for list and
// create checks that have no entity yet.
type Policy interface {
	Can(actor *Actor, action Action, target any) bool
}

// Gate routes decisions to the registered policy of each resource. Anything
// without a registered policy or an explicit allow is denied.
type Gate struct {
	policies map[Resource]Policy
	logg     *logger.Logger
	metrics  *metrics.PolicyMetrics
}

// NewGate returns a gate with the campaign, mission and user policies registered.
func NewGate(logg *logger.Logger, m *metrics.PolicyMetrics) *Gate {
	g := &Gate{policies: make(map[Resource]Policy), logg: logg, metrics: m}
	g.Register(ResourceCampaign, campaignPolicy{})
	g.Register(ResourceMission, missionPolicy{})
	g.Register(ResourceUser, userPolicy{})
	return g
}

// Register sets the policy for resource, replacing any previous one.
func (g *Gate) Register(resource Resource, p Policy) {
	g.policies[resource] = p
}

// Authorize returns nil when allowed and a FORBIDDEN error otherwise. A nil
// actor is always denied.
func (g *Gate) Authorize(ctx context.Context, actor *Actor, resource Resource, action Action, target any) error {
	allowed := g.decide(actor, resource, action, target)
	g.metrics.Record(string(resource), string(action), allowed)
	if allowed {
		return nil
	}

	if g.logg != nil {
		role := "anonymous"
		if actor != nil {
			role = actor.Role.String()
		}
		g.logg.Warn(g.logg.WithFields(ctx, map[string]any{
			"resource":   resource,
			"action":     action,
			"actor_role": role,
		}), "policy denied")
	}
	return pkgerrors.Denied(string(resource), string(action))
}

// Can is Authorize without the error or side effects on logs.
func (g *Gate) Can(actor *Actor, resource Resource, action Action, target any) bool {
	return g.decide(actor, resource, action, target)
}

func (g *Gate) decide(actor *Actor, resource Resource, action Action, target any) bool {
	if !actor.valid() {
		return false
	}
	p, ok := g.policies[resource]
	if !ok {
		return false
	}
	return p.Can(actor, action, target)
}
