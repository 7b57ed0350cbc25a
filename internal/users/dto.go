package users

import (
	"time"

	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/angelmondragon/promotion-manager/pkg/enums"
	"github.com/google/uuid"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       *string    `json:"email,omitempty"`
	Role        enums.Role `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func fromModels(in []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(in))
	for i := range in {
		out = append(out, *FromModel(&in[i]))
	}
	return out
}

// CreateUserRequest is the administrator account-creation payload.
type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,max=80"`
	Password string  `json:"password" validate:"required,min=6"`
	Email    *string `json:"email,omitempty" validate:"omitempty,eq=|email"`
	Role     string  `json:"role,omitempty"`
}

// UpdateUserRequest is a partial update; nil fields are left unchanged and an
// empty email clears it.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,max=80"`
	Email    *string `json:"email,omitempty" validate:"omitempty,eq=|email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
	Role     *string `json:"role,omitempty"`
}

// RoleStats counts accounts per role.
type RoleStats struct {
	TotalUsers               int64 `json:"total_users"`
	TotalPromoters           int64 `json:"total_promoters"`
	TotalSupervisors         int64 `json:"total_supervisors"`
	TotalAdministrators      int64 `json:"total_administrators"`
	TotalSuperAdministrators int64 `json:"total_super_administrators"`
}
