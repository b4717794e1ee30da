package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aidanjnn/lost-found-app/pkg/db/models"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
)

// UserDTO is the transport shape of a campus user.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      enums.UserRole `json:"role"`
	Phone     *string        `json:"phone,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email string
	Name  string
	Role  enums.UserRole
	Phone *string
}

// UpdateProfileInput edits the caller's own name and email. Nil fields are
// left as they are.
type UpdateProfileInput struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email *string `json:"email,omitempty" validate:"omitempty,max=254"`
}

// ToModel normalizes the email and assigns a fresh id.
func (d CreateUserDTO) ToModel() *models.User {
	role := d.Role
	if role == "" {
		role = enums.UserRoleStudent
	}
	return &models.User{
		ID:    uuid.New(),
		Email: strings.ToLower(strings.TrimSpace(d.Email)),
		Name:  strings.TrimSpace(d.Name),
		Role:  role,
		Phone: d.Phone,
	}
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}
