// File: internal/user/model.go
package user

import (
	"time"

	"carmatch_backend/internal/common"

	"github.com/google/uuid"
)

// User is the local profile of an identity issued by the upstream auth gateway.
// Only what listings, introductions and outbound messages need is kept here.
type User struct {
	common.BaseModel
	Email       *string `gorm:"type:varchar(255);uniqueIndex"`
	DisplayName string  `gorm:"type:varchar(100);not null;default:''"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// UpsertProfileRequest is the body of PUT /users/me.
type UpsertProfileRequest struct {
	DisplayName string  `json:"displayName" binding:"required,min=1,max=100"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email,max=255"`
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       *string   `json:"email,omitempty"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToUserResponse converts a User model to a UserResponse DTO.
func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
