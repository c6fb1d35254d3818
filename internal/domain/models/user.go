package models

import (
	"context"
	"strconv"

	"simplecrud/internal/domain"
)

const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"-"` // JANGAN dikirim ke frontend
	Role         string `json:"role"`
	Status       string `json:"status"`
}

func (u *User) ResourceID() string {
	if u.ID == 0 {
		return ""
	}
	return strconv.FormatInt(u.ID, 10)
}

func (u *User) CanCreate(ctx context.Context) bool {
	return domain.ActorFrom(ctx).HasRole(RoleOwner)
}

// CanUpdate allows owners, and any user editing their own account.
func (u *User) CanUpdate(ctx context.Context) bool {
	actor := domain.ActorFrom(ctx)
	if actor.HasRole(RoleOwner) {
		return true
	}
	return u.ID != 0 && actor.UserID == u.ID
}

func (u *User) CanDelete(ctx context.Context) bool {
	return domain.ActorFrom(ctx).HasRole(RoleOwner)
}

type UserPayload struct {
	Name     string `json:"name" binding:"required,max=100"`
	Username string `json:"username" binding:"required,alphanum,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"max=20"`
	Password string `json:"password" binding:"omitempty,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=owner admin user"`
	Status   string `json:"status" binding:"omitempty,oneof=active inactive"`
}

type UserFilter struct {
	Username *string `form:"username" filter:"username,like"`
	Email    *string `form:"email" filter:"email,like"`
	Role     *string `form:"role" binding:"omitempty,oneof=owner admin user" filter:"role,eq"`
	Status   *string `form:"status" binding:"omitempty,oneof=active inactive" filter:"status,eq"`
}
