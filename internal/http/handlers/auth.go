package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"simplecrud/internal/domain"
	"simplecrud/internal/domain/models"
	"simplecrud/internal/services"
)

// AuthUser mirrors the login response user payload.
type AuthUser struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

type loginRequest struct {
	// Email accepts either an email or a username.
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthHandler struct {
	Auth services.AuthService
}

// POST /api/auth/login
func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondDomainError(c, domain.ValidationError{Msg: "payload tidak valid", Err: err})
		return
	}

	token, u, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  authUser(u),
	})
}

func authUser(u *models.User) AuthUser {
	return AuthUser{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		Status:   u.Status,
	}
}
