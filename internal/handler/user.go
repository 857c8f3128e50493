package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// UserHandler exposes the admin-only user administration endpoints.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(users *repository.UserRepo) *UserHandler {
	if users == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Users: users}
}

type adminUserPart struct {
	ID          uint64    `json:"id"`
	Email       string    `json:"email"`
	FullName    *string   `json:"full_name,omitempty"`
	Role        string    `json:"role"`
	BonusPoints int64     `json:"bonus_points"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAdminUser(u *model.User) adminUserPart {
	return adminUserPart{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		BonusPoints: u.BonusPoints,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

// List returns all users.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}
	out := make([]adminUserPart, 0, len(users))
	for i := range users {
		out = append(out, toAdminUser(&users[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

type roleReq struct {
	Role string `json:"role"`
}

// UpdateRole grants or revokes staff roles.  An admin cannot demote
// themselves, which keeps at least one admin reachable.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	switch role {
	case booking.RoleUser, booking.RoleManager, booking.RoleAdmin:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be USER, MANAGER or ADMIN"})
	}
	if id == actor.UserID && role != booking.RoleAdmin {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot change own admin role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	if err := h.Users.UpdateRole(ctx, id, role); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update role failed"})
	}
	u.Role = role
	return c.JSON(http.StatusOK, toAdminUser(&u))
}
