package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/jubairbh/storefront/internal/auth"
	"github.com/jubairbh/storefront/internal/events"
	"github.com/jubairbh/storefront/internal/hash"
	"github.com/jubairbh/storefront/internal/models"
	"github.com/jubairbh/storefront/internal/store"
)

const SessionCookieName = "session"

type AuthHandler struct {
	Store    *store.Store
	Gate     *auth.Gate
	Producer *events.Producer
}

func CreateCookie(name, value, path string, expTime time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) publish(c echo.Context, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "valid email is required")
	}
	if len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 6 characters")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleCustomer,
	}

	// The whole registration is one transaction: either the full row
	// exists afterwards or none of it does.
	err = h.Store.Write(c.Request().Context(), func(tx *gorm.DB) error {
		var existing models.User
		result := tx.Where("email = ?", email).First(&existing)
		if result.Error == nil {
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return err
	}

	h.publish(c, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	session, err := h.Gate.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(CreateCookie(SessionCookieName, session.Token, "/", session.ExpiresAt))

	h.publish(c, events.TopicUserEvents, fmt.Sprint(session.UserID), map[string]any{
		"type":    "user_logged_in",
		"user_id": session.UserID,
		"email":   session.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"is_admin":   session.Role == models.RoleAdmin,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(CreateCookie(SessionCookieName, "", "/", expired))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "logged out",
	})
}

// Me returns the claims of the presented session; the auth middleware has
// already validated the token by the time this runs.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := c.Get("claims").(*auth.Claims)
	if !ok {
		return auth.ErrInvalidSession
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"role":    claims.Role,
	})
}
