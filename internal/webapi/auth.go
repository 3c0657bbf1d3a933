package webapi

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lowkeylabs/lowkey/internal/access"
	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/errs"
	"github.com/lowkeylabs/lowkey/internal/ids"
	"github.com/lowkeylabs/lowkey/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type signupPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Realname string `json:"realname" validate:"max=200"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *Handler) signup(c echo.Context) error {
	var payload signupPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return errs.Upstream(err, "HASH_ERROR", "failed to hash password")
	}

	user := domain.User{
		ID:       ids.Next(),
		Email:    email,
		Password: string(hash),
		Realname: strings.TrimSpace(payload.Realname),
		Tier:     string(access.TierPremium),
		Level:    domain.UserLevelMember,
		Status:   domain.ENABLED,
	}
	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Conflict("EMAIL_TAKEN", "an account with this email already exists")
		}
		return errs.Upstream(err, "DATABASE_ERROR", "failed to create account")
	}

	zap.L().Info("member signed up", zap.String("email", email))

	token, err := webserver.SignToken(h.jwtSecret, &user)
	if err != nil {
		return errs.Upstream(err, "TOKEN_ERROR", "failed to issue token")
	}
	return webserver.OK(c, authResponse{Token: token, User: &user})
}

func (h *Handler) login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	var user domain.User
	err := h.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Unauthenticated("invalid email or password")
	}
	if err != nil {
		return errs.Upstream(err, "DATABASE_ERROR", "failed to query account")
	}
	if user.Status != domain.ENABLED {
		return errs.Forbidden("account disabled")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)) != nil {
		return errs.Unauthenticated("invalid email or password")
	}

	h.db.Model(&domain.User{}).Where("id = ?", user.ID).Update("last_login", time.Now())

	token, err := webserver.SignToken(h.jwtSecret, &user)
	if err != nil {
		return errs.Upstream(err, "TOKEN_ERROR", "failed to issue token")
	}
	return webserver.OK(c, authResponse{Token: token, User: &user})
}
