package adminapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lowkeylabs/lowkey/internal/access"
	"github.com/lowkeylabs/lowkey/internal/domain"
)

func (h *Handler) listUsers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := h.db.Model(&domain.User{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		db = db.Where("email ILIKE ? OR realname ILIKE ?", "%"+q+"%", "%"+q+"%")
	}
	if tier := strings.TrimSpace(c.QueryParam("tier")); tier != "" {
		db = db.Where("tier = ?", tier)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}

	allowed := map[string]string{
		"id":         "id",
		"email":      "email",
		"tier":       "tier",
		"last_login": "last_login",
		"created_at": "created_at",
	}
	var rows []domain.User
	err := db.Order(sortClause(c, allowed, "created_at")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

type userUpdatePayload struct {
	Tier   string `json:"tier"`
	Level  string `json:"level"`
	Status string `json:"status"`
	Remark string `json:"remark"`
}

// updateUser lets an operator adjust a member's tier, level or status.
func (h *Handler) updateUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var user domain.User
	if err := h.db.Where("id = ?", id).First(&user).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	}

	var payload userUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user", err.Error())
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Tier != "" {
		if access.Rank(access.Tier(payload.Tier)) < 0 {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unknown tier", nil)
		}
		updates["tier"] = payload.Tier
	}
	if payload.Level != "" {
		if payload.Level != domain.UserLevelMember && payload.Level != domain.UserLevelAdmin {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Level must be 'member' or 'admin'", nil)
		}
		updates["level"] = payload.Level
	}
	if payload.Status != "" {
		if payload.Status != domain.ENABLED && payload.Status != domain.DISABLED {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Status must be 'enabled' or 'disabled'", nil)
		}
		updates["status"] = payload.Status
	}
	if payload.Remark != "" {
		updates["remark"] = payload.Remark
	}

	if err := h.db.Model(&domain.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user", err.Error())
	}
	if err := h.db.Where("id = ?", id).First(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to reload user", err.Error())
	}
	return ok(c, user)
}
