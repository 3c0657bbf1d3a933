package adminapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lowkeylabs/lowkey/internal/access"
	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/ids"
)

type toolPayload struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=1024"`
	AccessLevel string `json:"access_level" validate:"required"`
}

func (p *toolPayload) check(c echo.Context) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if access.Rank(access.Tier(p.AccessLevel)) < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST",
			"Access level must be one of public/premium/vip/elite", nil)
	}
	return nil
}

func (h *Handler) listTools(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := h.db.Model(&domain.Tool{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		db = db.Where("name ILIKE ?", "%"+q+"%")
	}
	if level := strings.TrimSpace(c.QueryParam("access_level")); level != "" {
		db = db.Where("access_level = ?", level)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query tools", err.Error())
	}

	allowed := map[string]string{
		"id":           "id",
		"name":         "name",
		"access_level": "access_level",
		"created_at":   "created_at",
	}
	var rows []domain.Tool
	err := db.Order(sortClause(c, allowed, "id")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query tools", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func (h *Handler) createTool(c echo.Context) error {
	var payload toolPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse tool", err.Error())
	}
	if err := payload.check(c); err != nil {
		return err
	}

	now := time.Now()
	tool := domain.Tool{
		ID:          ids.Next(),
		Name:        payload.Name,
		Description: strings.TrimSpace(payload.Description),
		AccessLevel: payload.AccessLevel,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.db.Create(&tool).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create tool", err.Error())
	}
	return ok(c, tool)
}

func (h *Handler) updateTool(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid tool ID", nil)
	}
	var tool domain.Tool
	if err := h.db.Where("id = ?", id).First(&tool).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Tool not found", nil)
	}

	var payload toolPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse tool", err.Error())
	}
	if err := payload.check(c); err != nil {
		return err
	}

	tool.Name = payload.Name
	tool.Description = strings.TrimSpace(payload.Description)
	tool.AccessLevel = payload.AccessLevel
	tool.UpdatedAt = time.Now()

	if err := h.db.Save(&tool).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update tool", err.Error())
	}
	return ok(c, tool)
}

func (h *Handler) deleteTool(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid tool ID", nil)
	}
	if err := h.db.Where("tool_id = ?", id).Delete(&domain.UserTool{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete tool grants", err.Error())
	}
	if err := h.db.Where("id = ?", id).Delete(&domain.Tool{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete tool", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
