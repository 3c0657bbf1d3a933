package adminapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/ids"
)

type dashboardStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalOrders       int64 `json:"total_orders"`
	RevenueCents      int64 `json:"revenue_cents"`
	OrdersLast30Days  int64 `json:"orders_last_30_days"`
	OpenSessions      int64 `json:"open_sessions"`
	ProtocolSignups   int64 `json:"protocol_signups"`
	ToolGrantsTotal   int64 `json:"tool_grants_total"`
	NotificationsSent int64 `json:"notifications_sent"`
}

func (h *Handler) dashboard(c echo.Context) error {
	var stats dashboardStats

	h.db.Model(&domain.User{}).Count(&stats.TotalUsers)
	h.db.Model(&domain.Order{}).Count(&stats.TotalOrders)
	h.db.Model(&domain.Order{}).
		Where("status = ?", domain.OrderStatusCompleted).
		Select("COALESCE(SUM(total_price_cents), 0)").
		Scan(&stats.RevenueCents)
	h.db.Model(&domain.Order{}).
		Where("created_at > ?", time.Now().AddDate(0, 0, -30)).
		Count(&stats.OrdersLast30Days)
	h.db.Model(&domain.CheckoutSession{}).
		Where("status = ?", domain.SessionStatusOpen).
		Count(&stats.OpenSessions)
	h.db.Model(&domain.ProtocolSignup{}).Count(&stats.ProtocolSignups)
	h.db.Model(&domain.UserTool{}).Count(&stats.ToolGrantsTotal)
	h.db.Model(&domain.Notification{}).Count(&stats.NotificationsSent)

	return ok(c, stats)
}

func (h *Handler) listVaultItems(c echo.Context) error {
	var items []domain.VaultItem
	if err := h.db.Order("id").Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query vault items", err.Error())
	}
	return ok(c, items)
}

type vaultItemPayload struct {
	Code        string `json:"code" validate:"required,min=1,max=64"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=1024"`
	URL         string `json:"url" validate:"max=1024"`
}

func (h *Handler) createVaultItem(c echo.Context) error {
	var payload vaultItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse vault item", err.Error())
	}
	payload.Code = strings.TrimSpace(payload.Code)
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Code == "" || payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Code and name are required", nil)
	}

	now := time.Now()
	item := domain.VaultItem{
		ID:          ids.Next(),
		Code:        payload.Code,
		Name:        payload.Name,
		Description: strings.TrimSpace(payload.Description),
		URL:         strings.TrimSpace(payload.URL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.db.Create(&item).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create vault item", err.Error())
	}
	return ok(c, item)
}

func (h *Handler) deleteVaultItem(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid vault item ID", nil)
	}
	if err := h.db.Where("id = ?", id).Delete(&domain.VaultItem{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete vault item", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
