package webapi

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/errs"
	"github.com/lowkeylabs/lowkey/internal/ids"
	"github.com/lowkeylabs/lowkey/internal/webserver"
	"go.uber.org/zap"
)

func (h *Handler) listProducts(c echo.Context) error {
	return webserver.OK(c, h.catalog.All())
}

func (h *Handler) getProduct(c echo.Context) error {
	product, ok := h.catalog.Lookup(c.Param("id"))
	if !ok {
		return errs.NotFound("PRODUCT_NOT_FOUND", "product not found")
	}
	return webserver.OK(c, product)
}

type accessVerifyPayload struct {
	Key string `json:"key" validate:"required"`
}

// verifyAccessKey checks a candidate against the master key. The endpoint
// answers valid true/false; it never reveals whether a key is configured.
func (h *Handler) verifyAccessKey(c echo.Context) error {
	var payload accessVerifyPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	if payload.Key == "" {
		return errs.Validation("INVALID_KEY", "key required")
	}
	return webserver.OK(c, map[string]bool{"valid": h.verifier.Verify(payload.Key)})
}

type protocolPayload struct {
	Email string `json:"email" validate:"required,email"`
}

// captureProtocol stores the submitted email and notifies the operators.
func (h *Handler) captureProtocol(c echo.Context) error {
	var payload protocolPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	signup := domain.ProtocolSignup{ID: ids.Next(), Email: payload.Email}
	if err := h.db.Create(&signup).Error; err != nil {
		return errs.Upstream(err, "DATABASE_ERROR", "failed to store signup")
	}

	text := fmt.Sprintf("New protocol identifier submitted:\n%s", payload.Email)
	if err := h.telegram.Notify(c.Request().Context(), text); err != nil {
		zap.L().Warn("protocol telegram notify failed", zap.Error(err))
	}
	if err := h.mailer.Send("Protocol signup", text); err != nil {
		zap.L().Warn("protocol mail notify failed", zap.Error(err))
	}

	return webserver.OK(c, map[string]bool{"ok": true})
}

// listVault serves keyholder documents. The caller presents the access key
// on every request; there is no session for the vault.
func (h *Handler) listVault(c echo.Context) error {
	if !h.verifier.Verify(c.Request().Header.Get("X-Access-Key")) {
		return errs.Forbidden("valid access key required")
	}

	var items []domain.VaultItem
	if err := h.db.Order("id").Find(&items).Error; err != nil {
		return errs.Upstream(err, "DATABASE_ERROR", "failed to list vault items")
	}
	return webserver.OK(c, map[string]interface{}{"items": items})
}

func (h *Handler) listNotifications(c echo.Context) error {
	user := webserver.CurrentUser(c)
	if user == nil {
		return errs.Unauthenticated("sign in to view notifications")
	}

	var rows []domain.Notification
	err := h.db.Where("user_id = ?", user.UserID).
		Order("created_at DESC").
		Limit(50).
		Find(&rows).Error
	if err != nil {
		return errs.Upstream(err, "DATABASE_ERROR", "failed to list notifications")
	}
	return webserver.OK(c, rows)
}

func (h *Handler) markNotificationRead(c echo.Context) error {
	user := webserver.CurrentUser(c)
	if user == nil {
		return errs.Unauthenticated("sign in to manage notifications")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errs.Validation("INVALID_ID", "invalid notification ID")
	}

	res := h.db.Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, user.UserID).
		Update("read", true)
	if res.Error != nil {
		return errs.Upstream(res.Error, "DATABASE_ERROR", "failed to update notification")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("NOT_FOUND", "notification not found")
	}
	return webserver.OK(c, map[string]bool{"success": true})
}
