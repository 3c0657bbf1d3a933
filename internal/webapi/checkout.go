package webapi

import (
	"github.com/labstack/echo/v4"
	"github.com/lowkeylabs/lowkey/internal/errs"
	"github.com/lowkeylabs/lowkey/internal/webserver"
)

type beginCheckoutPayload struct {
	ProductID string `json:"product_id" validate:"required"`
}

type finalizeCheckoutPayload struct {
	SessionID string `json:"session_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
}

func (h *Handler) beginCheckout(c echo.Context) error {
	var payload beginCheckoutPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	user := webserver.CurrentUser(c)
	if user == nil {
		return errs.Unauthenticated("sign in to checkout")
	}

	clientSecret, err := h.checkout.Begin(c.Request().Context(), payload.ProductID, user.UserID, user.Email)
	if err != nil {
		return err
	}
	// client secret is sensitive and short-lived; the widget consumes it
	return webserver.OK(c, map[string]string{"client_secret": clientSecret})
}

func (h *Handler) checkoutStatus(c echo.Context) error {
	sessionID := c.QueryParam("session")
	if sessionID == "" {
		return errs.Validation("MISSING_SESSION", "session query parameter required")
	}
	status, err := h.checkout.GetStatus(c.Request().Context(), sessionID)
	if err != nil {
		return err
	}
	return webserver.OK(c, status)
}

func (h *Handler) finalizeCheckout(c echo.Context) error {
	var payload finalizeCheckoutPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	user := webserver.CurrentUser(c)
	if user == nil {
		return errs.Unauthenticated("sign in to finalize checkout")
	}

	order, err := h.checkout.Finalize(c.Request().Context(), payload.SessionID, payload.ProductID, user.UserID)
	if err != nil {
		return err
	}
	return webserver.OK(c, order)
}

func (h *Handler) listMyOrders(c echo.Context) error {
	user := webserver.CurrentUser(c)
	if user == nil {
		return errs.Unauthenticated("sign in to view orders")
	}
	orders, err := h.checkout.ListUserOrders(c.Request().Context(), user.UserID)
	if err != nil {
		return err
	}
	return webserver.OK(c, orders)
}
