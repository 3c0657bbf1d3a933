package webapi

import (
	"github.com/labstack/echo/v4"
	"github.com/lowkeylabs/lowkey/internal/errs"
	"github.com/lowkeylabs/lowkey/internal/webserver"
)

type oraclePayload struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type conciergePayload struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// askOracle is the public cryptic responder.
func (h *Handler) askOracle(c echo.Context) error {
	var payload oraclePayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	answer, err := h.oracle.Oracle(c.Request().Context(), payload.Question)
	if err != nil {
		return err
	}
	return webserver.OK(c, map[string]string{"answer": answer})
}

// askConcierge is the member-only VIP assistant.
func (h *Handler) askConcierge(c echo.Context) error {
	var payload conciergePayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	user := webserver.CurrentUser(c)
	if user == nil {
		return errs.Unauthenticated("sign in to use the concierge")
	}

	response, err := h.oracle.Concierge(c.Request().Context(), payload.Message)
	if err != nil {
		return err
	}
	return webserver.OK(c, map[string]string{"response": response})
}
