package webapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lowkeylabs/lowkey/internal/access"
	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/errs"
	"github.com/lowkeylabs/lowkey/internal/webserver"
)

type grantToolPayload struct {
	ToolID int64 `json:"tool_id,string" validate:"required"`
}

type toolView struct {
	domain.Tool
	Unlocked   bool `json:"unlocked"`
	Accessible bool `json:"accessible"`
}

// listTools returns every tool annotated with whether the member's tier
// can reach it and whether it is already unlocked.
func (h *Handler) listTools(c echo.Context) error {
	user := webserver.CurrentUser(c)
	if user == nil {
		return errs.Unauthenticated("sign in to view tools")
	}
	ctx := c.Request().Context()

	tools, err := h.access.ListTools(ctx)
	if err != nil {
		return err
	}
	unlockedIDs, err := h.access.UserToolIDs(ctx, user.UserID)
	if err != nil {
		return err
	}
	unlocked := make(map[int64]bool, len(unlockedIDs))
	for _, id := range unlockedIDs {
		unlocked[id] = true
	}

	views := make([]toolView, 0, len(tools))
	for _, t := range tools {
		views = append(views, toolView{
			Tool:       t,
			Unlocked:   unlocked[t.ID],
			Accessible: access.CanAccess(access.Tier(user.Tier), access.Tier(t.AccessLevel)),
		})
	}
	return webserver.OK(c, views)
}

func (h *Handler) grantToolAccess(c echo.Context) error {
	var payload grantToolPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	if payload.ToolID == 0 {
		return errs.Validation("MISSING_TOOL_ID", "tool_id required")
	}

	user := webserver.CurrentUser(c)
	if user == nil {
		return errs.Unauthenticated("sign in to unlock tools")
	}

	err := h.access.Grant(c.Request().Context(), user.UserID, access.Tier(user.Tier), payload.ToolID)
	if err != nil {
		return err
	}
	return webserver.OK(c, map[string]bool{"success": true})
}

func (h *Handler) revokeToolAccess(c echo.Context) error {
	toolID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errs.Validation("INVALID_ID", "invalid tool ID")
	}

	user := webserver.CurrentUser(c)
	if user == nil {
		return errs.Unauthenticated("sign in to manage tools")
	}

	if err := h.access.Revoke(c.Request().Context(), user.UserID, toolID); err != nil {
		return err
	}
	return webserver.OK(c, map[string]bool{"success": true})
}
