// Package adminapi serves the operator dashboard API: orders, members,
// tool management, vault items and aggregate stats.
package adminapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lowkeylabs/lowkey/internal/webserver"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// Register mounts the admin API onto the admin route group.
func Register(ws *webserver.WebServer, h *Handler) {
	g := ws.Admin()
	g.GET("/dashboard", h.dashboard)
	g.GET("/orders", h.listOrders)
	g.GET("/orders/export", h.exportOrders)
	g.GET("/users", h.listUsers)
	g.PUT("/users/:id", h.updateUser)
	g.GET("/tools", h.listTools)
	g.POST("/tools", h.createTool)
	g.PUT("/tools/:id", h.updateTool)
	g.DELETE("/tools/:id", h.deleteTool)
	g.GET("/vault", h.listVaultItems)
	g.POST("/vault", h.createVaultItem)
	g.DELETE("/vault/:id", h.deleteVaultItem)
}

func ok(c echo.Context, data interface{}) error {
	return webserver.OK(c, data)
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return webserver.Fail(c, status, code, message, detail)
}

func paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return webserver.Paged(c, items, total, page, pageSize)
}

// parsePagination accepts both perPage (dashboard front-end) and pageSize.
func parsePagination(c echo.Context) (page, pageSize int) {
	page = cast.ToInt(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}
	pageSize = 20
	for _, param := range []string{"perPage", "pageSize"} {
		if ps := cast.ToInt(c.QueryParam(param)); ps > 0 && ps <= 500 {
			pageSize = ps
			break
		}
	}
	return page, pageSize
}

// sortClause whitelists sortable columns to keep request input out of SQL.
func sortClause(c echo.Context, allowed map[string]string, fallback string) string {
	col, okCol := allowed[strings.TrimSpace(c.QueryParam("sort"))]
	if !okCol || col == "" {
		col = fallback
	}
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return col + " " + order
}
