package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/lowkeylabs/lowkey/internal/domain"
)

func (h *Handler) listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := h.db.Model(&domain.Order{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		db = db.Where("stripe_session_id ILIKE ?", "%"+q+"%")
	}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}
	if userID := strings.TrimSpace(c.QueryParam("user_id")); userID != "" {
		db = db.Where("user_id = ?", userID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	allowed := map[string]string{
		"id":                "id",
		"user_id":           "user_id",
		"total_price_cents": "total_price_cents",
		"status":            "status",
		"created_at":        "created_at",
	}
	var rows []domain.Order
	err := db.Preload("Items").
		Order(sortClause(c, allowed, "created_at")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

type orderCsvRow struct {
	ID              int64  `csv:"id"`
	UserID          int64  `csv:"user_id"`
	TotalPriceCents int64  `csv:"total_price_cents"`
	Status          string `csv:"status"`
	StripeSessionID string `csv:"stripe_session_id"`
	CreatedAt       string `csv:"created_at"`
}

// exportOrders streams the full order table as CSV for offline books.
func (h *Handler) exportOrders(c echo.Context) error {
	var orders []domain.Order
	if err := h.db.Order("created_at").Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	rows := make([]orderCsvRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderCsvRow{
			ID:              o.ID,
			UserID:          o.UserID,
			TotalPriceCents: o.TotalPriceCents,
			Status:          o.Status,
			StripeSessionID: o.StripeSessionID,
			CreatedAt:       o.CreatedAt.Format(time.RFC3339),
		})
	}

	filename := fmt.Sprintf("orders-%s.csv", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(&rows, c.Response())
}
