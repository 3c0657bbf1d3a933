// Package webapi serves the member-facing marketplace API: auth, catalog,
// checkout, tools, oracle/concierge, protocol capture, vault and
// notifications.
package webapi

import (
	"context"

	"github.com/lowkeylabs/lowkey/internal/access"
	"github.com/lowkeylabs/lowkey/internal/catalog"
	"github.com/lowkeylabs/lowkey/internal/checkout"
	"github.com/lowkeylabs/lowkey/internal/notify"
	"github.com/lowkeylabs/lowkey/internal/webserver"
	"gorm.io/gorm"
)

// OracleClient is the AI boundary used by the oracle and concierge
// endpoints.
type OracleClient interface {
	Configured() bool
	Oracle(ctx context.Context, question string) (string, error)
	Concierge(ctx context.Context, message string) (string, error)
}

type Handler struct {
	db        *gorm.DB
	catalog   *catalog.Catalog
	checkout  *checkout.Service
	access    *access.Service
	verifier  *access.KeyVerifier
	oracle    OracleClient
	telegram  *notify.Telegram
	mailer    *notify.Mailer
	jwtSecret string
}

type HandlerConfig struct {
	DB        *gorm.DB
	Catalog   *catalog.Catalog
	Checkout  *checkout.Service
	Access    *access.Service
	Verifier  *access.KeyVerifier
	Oracle    OracleClient
	Telegram  *notify.Telegram
	Mailer    *notify.Mailer
	JwtSecret string
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		db:        cfg.DB,
		catalog:   cfg.Catalog,
		checkout:  cfg.Checkout,
		access:    cfg.Access,
		verifier:  cfg.Verifier,
		oracle:    cfg.Oracle,
		telegram:  cfg.Telegram,
		mailer:    cfg.Mailer,
		jwtSecret: cfg.JwtSecret,
	}
}

// Register mounts the member API onto the server's route groups.
func Register(ws *webserver.WebServer, h *Handler) {
	pub := ws.Public()
	pub.POST("/auth/signup", h.signup)
	pub.POST("/auth/login", h.login)
	pub.GET("/products", h.listProducts)
	pub.GET("/products/:id", h.getProduct)
	pub.POST("/oracle", h.askOracle)
	pub.POST("/protocol", h.captureProtocol)
	pub.POST("/access/verify", h.verifyAccessKey)
	pub.GET("/vault", h.listVault)

	m := ws.Member()
	m.POST("/checkout", h.beginCheckout)
	m.GET("/checkout/status", h.checkoutStatus)
	m.POST("/checkout/finalize", h.finalizeCheckout)
	m.GET("/orders", h.listMyOrders)
	m.GET("/tools", h.listTools)
	m.POST("/tools/grant-access", h.grantToolAccess)
	m.DELETE("/tools/:id/access", h.revokeToolAccess)
	m.POST("/concierge", h.askConcierge)
	m.GET("/notifications", h.listNotifications)
	m.POST("/notifications/:id/read", h.markNotificationRead)
}
