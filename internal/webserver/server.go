package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lowkeylabs/lowkey/config"
	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/errs"
	"go.uber.org/zap"
)

// WebServer owns the echo instance and the three route groups: public,
// member (jwt) and admin (jwt + admin level). Handler packages register
// themselves onto the groups; nothing here is a process-wide singleton.
type WebServer struct {
	cfg  *config.AppConfig
	root *echo.Echo

	public *echo.Group
	member *echo.Group
	admin  *echo.Group
}

func New(cfg *config.AppConfig) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsoniterSerializer{}
	e.Validator = &payloadValidator{v: validator.New()}
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(requestLogger())

	jwtmw := echojwt.WithConfig(jwtConfig(cfg.Web.JwtSecret))

	ws := &WebServer{
		cfg:    cfg,
		root:   e,
		public: e.Group("/api"),
		member: e.Group("/api", jwtmw),
		admin:  e.Group("/api/admin", jwtmw, requireAdmin),
	}
	return ws
}

// Public is the unauthenticated API group.
func (ws *WebServer) Public() *echo.Group { return ws.public }

// Member is the jwt-protected API group.
func (ws *WebServer) Member() *echo.Group { return ws.member }

// Admin is the jwt-protected, admin-only API group.
func (ws *WebServer) Admin() *echo.Group { return ws.admin }

func (ws *WebServer) Start() error {
	addr := fmt.Sprintf("%s:%d", ws.cfg.Web.Host, ws.cfg.Web.Port)
	zap.S().Infof("starting web server on %s", addr)
	err := ws.root.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (ws *WebServer) Shutdown(ctx context.Context) error {
	return ws.root.Shutdown(ctx)
}

// ServeHTTP lets tests drive the server without a listener.
func (ws *WebServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws.root.ServeHTTP(w, r)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			zap.L().Info("http request", fields...)
			return nil
		},
	})
}

// errorHandler maps classified service errors to their status and keeps
// upstream detail out of responses.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if he, ok := err.(*echo.HTTPError); ok {
		msg := fmt.Sprintf("%v", he.Message)
		_ = Fail(c, he.Code, "REQUEST_ERROR", msg, nil)
		return
	}

	kind := errs.KindOf(err)
	status := errs.HTTPStatus(kind)
	code := errs.CodeOf(err)
	switch kind {
	case errs.KindUpstream, errs.KindUnknown:
		zap.L().Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		_ = Fail(c, status, code, "internal error", nil)
	default:
		var msg string
		if e, ok := err.(*errs.Error); ok {
			msg = e.Message
		} else {
			msg = err.Error()
		}
		_ = Fail(c, status, code, msg, nil)
	}
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil || user.Level != domain.UserLevelAdmin {
			return errs.Forbidden("admin access required")
		}
		return next(c)
	}
}

type jsoniterSerializer struct{}

func (jsoniterSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsoniter.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsoniterSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := jsoniter.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	return nil
}

type payloadValidator struct {
	v *validator.Validate
}

func (pv *payloadValidator) Validate(i interface{}) error {
	if err := pv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// graceful shutdown default
const ShutdownTimeout = 10 * time.Second
