package bootstrap

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Valstan/MatricaRMZ-sub006/common"
	"github.com/Valstan/MatricaRMZ-sub006/common/mhttp"
	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
	"github.com/Valstan/MatricaRMZ-sub006/internal/auth"
	"github.com/Valstan/MatricaRMZ-sub006/internal/changesapi"
	"github.com/Valstan/MatricaRMZ-sub006/internal/syncapi"
)

// Server is the HTTP front door: the sync protocol and change-request
// moderation endpoints behind correlation-id/logging/CORS/auth
// middleware, following the teacher's NewRouter + Server wrapper split.
type Server struct {
	app           *fiber.App
	serverAddress string
	logger        mlog.Logger
}

// NewRouter assembles the Fiber app: ambient middleware first, then the
// unauthenticated health/version/root endpoints, then the protected /sync
// and /changes subtrees.
func NewRouter(logger mlog.Logger, resolver *auth.Resolver, syncH *syncapi.Handler, changesH *changesapi.Handler) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(mhttp.WithCorrelationID())
	app.Use(mhttp.WithLogging(logger))
	app.Use(mhttp.WithCORS())

	app.Get("/health", mhttp.Ping)
	app.Get("/version", mhttp.Version(ApplicationName))
	app.Get("/", mhttp.Welcome(ApplicationName, "offline-first shopfloor sync core"))

	protected := app.Group("", auth.Middleware(resolver))
	syncH.RegisterRoutes(protected)
	changesH.RegisterRoutes(protected)

	return app
}

// NewServer wraps a built Fiber app as a Launcher-compatible App.
func NewServer(cfg *Config, app *fiber.App, logger mlog.Logger) *Server {
	return &Server{app: app, serverAddress: cfg.ServerAddress, logger: logger}
}

// Run starts listening and blocks until the server stops or errors.
func (s *Server) Run(_ *common.Launcher) error {
	s.logger.Infof("listening on %s", s.serverAddress)
	return s.app.Listen(s.serverAddress)
}
