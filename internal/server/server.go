// Package server exposes the content service over HTTP: the public JSON API, the
// admin panel API, the calendar feed and the live countdown stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tartampluch/go-valentine/internal/auth"
	"github.com/tartampluch/go-valentine/internal/calendar"
	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/content"
	"github.com/tartampluch/go-valentine/internal/i18n"
)

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Content    *content.Service
	Auth       *auth.Authenticator
	Feed       http.Handler
	Importer   *calendar.Importer
	Translator *i18n.Translator
	DB         Pinger
}

// Server is the HTTP surface of the application.
type Server struct {
	echo     *echo.Echo
	cfg      *config.Settings
	deps     Deps
	metrics  *metrics
	upgrader websocket.Upgrader
	interval time.Duration
	log      *slog.Logger
}

// Option customises a Server.
type Option func(*Server)

// WithTickInterval sets how often the live countdown stream pushes a frame.
func WithTickInterval(d time.Duration) Option {
	return func(s *Server) { s.interval = d }
}

// CustomValidator plugs go-playground/validator into echo's c.Validate.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New wires middleware and routes. Nothing listens until Start.
func New(cfg *config.Settings, deps Deps, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}

	s := &Server{
		echo:     e,
		cfg:      cfg,
		deps:     deps,
		metrics:  newMetrics(),
		interval: config.DefaultTickInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.WSReadBufferSize,
			WriteBufferSize: config.WSWriteBufferSize,
			CheckOrigin:     allowOrigin(cfg.Security.CORSAllowedOrigins),
		},
		log: slog.With(config.LogKeyComponent, config.CompServer),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.deps.Translator == nil {
		s.deps.Translator = i18n.New()
	}

	e.HTTPErrorHandler = s.errorHandler

	s.setupMiddleware()
	if cfg.Metrics.Enabled {
		s.setupMetrics()
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				config.LogKeyMethod, v.Method,
				config.LogKeyURI, v.URI,
				config.LogKeyStatus, v.Status,
				config.LogKeyDuration, v.Latency.Milliseconds(),
				config.LogKeyRemoteIP, v.RemoteIP,
				config.LogKeyUserAgent, v.UserAgent,
				config.LogKeyRequestID, v.RequestID,
			}
			if v.Error != nil {
				s.log.Error(config.MsgRequestFailed, append(attrs, config.LogKeyError, v.Error)...)
			} else {
				s.log.Debug(config.MsgRequest, attrs...)
			}
			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: splitOrigins(s.cfg.Security.CORSAllowedOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         config.SecureXSSProtection,
		ContentTypeNosniff:    config.MimeNoSniff,
		XFrameOptions:         config.SecureFrameOptions,
		HSTSMaxAge:            config.SecureHSTSMaxAge,
		ContentSecurityPolicy: config.SecureCSP,
	}))
}

func (s *Server) setupRoutes() {
	s.echo.GET(config.RouteHealth, s.health)
	// The feed answers 405 itself for other methods.
	s.echo.Any(config.RouteCalendar, echo.WrapHandler(s.deps.Feed))
	s.echo.GET(config.RouteWSCountdown, s.countdownStream)

	api := s.echo.Group(config.RouteAPI)
	api.GET(config.RoutePhotos, s.listPhotos)
	api.GET(config.RouteReasons, s.listReasons)
	api.GET(config.RouteQuiz, s.listQuizCards)
	api.POST(config.RouteQuizAnswer, s.answerQuiz)
	api.GET(config.RouteQuizResult, s.quizResult)
	api.GET(config.RouteDreams, s.listDreams)
	api.POST(config.RouteDreams, s.addDream)
	api.PATCH(config.RouteDreamToggle, s.toggleDream)
	api.GET(config.RouteWishes, s.listWishes)
	api.POST(config.RouteWishes, s.addWish)
	api.GET(config.RouteLetter, s.getLetter)
	api.GET(config.RouteMusic, s.getMusic)
	api.GET(config.RouteTimeline, s.timeline)
	api.GET(config.RouteCountdown, s.countdown)
	api.GET(config.RouteStats, s.stats)

	admin := api.Group(config.RouteAdmin)
	admin.POST(config.RouteLogin, s.login, s.loginLimiter())

	protected := admin.Group("", s.requireAdmin)
	protected.GET(config.RoutePhotos, s.listPhotos)
	protected.POST(config.RoutePhotos, s.addPhoto)
	protected.DELETE(config.RoutePhotos+config.RouteByID, s.deletePhoto)
	protected.GET(config.RouteReasons, s.listReasons)
	protected.POST(config.RouteReasons, s.addReason)
	protected.DELETE(config.RouteReasons+config.RouteByID, s.deleteReason)
	protected.GET(config.RouteQuiz, s.listQuizQuestions)
	protected.POST(config.RouteQuiz, s.addQuizQuestion)
	protected.DELETE(config.RouteQuiz+config.RouteByID, s.deleteQuizQuestion)
	protected.GET(config.RouteDreams, s.listDreams)
	protected.POST(config.RouteDreams, s.addDream)
	protected.DELETE(config.RouteDreams+config.RouteByID, s.deleteDream)
	protected.GET(config.RouteSpecialDates, s.listSpecialDates)
	protected.POST(config.RouteSpecialDates, s.addSpecialDate)
	protected.DELETE(config.RouteSpecialDates+config.RouteByID, s.deleteSpecialDate)
	protected.GET(config.RouteMemories, s.listMemories)
	protected.POST(config.RouteMemories, s.addMemory)
	protected.DELETE(config.RouteMemories+config.RouteByID, s.deleteMemory)
	protected.GET(config.RouteWishes, s.listWishesAdmin)
	protected.DELETE(config.RouteWishes+config.RouteByID, s.deleteWish)
	protected.PUT(config.RouteLetter, s.saveLetter)
	protected.PUT(config.RouteMusic, s.saveMusic)
	protected.POST(config.RouteImportVCard, s.importVCard, middleware.BodyLimit(config.MaxUploadSize))
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.echo,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		// Hijacked WebSocket connections are not tracked by Shutdown; tying
		// request contexts to ctx stops their tickers.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverError := make(chan error, 1)
	go func() {
		s.log.Info(config.MsgServerListen, config.LogKeyAddr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info(config.MsgServerStop)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusOf maps domain errors onto status codes and client messages.
func statusOf(err error) (int, string) {
	var he *echo.HTTPError
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &he):
		return he.Code, fmt.Sprint(he.Message)
	case errors.As(err, &ve), errors.Is(err, content.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound, config.ErrNotFound
	case errors.Is(err, auth.ErrPasswordUnset):
		return http.StatusUnauthorized, config.ErrPasswordUnset
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrTokenInvalid):
		return http.StatusUnauthorized, config.ErrUnauthorized
	}
	return http.StatusInternalServerError, config.ErrInternal
}

// errorHandler writes errors as JSON. Only 5xx are logged here; the request
// logger records the rest.
func (s *Server) errorHandler(err error, c echo.Context) {
	code, msg := statusOf(err)

	if code >= http.StatusInternalServerError {
		s.log.Error(config.ErrRequestFailed,
			config.LogKeyURI, c.Request().URL.Path,
			config.LogKeyError, err)
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Error: msg})
	}
	if err != nil {
		s.log.Error(config.ErrWriteResp, config.LogKeyError, err)
	}
}

// bind decodes and validates a request body.
func bind[T any](c echo.Context) (T, error) {
	var in T
	if err := c.Bind(&in); err != nil {
		return in, echo.NewHTTPError(http.StatusBadRequest, config.ErrInvalidRequest)
	}
	if err := c.Validate(&in); err != nil {
		return in, fmt.Errorf("%w: %w", content.ErrValidation, err)
	}
	return in, nil
}

// localizer picks the request language from ?lang= or Accept-Language.
func (s *Server) localizer(c echo.Context) *i18n.Localizer {
	lang := s.deps.Translator.Match(c.QueryParam(config.ParamLang), c.Request().Header.Get(config.HeaderAcceptLanguage))
	return s.deps.Translator.Localizer(lang)
}

func splitOrigins(list string) []string {
	var out []string
	for _, o := range strings.Split(list, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{config.DefaultCORSOrigins}
	}
	return out
}

// allowOrigin applies the CORS allow-list to WebSocket handshakes.
func allowOrigin(list string) func(*http.Request) bool {
	origins := splitOrigins(list)
	return func(r *http.Request) bool {
		origin := r.Header.Get(echo.HeaderOrigin)
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == config.DefaultCORSOrigins || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}
