package server

import (
	"errors"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/tartampluch/go-valentine/internal/auth"
	"github.com/tartampluch/go-valentine/internal/calendar"
	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/content"
)

type loginRequest struct {
	Password string `json:"password" validate:"required"`
}

func (s *Server) login(c echo.Context) error {
	in, err := bind[loginRequest](c)
	if err != nil {
		return err
	}
	tok, err := s.deps.Auth.Login(c.Request().Context(), in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			s.metrics.loginFailures.Inc()
			s.log.Warn(config.MsgLoginFailed, config.LogKeyRemoteIP, c.RealIP())
		}
		return err
	}
	return c.JSON(http.StatusOK, tok)
}

// loginLimiter throttles password guesses per client IP.
func (s *Server) loginLimiter() echo.MiddlewareFunc {
	sec := s.cfg.Security
	window := sec.LoginWindow
	if window <= 0 {
		window = config.DefaultLoginWindow
	}
	burst := sec.LoginBurst
	if burst <= 0 {
		burst = config.DefaultLoginBurst
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(sec.LoginRate / window.Seconds()),
			Burst:     burst,
			ExpiresIn: window,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, errorResponse{Error: config.ErrRateLimited})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.log.Warn(config.ErrRateLimited, config.LogKeyRemoteIP, identifier)
			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: config.ErrRateLimited})
		},
	})
}

// requireAdmin validates the bearer token of admin routes.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tok, ok := auth.BearerToken(c.Request().Header.Get(config.HeaderAuthorization))
		if !ok {
			return auth.ErrUnauthorized
		}
		claims, err := s.deps.Auth.Verify(tok)
		if err != nil {
			s.log.Warn(config.ErrTokenInvalid,
				config.LogKeyRemoteIP, c.RealIP(),
				config.LogKeyError, err)
			return err
		}
		c.Set(config.ContextKeyAdmin, claims.Subject)
		return next(c)
	}
}

// created runs add on the bound input and answers 201.
func created[In, Out any](c echo.Context, add func(echo.Context, In) (Out, error)) error {
	in, err := bind[In](c)
	if err != nil {
		return err
	}
	out, err := add(c, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

// deleted runs del on the :id path parameter and answers 204.
func deleted(c echo.Context, del func(echo.Context, string) error) error {
	if err := del(c, c.Param(config.ParamID)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) addPhoto(c echo.Context) error {
	return created(c, func(c echo.Context, in content.PhotoInput) (content.Photo, error) {
		return s.deps.Content.AddPhoto(c.Request().Context(), in)
	})
}

func (s *Server) deletePhoto(c echo.Context) error {
	return deleted(c, func(c echo.Context, id string) error {
		return s.deps.Content.DeletePhoto(c.Request().Context(), id)
	})
}

func (s *Server) addReason(c echo.Context) error {
	return created(c, func(c echo.Context, in content.ReasonInput) (content.Reason, error) {
		return s.deps.Content.AddReason(c.Request().Context(), in)
	})
}

func (s *Server) deleteReason(c echo.Context) error {
	return deleted(c, func(c echo.Context, id string) error {
		return s.deps.Content.DeleteReason(c.Request().Context(), id)
	})
}

func (s *Server) listQuizQuestions(c echo.Context) error {
	items, err := s.deps.Content.QuizQuestions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) addQuizQuestion(c echo.Context) error {
	return created(c, func(c echo.Context, in content.QuizInput) (content.QuizQuestion, error) {
		return s.deps.Content.AddQuizQuestion(c.Request().Context(), in)
	})
}

func (s *Server) deleteQuizQuestion(c echo.Context) error {
	return deleted(c, func(c echo.Context, id string) error {
		return s.deps.Content.DeleteQuizQuestion(c.Request().Context(), id)
	})
}

func (s *Server) deleteDream(c echo.Context) error {
	return deleted(c, func(c echo.Context, id string) error {
		return s.deps.Content.DeleteBucketItem(c.Request().Context(), id)
	})
}

func (s *Server) listSpecialDates(c echo.Context) error {
	items, err := s.deps.Content.SpecialDates(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) addSpecialDate(c echo.Context) error {
	return created(c, func(c echo.Context, in content.SpecialDateInput) (content.SpecialDate, error) {
		return s.deps.Content.AddSpecialDate(c.Request().Context(), in)
	})
}

func (s *Server) deleteSpecialDate(c echo.Context) error {
	return deleted(c, func(c echo.Context, id string) error {
		return s.deps.Content.DeleteSpecialDate(c.Request().Context(), id)
	})
}

func (s *Server) listMemories(c echo.Context) error {
	items, err := s.deps.Content.Memories(c.Request().Context(), false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) addMemory(c echo.Context) error {
	return created(c, func(c echo.Context, in content.MemoryInput) (content.Memory, error) {
		return s.deps.Content.AddMemory(c.Request().Context(), in)
	})
}

func (s *Server) deleteMemory(c echo.Context) error {
	return deleted(c, func(c echo.Context, id string) error {
		return s.deps.Content.DeleteMemory(c.Request().Context(), id)
	})
}

func (s *Server) listWishesAdmin(c echo.Context) error {
	items, err := s.deps.Content.Wishes(c.Request().Context(), false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) deleteWish(c echo.Context) error {
	return deleted(c, func(c echo.Context, id string) error {
		return s.deps.Content.DeleteWish(c.Request().Context(), id)
	})
}

func (s *Server) saveLetter(c echo.Context) error {
	in, err := bind[content.LetterInput](c)
	if err != nil {
		return err
	}
	l, err := s.deps.Content.SaveLetter(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

func (s *Server) saveMusic(c echo.Context) error {
	in, err := bind[content.MusicInput](c)
	if err != nil {
		return err
	}
	m, err := s.deps.Content.SaveMusic(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// importRequest names a remote vCard source. Local paths are only accepted by the CLI.
type importRequest struct {
	URL  string `json:"url" validate:"required,url"`
	User string `json:"user"`
	Pass string `json:"pass"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

// importVCard accepts either a raw text/vcard body or a JSON importRequest.
func (s *Server) importVCard(c echo.Context) error {
	if s.deps.Importer == nil {
		return errors.New(config.ErrFetcherMissing)
	}
	ctx := c.Request().Context()

	var inputs []content.SpecialDateInput
	mediaType, _, _ := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
	switch mediaType {
	case config.MimeVCard, config.MimeXVCard:
		var err error
		inputs, err = s.deps.Importer.Parse(ctx, c.Request().Body)
		if err != nil {
			return err
		}
	default:
		in, err := bind[importRequest](c)
		if err != nil {
			return err
		}
		src := calendar.Source{Location: in.URL, User: in.User, Pass: in.Pass}
		if !src.IsRemote() {
			return echo.NewHTTPError(http.StatusBadRequest, config.ErrImportSource)
		}
		inputs, err = s.deps.Importer.Load(ctx, src)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error()).SetInternal(err)
		}
	}

	n, err := s.deps.Content.ImportSpecialDates(ctx, inputs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, importResponse{Imported: n})
}
