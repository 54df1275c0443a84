package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/content"
	"github.com/tartampluch/go-valentine/internal/engine"
	"github.com/tartampluch/go-valentine/internal/i18n"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

func (s *Server) health(c echo.Context) error {
	resp := healthResponse{
		Status:  config.HTTPMsgStatusOK,
		Version: config.Version,
		Time:    s.deps.Content.Clock().Now().UTC().Format(config.DateFormatRFC3339),
	}
	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(c.Request().Context()); err != nil {
			s.log.Warn(config.ErrDBPing, config.LogKeyError, err)
			resp.Status = config.HTTPMsgStatusDown
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) listPhotos(c echo.Context) error {
	items, err := s.deps.Content.Photos(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) listReasons(c echo.Context) error {
	items, err := s.deps.Content.Reasons(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// --- Quiz ---

type quizResponse struct {
	Cards []content.QuizCard `json:"cards"`
	Total int                `json:"total"`
}

func (s *Server) listQuizCards(c echo.Context) error {
	cards, err := s.deps.Content.QuizCards(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quizResponse{Cards: cards, Total: len(cards)})
}

type answerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

func (s *Server) answerQuiz(c echo.Context) error {
	in, err := bind[answerRequest](c)
	if err != nil {
		return err
	}
	res, err := s.deps.Content.CheckAnswer(c.Request().Context(), c.Param(config.ParamID), in.Answer)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

type resultRequest struct {
	Score int `query:"score" validate:"gte=0"`
	Total int `query:"total" validate:"gte=0,gtefield=Score"`
}

type resultResponse struct {
	Score int    `json:"score"`
	Total int    `json:"total"`
	Tier  string `json:"tier"`
}

// quizResult grades a finished quiz. Scores are kept by the client.
func (s *Server) quizResult(c echo.Context) error {
	in, err := bind[resultRequest](c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resultResponse{Score: in.Score, Total: in.Total, Tier: content.ScoreTier(in.Score, in.Total)})
}

// --- Dreams ---

type dreamsResponse struct {
	Items    []content.BucketItem `json:"items"`
	Progress content.Progress     `json:"progress"`
	Label    string               `json:"label"`
}

func (s *Server) listDreams(c echo.Context) error {
	items, err := s.deps.Content.BucketItems(c.Request().Context())
	if err != nil {
		return err
	}
	p := content.ProgressOf(items)
	return c.JSON(http.StatusOK, dreamsResponse{Items: items, Progress: p, Label: s.localizer(c).Progress(p)})
}

func (s *Server) addDream(c echo.Context) error {
	in, err := bind[content.BucketInput](c)
	if err != nil {
		return err
	}
	item, err := s.deps.Content.AddBucketItem(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (s *Server) toggleDream(c echo.Context) error {
	item, err := s.deps.Content.ToggleBucketItem(c.Request().Context(), c.Param(config.ParamID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// --- Wishes ---

func (s *Server) listWishes(c echo.Context) error {
	items, err := s.deps.Content.Wishes(c.Request().Context(), true)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) addWish(c echo.Context) error {
	in, err := bind[content.WishInput](c)
	if err != nil {
		return err
	}
	w, err := s.deps.Content.AddWish(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, w)
}

// --- Letter, music ---

func (s *Server) getLetter(c echo.Context) error {
	l, err := s.deps.Content.Letter(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

func (s *Server) getMusic(c echo.Context) error {
	m, err := s.deps.Content.Music(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// --- Timeline ---

type timelineResponse struct {
	Groups  []engine.YearGroup[content.Memory] `json:"groups"`
	Summary string                             `json:"summary"`
}

func (s *Server) timeline(c echo.Context) error {
	groups, err := s.deps.Content.Timeline(c.Request().Context())
	if err != nil {
		return err
	}
	if groups == nil {
		groups = []engine.YearGroup[content.Memory]{}
	}
	memories := 0
	for _, g := range groups {
		memories += len(g.Items)
	}
	return c.JSON(http.StatusOK, timelineResponse{
		Groups:  groups,
		Summary: s.localizer(c).Timeline(memories, len(groups)),
	})
}

// --- Countdown, stats ---

// countdownResponse is a CountdownView with its labels. Labels[i] describes Dates[i].
type countdownResponse struct {
	content.CountdownView
	Hero   string   `json:"hero,omitempty"`
	Labels []string `json:"labels"`
	Yearly string   `json:"yearly"`
}

func newCountdownResponse(view content.CountdownView, loc *i18n.Localizer) countdownResponse {
	resp := countdownResponse{
		CountdownView: view,
		Labels:        make([]string, len(view.Dates)),
		Yearly:        loc.Yearly(),
	}
	if resp.Dates == nil {
		resp.Dates = []engine.Upcoming[content.SpecialDate]{}
	}
	for i, d := range view.Dates {
		resp.Labels[i] = loc.Countdown(d.Countdown)
	}
	if view.Next != nil {
		resp.Hero = loc.Hero(view.Next.Item.Title)
	}
	return resp
}

func (s *Server) countdown(c echo.Context) error {
	view, err := s.deps.Content.Countdown(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCountdownResponse(view, s.localizer(c)))
}

type statsResponse struct {
	content.Stats
	Labels i18n.StatsLabels `json:"labels"`
}

func (s *Server) stats(c echo.Context) error {
	st := s.deps.Content.Stats()
	return c.JSON(http.StatusOK, statsResponse{Stats: st, Labels: s.localizer(c).Stats(st.Elapsed)})
}
