package content

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/engine"
)

// Entity kinds, used in logs and change notifications.
const (
	KindPhoto       = "photo"
	KindReason      = "reason"
	KindQuiz        = "quiz"
	KindBucket      = "bucket"
	KindSpecialDate = "special_date"
	KindMemory      = "memory"
	KindWish        = "wish"
	KindLetter      = "letter"
	KindMusic       = "music"
)

// ChangeFunc is notified after every successful mutation.
type ChangeFunc func(ctx context.Context, kind string)

// Service holds the content rules shared by the HTTP handlers and the CLI.
type Service struct {
	repo     Repository
	clock    engine.Clock
	shuffle  Shuffler
	together time.Time
	onChange []ChangeFunc
	log      *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

func WithClock(c engine.Clock) Option { return func(s *Service) { s.clock = c } }

func WithShuffler(f Shuffler) Option { return func(s *Service) { s.shuffle = f } }

// WithTogetherSince sets the relationship start used by Stats.
func WithTogetherSince(t time.Time) Option { return func(s *Service) { s.together = t } }

// OnChange registers a mutation listener. Listeners run synchronously.
func OnChange(f ChangeFunc) Option {
	return func(s *Service) { s.onChange = append(s.onChange, f) }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		clock:   engine.RealClock{},
		shuffle: RandomShuffle,
		log:     slog.With(config.LogKeyComponent, config.CompContent),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock exposes the service clock so live views tick on the same time source.
func (s *Service) Clock() engine.Clock { return s.clock }

func (s *Service) changed(ctx context.Context, kind, msg, id string) {
	s.log.Info(msg, config.LogKeyKind, kind, config.LogKeyID, id)
	for _, f := range s.onChange {
		f(ctx, kind)
	}
}

func (s *Service) now() Timestamp { return NewTimestamp(s.clock.Now()) }

// --- Photos ---

func (s *Service) Photos(ctx context.Context) ([]Photo, error) {
	items, err := s.repo.ListPhotos(ctx)
	if err != nil {
		return nil, err
	}
	engine.SortByDisplayOrder(items)
	return items, nil
}

func (s *Service) AddPhoto(ctx context.Context, in PhotoInput) (Photo, error) {
	p, err := in.normalize()
	if err != nil {
		return Photo{}, err
	}
	p.CreatedAt = s.now()
	if err := s.repo.CreatePhoto(ctx, &p); err != nil {
		return Photo{}, err
	}
	s.changed(ctx, KindPhoto, config.MsgContentAdded, p.ID)
	return p, nil
}

func (s *Service) DeletePhoto(ctx context.Context, id string) error {
	return s.delete(ctx, KindPhoto, id, s.repo.DeletePhoto)
}

// --- Reasons ---

func (s *Service) Reasons(ctx context.Context) ([]Reason, error) {
	items, err := s.repo.ListReasons(ctx)
	if err != nil {
		return nil, err
	}
	engine.SortByDisplayOrder(items)
	return items, nil
}

func (s *Service) AddReason(ctx context.Context, in ReasonInput) (Reason, error) {
	r, err := in.normalize()
	if err != nil {
		return Reason{}, err
	}
	if err := s.repo.CreateReason(ctx, &r); err != nil {
		return Reason{}, err
	}
	s.changed(ctx, KindReason, config.MsgContentAdded, r.ID)
	return r, nil
}

func (s *Service) DeleteReason(ctx context.Context, id string) error {
	return s.delete(ctx, KindReason, id, s.repo.DeleteReason)
}

// --- Quiz ---

// QuizQuestions lists the questions with their answer key, for the admin panel.
func (s *Service) QuizQuestions(ctx context.Context) ([]QuizQuestion, error) {
	items, err := s.repo.ListQuizQuestions(ctx)
	if err != nil {
		return nil, err
	}
	engine.SortByDisplayOrder(items)
	return items, nil
}

// QuizCards lists the questions as played, each with its answers shuffled.
func (s *Service) QuizCards(ctx context.Context) ([]QuizCard, error) {
	items, err := s.QuizQuestions(ctx)
	if err != nil {
		return nil, err
	}
	cards := make([]QuizCard, 0, len(items))
	for _, q := range items {
		cards = append(cards, cardOf(q, s.shuffle))
	}
	return cards, nil
}

func (s *Service) AddQuizQuestion(ctx context.Context, in QuizInput) (QuizQuestion, error) {
	q, err := in.normalize()
	if err != nil {
		return QuizQuestion{}, err
	}
	if err := s.repo.CreateQuizQuestion(ctx, &q); err != nil {
		return QuizQuestion{}, err
	}
	s.changed(ctx, KindQuiz, config.MsgContentAdded, q.ID)
	return q, nil
}

func (s *Service) DeleteQuizQuestion(ctx context.Context, id string) error {
	return s.delete(ctx, KindQuiz, id, s.repo.DeleteQuizQuestion)
}

// CheckAnswer grades a single answer.
func (s *Service) CheckAnswer(ctx context.Context, id, answer string) (AnswerResult, error) {
	q, err := s.repo.GetQuizQuestion(ctx, id)
	if err != nil {
		return AnswerResult{}, err
	}
	return grade(q, answer), nil
}

// --- Bucket list ---

// Progress summarises how many dreams came true.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// ProgressOf computes the rounded completion percentage. Empty lists are 0%.
func ProgressOf(items []BucketItem) Progress {
	p := Progress{Total: len(items)}
	for _, it := range items {
		if it.IsCompleted {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(float64(p.Completed) / float64(p.Total) * 100))
	}
	return p
}

func (s *Service) BucketItems(ctx context.Context) ([]BucketItem, error) {
	items, err := s.repo.ListBucketItems(ctx)
	if err != nil {
		return nil, err
	}
	engine.SortByDisplayOrder(items)
	return items, nil
}

func (s *Service) BucketProgress(ctx context.Context) (Progress, error) {
	items, err := s.repo.ListBucketItems(ctx)
	if err != nil {
		return Progress{}, err
	}
	return ProgressOf(items), nil
}

func (s *Service) AddBucketItem(ctx context.Context, in BucketInput) (BucketItem, error) {
	b, err := in.normalize()
	if err != nil {
		return BucketItem{}, err
	}
	if err := s.repo.CreateBucketItem(ctx, &b); err != nil {
		return BucketItem{}, err
	}
	s.changed(ctx, KindBucket, config.MsgContentAdded, b.ID)
	return b, nil
}

func (s *Service) ToggleBucketItem(ctx context.Context, id string) (BucketItem, error) {
	b, err := s.repo.ToggleBucketItem(ctx, id)
	if err != nil {
		return BucketItem{}, err
	}
	s.changed(ctx, KindBucket, config.MsgContentUpdated, b.ID)
	return b, nil
}

func (s *Service) DeleteBucketItem(ctx context.Context, id string) error {
	return s.delete(ctx, KindBucket, id, s.repo.DeleteBucketItem)
}

// --- Special dates ---

func (s *Service) SpecialDates(ctx context.Context) ([]SpecialDate, error) {
	items, err := s.repo.ListSpecialDates(ctx)
	if err != nil {
		return nil, err
	}
	engine.SortByDisplayOrder(items)
	return items, nil
}

func (s *Service) AddSpecialDate(ctx context.Context, in SpecialDateInput) (SpecialDate, error) {
	d, err := in.normalize()
	if err != nil {
		return SpecialDate{}, err
	}
	if err := s.repo.CreateSpecialDate(ctx, &d); err != nil {
		return SpecialDate{}, err
	}
	s.changed(ctx, KindSpecialDate, config.MsgContentAdded, d.ID)
	return d, nil
}

// ImportSpecialDates adds every valid input and skips the rest. It returns the
// number of dates created; only storage errors abort the run.
func (s *Service) ImportSpecialDates(ctx context.Context, inputs []SpecialDateInput) (int, error) {
	added := 0
	for _, in := range inputs {
		if _, err := s.AddSpecialDate(ctx, in); err != nil {
			if errors.Is(err, ErrValidation) {
				s.log.Warn(config.MsgSkippedDate, config.LogKeyName, in.Title, config.LogKeyError, err)
				continue
			}
			return added, err
		}
		added++
	}
	return added, nil
}

func (s *Service) DeleteSpecialDate(ctx context.Context, id string) error {
	return s.delete(ctx, KindSpecialDate, id, s.repo.DeleteSpecialDate)
}

// CountdownView is what the countdown page renders on each tick.
type CountdownView struct {
	Now   time.Time                      `json:"now"`
	Next  *engine.Upcoming[SpecialDate]  `json:"next,omitempty"`
	Dates []engine.Upcoming[SpecialDate] `json:"dates"`
}

// BuildCountdown derives the view for one tick. dates must be in display order.
func BuildCountdown(dates []SpecialDate, now time.Time) CountdownView {
	view := CountdownView{Now: now, Dates: engine.UpcomingOf(dates, now)}
	if next, ok := engine.NextEvent(view.Dates); ok {
		view.Next = &next
	}
	return view
}

func (s *Service) Countdown(ctx context.Context) (CountdownView, error) {
	dates, err := s.SpecialDates(ctx)
	if err != nil {
		return CountdownView{}, err
	}
	return BuildCountdown(dates, s.clock.Now()), nil
}

// --- Memories ---

// Memories lists memories by date; the admin panel shows them newest first.
func (s *Service) Memories(ctx context.Context, ascending bool) ([]Memory, error) {
	items, err := s.repo.ListMemories(ctx, ascending)
	if err != nil {
		return nil, err
	}
	engine.SortByAnchor(items, Memory.Anchor, ascending)
	return items, nil
}

// Timeline groups memories by year, oldest first.
func (s *Service) Timeline(ctx context.Context) ([]engine.YearGroup[Memory], error) {
	items, err := s.Memories(ctx, true)
	if err != nil {
		return nil, err
	}
	return engine.GroupByYear(items, Memory.Anchor), nil
}

func (s *Service) AddMemory(ctx context.Context, in MemoryInput) (Memory, error) {
	m, err := in.normalize()
	if err != nil {
		return Memory{}, err
	}
	if err := s.repo.CreateMemory(ctx, &m); err != nil {
		return Memory{}, err
	}
	s.changed(ctx, KindMemory, config.MsgContentAdded, m.ID)
	return m, nil
}

func (s *Service) DeleteMemory(ctx context.Context, id string) error {
	return s.delete(ctx, KindMemory, id, s.repo.DeleteMemory)
}

// --- Wishes ---

// Wishes lists the sky board. The board shows oldest first, the admin newest first.
func (s *Service) Wishes(ctx context.Context, ascending bool) ([]Wish, error) {
	return s.repo.ListWishes(ctx, ascending)
}

func (s *Service) AddWish(ctx context.Context, in WishInput) (Wish, error) {
	w, err := in.normalize()
	if err != nil {
		return Wish{}, err
	}
	w.CreatedAt = s.now()
	if err := s.repo.CreateWish(ctx, &w); err != nil {
		return Wish{}, err
	}
	s.changed(ctx, KindWish, config.MsgContentAdded, w.ID)
	return w, nil
}

func (s *Service) DeleteWish(ctx context.Context, id string) error {
	return s.delete(ctx, KindWish, id, s.repo.DeleteWish)
}

// --- Love letter ---

// Letter returns the most recent letter, or ErrNotFound.
func (s *Service) Letter(ctx context.Context) (LoveLetter, error) {
	return s.repo.LatestLetter(ctx)
}

// SaveLetter rewrites the existing letter, or writes the first one.
func (s *Service) SaveLetter(ctx context.Context, in LetterInput) (LoveLetter, error) {
	l, err := in.normalize()
	if err != nil {
		return LoveLetter{}, err
	}

	current, err := s.repo.LatestLetter(ctx)
	switch {
	case err == nil:
		l.ID = current.ID
		l.CreatedAt = current.CreatedAt
	case errors.Is(err, ErrNotFound):
		l.CreatedAt = s.now()
	default:
		return LoveLetter{}, err
	}

	if err := s.repo.SaveLetter(ctx, &l); err != nil {
		return LoveLetter{}, err
	}
	s.changed(ctx, KindLetter, config.MsgContentUpdated, l.ID)
	return l, nil
}

// --- Music ---

// Music is the background song, with its embeddable player URL.
type Music struct {
	URL      string `json:"url"`
	EmbedURL string `json:"embed_url"`
}

func (s *Service) Music(ctx context.Context) (Music, error) {
	url, err := s.repo.Setting(ctx, config.SettingMusicURL)
	if err != nil {
		return Music{}, err
	}
	return Music{URL: url, EmbedURL: SpotifyEmbedURL(url)}, nil
}

// SaveMusic stores the URL as given. An empty URL clears the music.
func (s *Service) SaveMusic(ctx context.Context, in MusicInput) (Music, error) {
	url := strings.TrimSpace(in.URL)
	if err := s.repo.SetSetting(ctx, config.SettingMusicURL, url); err != nil {
		return Music{}, err
	}
	s.changed(ctx, KindMusic, config.MsgContentUpdated, config.SettingMusicURL)
	return Music{URL: url, EmbedURL: SpotifyEmbedURL(url)}, nil
}

// --- Stats ---

// Stats is the "time together" snapshot.
type Stats struct {
	Since   time.Time      `json:"since"`
	Elapsed engine.Elapsed `json:"elapsed"`
}

// Stats measures the time elapsed since the relationship start.
func (s *Service) Stats() Stats {
	return Stats{Since: s.together, Elapsed: engine.ComputeElapsed(s.together, s.clock.Now())}
}

func (s *Service) delete(ctx context.Context, kind, id string, del func(context.Context, string) error) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id", config.ErrFieldRequired)
	}
	if err := del(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, kind, config.MsgContentDeleted, id)
	return nil
}
