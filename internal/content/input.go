package content

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/engine"
)

// Sentinel errors returned (wrapped) by the service and the store.
var (
	ErrNotFound   = errors.New(config.ErrNotFound)
	ErrValidation = errors.New(config.ErrValidation)
)

// Request payloads. The validate tags are enforced at the HTTP edge; the Normalize
// methods re-check after trimming so every caller gets the same rules.

type PhotoInput struct {
	URL     string `json:"url" validate:"required,url"`
	Caption string `json:"caption" validate:"max=500"`
}

type ReasonInput struct {
	Content string `json:"content" validate:"required"`
}

type QuizInput struct {
	Question      string   `json:"question" validate:"required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	WrongAnswers  []string `json:"wrong_answers" validate:"required,min=1"`
}

type BucketInput struct {
	Content string `json:"content" validate:"required"`
}

type LetterInput struct {
	Title   string `json:"title"`
	Content string `json:"content" validate:"required"`
}

type SpecialDateInput struct {
	Title       string `json:"title" validate:"required"`
	EventDate   string `json:"event_date" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	// IsRecurring defaults to true when omitted.
	IsRecurring *bool `json:"is_recurring"`
}

type MemoryInput struct {
	MemoryDate  string `json:"memory_date" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	PhotoURL    string `json:"photo_url" validate:"omitempty,url"`
	Category    string `json:"category"`
}

type WishInput struct {
	Wish string  `json:"wish" validate:"required"`
	X    float64 `json:"x" validate:"gte=0,lte=1"`
	Y    float64 `json:"y" validate:"gte=0,lte=1"`
}

type MusicInput struct {
	URL string `json:"url" validate:"omitempty,url"`
}

func invalid(field, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, reason)
}

func required(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", invalid(field, config.ErrFieldRequired)
	}
	return v, nil
}

func (in PhotoInput) normalize() (Photo, error) {
	url, err := required("url", in.URL)
	if err != nil {
		return Photo{}, err
	}
	return Photo{URL: url, Caption: strings.TrimSpace(in.Caption)}, nil
}

func (in ReasonInput) normalize() (Reason, error) {
	c, err := required("content", in.Content)
	if err != nil {
		return Reason{}, err
	}
	return Reason{Content: c}, nil
}

func (in QuizInput) normalize() (QuizQuestion, error) {
	q, err := required("question", in.Question)
	if err != nil {
		return QuizQuestion{}, err
	}
	correct, err := required("correct_answer", in.CorrectAnswer)
	if err != nil {
		return QuizQuestion{}, err
	}
	wrong := make(StringList, 0, len(in.WrongAnswers))
	for _, w := range in.WrongAnswers {
		if w = strings.TrimSpace(w); w != "" {
			wrong = append(wrong, w)
		}
	}
	if len(wrong) < config.MinWrongAnswer {
		return QuizQuestion{}, invalid("wrong_answers", config.ErrWrongAnswers)
	}
	return QuizQuestion{Question: q, CorrectAnswer: correct, WrongAnswers: wrong}, nil
}

func (in BucketInput) normalize() (BucketItem, error) {
	c, err := required("content", in.Content)
	if err != nil {
		return BucketItem{}, err
	}
	return BucketItem{Content: c}, nil
}

func (in LetterInput) normalize() (LoveLetter, error) {
	c, err := required("content", in.Content)
	if err != nil {
		return LoveLetter{}, err
	}
	return LoveLetter{Title: strings.TrimSpace(in.Title), Content: c}, nil
}

func (in SpecialDateInput) normalize() (SpecialDate, error) {
	title, err := required("title", in.Title)
	if err != nil {
		return SpecialDate{}, err
	}
	raw, err := required("event_date", in.EventDate)
	if err != nil {
		return SpecialDate{}, err
	}

	recurring := true
	if in.IsRecurring != nil {
		recurring = *in.IsRecurring
	}

	anchor, err := engine.ParseAnchor(raw)
	if err != nil {
		return SpecialDate{}, fmt.Errorf("%w: event_date: %w", ErrValidation, err)
	}
	if err := anchor.Validate(engine.RecurrenceFrom(recurring)); err != nil {
		return SpecialDate{}, fmt.Errorf("%w: event_date: %w", ErrValidation, err)
	}

	return SpecialDate{
		Title:       title,
		EventDate:   anchor.String(),
		Description: strings.TrimSpace(in.Description),
		Icon:        pick(in.Icon, config.KnownIcons, config.DefaultIcon),
		IsRecurring: recurring,
	}, nil
}

func (in MemoryInput) normalize() (Memory, error) {
	title, err := required("title", in.Title)
	if err != nil {
		return Memory{}, err
	}
	raw, err := required("memory_date", in.MemoryDate)
	if err != nil {
		return Memory{}, err
	}
	anchor, err := engine.ParseAnchor(raw)
	if err != nil {
		return Memory{}, fmt.Errorf("%w: memory_date: %w", ErrValidation, err)
	}
	if err := anchor.Validate(engine.OneTime); err != nil {
		return Memory{}, fmt.Errorf("%w: memory_date: %w", ErrValidation, err)
	}
	return Memory{
		MemoryDate:  anchor.String(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		PhotoURL:    strings.TrimSpace(in.PhotoURL),
		Category:    pick(in.Category, config.KnownCategories, config.DefaultMemoryCategory),
	}, nil
}

func (in WishInput) normalize() (Wish, error) {
	text, err := required("wish", in.Wish)
	if err != nil {
		return Wish{}, err
	}
	if in.X < 0 || in.X > 1 || in.Y < 0 || in.Y > config.WishMaxY {
		return Wish{}, invalid("position", config.ErrWishPosition)
	}
	return Wish{Wish: text, X: in.X, Y: in.Y}, nil
}

// pick returns value when it is one of known, and fallback otherwise.
func pick(value string, known []string, fallback string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if slices.Contains(known, v) {
		return v
	}
	return fallback
}
