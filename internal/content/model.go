package content

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tartampluch/go-valentine/internal/engine"
)

// Timestamp is stored as unix microseconds and serialised as RFC 3339.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to the stored precision.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Microsecond).UTC()}
}

// Value implements driver.Valuer.
func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return int64(0), nil
	}
	return t.UnixMicro(), nil
}

// Scan implements sql.Scanner.
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case int64:
		if v == 0 {
			t.Time = time.Time{}
			return nil
		}
		t.Time = time.UnixMicro(v).UTC()
	default:
		return fmt.Errorf("timestamp: unsupported source %T", src)
	}
	return nil
}

// StringList is a []string persisted as a JSON array in a TEXT column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("string list: unsupported source %T", src)
	}
	return json.Unmarshal(raw, l)
}

type Photo struct {
	ID           string    `json:"id" db:"id"`
	URL          string    `json:"url" db:"url"`
	Caption      string    `json:"caption,omitempty" db:"caption"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    Timestamp `json:"created_at" db:"created_at"`
}

func (p Photo) Order() int { return p.DisplayOrder }

type Reason struct {
	ID           string `json:"id" db:"id"`
	Content      string `json:"content" db:"content"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
}

func (r Reason) Order() int { return r.DisplayOrder }

type QuizQuestion struct {
	ID            string     `json:"id" db:"id"`
	Question      string     `json:"question" db:"question"`
	CorrectAnswer string     `json:"correct_answer" db:"correct_answer"`
	WrongAnswers  StringList `json:"wrong_answers" db:"wrong_answers"`
	DisplayOrder  int        `json:"display_order" db:"display_order"`
}

func (q QuizQuestion) Order() int { return q.DisplayOrder }

// BucketItem is a "dream" on the shared bucket list.
type BucketItem struct {
	ID           string `json:"id" db:"id"`
	Content      string `json:"content" db:"content"`
	IsCompleted  bool   `json:"is_completed" db:"is_completed"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
}

func (b BucketItem) Order() int { return b.DisplayOrder }

type LoveLetter struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt Timestamp `json:"created_at" db:"created_at"`
}

// SpecialDate is a countdown target. EventDate holds the anchor in its stored form
// (YYYY-MM-DD, or --MM-DD for imported birthdays without a year).
type SpecialDate struct {
	ID           string `json:"id" db:"id"`
	Title        string `json:"title" db:"title"`
	EventDate    string `json:"event_date" db:"event_date"`
	Description  string `json:"description,omitempty" db:"description"`
	Icon         string `json:"icon" db:"icon"`
	IsRecurring  bool   `json:"is_recurring" db:"is_recurring"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
}

func (s SpecialDate) Order() int { return s.DisplayOrder }

// OccurrenceAnchor parses EventDate. Stored values are validated on insert, so a
// parse failure yields the zero anchor.
func (s SpecialDate) OccurrenceAnchor() engine.Anchor {
	a, err := engine.ParseAnchor(s.EventDate)
	if err != nil {
		return engine.Anchor{}
	}
	return a
}

func (s SpecialDate) OccurrenceRecurrence() engine.Recurrence {
	return engine.RecurrenceFrom(s.IsRecurring)
}

type Memory struct {
	ID           string `json:"id" db:"id"`
	MemoryDate   string `json:"memory_date" db:"memory_date"`
	Title        string `json:"title" db:"title"`
	Description  string `json:"description,omitempty" db:"description"`
	PhotoURL     string `json:"photo_url,omitempty" db:"photo_url"`
	Category     string `json:"category" db:"category"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
}

func (m Memory) Order() int { return m.DisplayOrder }

// Anchor returns the memory day. Memories always carry a full date.
func (m Memory) Anchor() engine.Anchor {
	a, err := engine.ParseAnchor(m.MemoryDate)
	if err != nil {
		return engine.Anchor{}
	}
	return a
}

// Wish is a note pinned to the sky board. X and Y are fractions of the board size.
type Wish struct {
	ID        string    `json:"id" db:"id"`
	Wish      string    `json:"wish" db:"wish"`
	X         float64   `json:"x" db:"x"`
	Y         float64   `json:"y" db:"y"`
	CreatedAt Timestamp `json:"created_at" db:"created_at"`
}
