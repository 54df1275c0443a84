package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/emersion/go-vcard"

	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/content"
	"github.com/tartampluch/go-valentine/internal/engine"
)

// Source names a vCard stream: a local path or an http(s) URL.
type Source struct {
	Location string
	User     string
	Pass     string
}

// IsRemote reports whether the source is fetched over HTTP.
func (s Source) IsRemote() bool {
	l := strings.ToLower(s.Location)
	return strings.HasPrefix(l, config.SchemeHTTP+"://") || strings.HasPrefix(l, config.SchemeHTTPS+"://")
}

// Importer turns vCard birthdays and anniversaries into special dates.
type Importer struct {
	Fetcher VCardFetcher

	// FormatBirthday and FormatAnniversary build the date titles. They default
	// to the English formats.
	FormatBirthday    func(name string) string
	FormatAnniversary func(name string) string
}

// Open acquires the stream named by src.
func (im *Importer) Open(ctx context.Context, src Source) (io.ReadCloser, error) {
	if src.Location == "" {
		return nil, errors.New(config.ErrLocalPathEmpty)
	}
	if !src.IsRemote() {
		return os.Open(src.Location)
	}
	if im.Fetcher == nil {
		return nil, errors.New(config.ErrFetcherMissing)
	}
	return im.Fetcher.Fetch(ctx, src.Location, src.User, src.Pass)
}

// Load opens src and parses it.
func (im *Importer) Load(ctx context.Context, src Source) ([]content.SpecialDateInput, error) {
	r, err := im.Open(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = r.Close() }()

	return im.Parse(ctx, r)
}

// Parse decodes a vCard stream. Malformed cards and unparseable dates are
// skipped and logged, so one bad contact does not block the import.
func (im *Importer) Parse(ctx context.Context, r io.Reader) ([]content.SpecialDateInput, error) {
	decoder := vcard.NewDecoder(r)
	recurring := true
	var out []content.SpecialDateInput
	processed := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyError, err)
			// A truncated stream has nothing left to resync on.
			if errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			continue
		}
		processed++

		name := cardName(card)
		fields := []struct {
			field  string
			icon   string
			format func(string) string
		}{
			{config.VCardBDAY, config.BirthdayIcon, im.birthdayTitle},
			{config.VCardAnniversary, config.DefaultIcon, im.anniversaryTitle},
		}
		for _, f := range fields {
			prop := card.Get(f.field)
			if prop == nil || strings.TrimSpace(prop.Value) == "" {
				continue
			}
			anchor, err := engine.ParseAnchor(prop.Value)
			if err != nil {
				slog.Debug(config.MsgSkippedDate,
					config.LogKeyComponent, config.CompCalendar,
					config.LogKeyValue, prop.Value)
				continue
			}
			out = append(out, content.SpecialDateInput{
				Title:       f.format(name),
				EventDate:   anchor.String(),
				Icon:        f.icon,
				IsRecurring: &recurring,
			})
		}
	}

	slog.Info(config.MsgImportDone,
		config.LogKeyComponent, config.CompCalendar,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, processed),
			slog.Int(config.LogKeyFound, len(out)),
		),
	)
	return out, nil
}

func (im *Importer) birthdayTitle(name string) string {
	if im.FormatBirthday != nil {
		return im.FormatBirthday(name)
	}
	return fmt.Sprintf(config.FormatBirthday, name)
}

func (im *Importer) anniversaryTitle(name string) string {
	if im.FormatAnniversary != nil {
		return im.FormatAnniversary(name)
	}
	return fmt.Sprintf(config.FormatAnniversary, name)
}

// cardName prefers FN (formatted) over N (structured).
func cardName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && strings.TrimSpace(fn.Value) != "" {
		return strings.TrimSpace(fn.Value)
	}
	if n := card.Get(config.VCardN); n != nil && strings.TrimSpace(n.Value) != "" {
		return strings.TrimSpace(n.Value)
	}
	return config.FallbackName
}
