// Package i18n localizes the labels shown next to countdowns, stats and progress.
package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/content"
	"github.com/tartampluch/go-valentine/internal/engine"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator holds the message bundle and the languages it was built from.
type Translator struct {
	bundle    *goi18n.Bundle
	languages []string
	matcher   language.Matcher
}

// New loads every embedded active.<lang>.json file. A broken file is logged and
// skipped; the default language is always available.
func New() *Translator {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	tags := []language.Tag{language.English}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		tag, err := language.Parse(langCode)
		if langCode == "" || err != nil {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)

		t.languages = append(t.languages, langCode)
		if tag != language.English {
			tags = append(tags, tag)
		}
	}

	t.matcher = language.NewMatcher(tags)
	return t
}

// Languages lists the loaded language codes.
func (t *Translator) Languages() []string { return t.languages }

// Match picks the best loaded language. An explicit ?lang= value wins over the
// Accept-Language header; anything unsupported falls back to English.
func (t *Translator) Match(query, acceptLanguage string) string {
	var prefs []language.Tag
	if query != "" {
		if tag, err := language.Parse(query); err == nil {
			prefs = append(prefs, tag)
		}
	}
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
			prefs = append(prefs, tags...)
		}
	}
	if len(prefs) == 0 {
		return config.DefaultLanguage
	}

	tag, _, conf := t.matcher.Match(prefs...)
	if conf == language.No {
		return config.DefaultLanguage
	}
	base, _ := tag.Base()
	return base.String()
}

// Localizer returns a localizer for lang.
func (t *Translator) Localizer(lang string) *Localizer {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	return &Localizer{lang: lang, loc: goi18n.NewLocalizer(t.bundle, lang)}
}

// Localizer renders messages in one language.
type Localizer struct {
	lang string
	loc  *goi18n.Localizer
}

// Lang returns the language code the localizer was built for.
func (l *Localizer) Lang() string { return l.lang }

// Msg translates key. A missing key is returned verbatim.
func (l *Localizer) Msg(key string, data map[string]any) string {
	if l == nil || l.loc == nil {
		return key
	}
	msg, err := l.loc.Localize(&goi18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyLang, l.lang,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// Countdown labels a countdown the way the special dates list shows it.
func (l *Localizer) Countdown(c engine.Countdown) string {
	switch {
	case c.IsToday:
		return l.Msg(config.TKeyCountdownToday, nil)
	case c.IsPast:
		return l.Msg(config.TKeyCountdownPast, nil)
	}
	return l.Msg(config.TKeyCountdownRemaining, map[string]any{
		"Days":    c.Days,
		"Hours":   c.Hours,
		"Minutes": c.Minutes,
	})
}

// Yearly is the badge shown on recurring dates.
func (l *Localizer) Yearly() string { return l.Msg(config.TKeyCountdownYearly, nil) }

// Hero titles the next upcoming date.
func (l *Localizer) Hero(title string) string {
	return l.Msg(config.TKeyCountdownHero, map[string]any{"Title": title})
}

// StatsLabels are the captions of the together-since counters.
type StatsLabels struct {
	Days   string `json:"days"`
	Clock  string `json:"clock"`
	Weeks  string `json:"weeks"`
	Months string `json:"months"`
}

// Stats captions an elapsed duration.
func (l *Localizer) Stats(e engine.Elapsed) StatsLabels {
	return StatsLabels{
		Days:   l.Msg(config.TKeyStatsDays, map[string]any{"Days": e.Days}),
		Clock:  l.Msg(config.TKeyStatsClock, nil),
		Weeks:  l.Msg(config.TKeyStatsWeeks, map[string]any{"Weeks": e.Weeks}),
		Months: l.Msg(config.TKeyStatsMonths, map[string]any{"Months": e.Months}),
	}
}

// Progress captions the dream list progress bar.
func (l *Localizer) Progress(p content.Progress) string {
	return l.Msg(config.TKeyDreamsProgress, map[string]any{"Completed": p.Completed, "Total": p.Total})
}

// Timeline summarizes the memory timeline.
func (l *Localizer) Timeline(memories, years int) string {
	return l.Msg(config.TKeyTimelineSummary, map[string]any{"Memories": memories, "Years": years})
}

// EventSummary titles a calendar event.
func (l *Localizer) EventSummary(d content.SpecialDate) string {
	return l.Msg(config.TKeyEvtSummary, map[string]any{"Title": d.Title})
}

// BirthdayTitle and AnniversaryTitle name imported vCard dates.
func (l *Localizer) BirthdayTitle(name string) string {
	return l.Msg(config.TKeyImportBirthday, map[string]any{"Name": name})
}

func (l *Localizer) AnniversaryTitle(name string) string {
	return l.Msg(config.TKeyImportAnniversary, map[string]any{"Name": name})
}
