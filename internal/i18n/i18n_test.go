package i18n_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/content"
	"github.com/tartampluch/go-valentine/internal/engine"
	"github.com/tartampluch/go-valentine/internal/i18n"
)

var translationKeys = []string{
	config.TKeyCountdownToday,
	config.TKeyCountdownRemaining,
	config.TKeyCountdownPast,
	config.TKeyCountdownYearly,
	config.TKeyCountdownHero,
	config.TKeyStatsDays,
	config.TKeyStatsClock,
	config.TKeyStatsWeeks,
	config.TKeyStatsMonths,
	config.TKeyDreamsProgress,
	config.TKeyTimelineSummary,
	config.TKeyEvtSummary,
	config.TKeyImportBirthday,
	config.TKeyImportAnniversary,
}

// TestI18nIntegrity ensures every translation key defined in config.go exists
// in each locale file, and that locale files carry no orphan keys.
func TestI18nIntegrity(t *testing.T) {
	defined := make(map[string]bool, len(translationKeys))
	for _, k := range translationKeys {
		defined[k] = true
	}

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			raw, err := os.ReadFile(filepath.Join("locales", "active."+lang+".json"))
			require.NoError(t, err, "Must load locale file")

			var jsonMap map[string]any
			require.NoError(t, json.Unmarshal(raw, &jsonMap), "JSON must be valid")

			for key := range defined {
				assert.Containsf(t, jsonMap, key, "Key '%s' defined in config.go is missing", key)
			}
			for jsonKey := range jsonMap {
				if strings.HasPrefix(jsonKey, "_") {
					continue
				}
				assert.Truef(t, defined[jsonKey], "Key '%s' is not defined in config.go", jsonKey)
			}
		})
	}
}

func TestTranslator_Languages(t *testing.T) {
	tr := i18n.New()
	assert.ElementsMatch(t, config.SupportedLanguages, tr.Languages())
}

func TestTranslator_Match(t *testing.T) {
	tr := i18n.New()

	tests := []struct {
		name   string
		query  string
		accept string
		want   string
	}{
		{"Nothing", "", "", "en"},
		{"Query", "fr", "", "fr"},
		{"QueryWinsOverHeader", "en", "fr-FR,fr;q=0.9", "en"},
		{"Header", "", "fr-CA,fr;q=0.9,en;q=0.8", "fr"},
		{"Unsupported", "de", "", "en"},
		{"Garbage", "!!", "???", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Match(tt.query, tt.accept))
		})
	}
}

func TestLocalizer_Countdown(t *testing.T) {
	en := i18n.New().Localizer("en")
	fr := i18n.New().Localizer("fr")

	remaining := engine.Countdown{Days: 14, Hours: 14, Minutes: 5}
	assert.Equal(t, "14 days, 14h 5m", en.Countdown(remaining))
	assert.Equal(t, "14 jours, 14h 5min", fr.Countdown(remaining))

	assert.Equal(t, "Today!", en.Countdown(engine.Countdown{IsToday: true}))
	assert.Equal(t, "Already happened", en.Countdown(engine.Countdown{IsPast: true}))
	assert.Equal(t, "Every year", en.Yearly())
	assert.Equal(t, "Next up: Anniversary", en.Hero("Anniversary"))
}

func TestLocalizer_Labels(t *testing.T) {
	en := i18n.New().Localizer("")
	assert.Equal(t, "en", en.Lang())

	labels := en.Stats(engine.Elapsed{Days: 72, Weeks: 10, Months: 2})
	assert.Equal(t, "72 days together", labels.Days)
	assert.Equal(t, "10 weeks", labels.Weeks)
	assert.Equal(t, "2 months", labels.Months)
	assert.NotEmpty(t, labels.Clock)

	assert.Equal(t, "1 of 3 dreams achieved", en.Progress(content.Progress{Completed: 1, Total: 3, Percent: 33}))
	assert.Equal(t, "4 memories over 2 years", en.Timeline(4, 2))
	assert.Equal(t, "♥ Us", en.EventSummary(content.SpecialDate{Title: "Us"}))
	assert.Equal(t, "Léa's Birthday", en.BirthdayTitle("Léa"))
	assert.Equal(t, "Anniversaire de Léa", i18n.New().Localizer("fr").BirthdayTitle("Léa"))
}

func TestLocalizer_MissingKey(t *testing.T) {
	en := i18n.New().Localizer("en")
	assert.Equal(t, "no_such_key", en.Msg("no_such_key", nil))

	var nilLoc *i18n.Localizer
	assert.Equal(t, "x", nilLoc.Msg("x", nil))
}

func TestLocalizer_UnknownLanguageFallsBack(t *testing.T) {
	de := i18n.New().Localizer("de")
	assert.Equal(t, "Today!", de.Countdown(engine.Countdown{IsToday: true}))
}
