package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpotifyEmbedURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"track",
			"https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=abc",
			"https://open.spotify.com/embed/track/4uLU6hMCjMI75M1A2tKUQC?utm_source=generator&theme=0",
		},
		{
			"album",
			"https://open.spotify.com/album/1DFixLWuPkv3KT3TnV35m3",
			"https://open.spotify.com/embed/album/1DFixLWuPkv3KT3TnV35m3?utm_source=generator&theme=0",
		},
		{
			"playlist",
			"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			"https://open.spotify.com/embed/playlist/37i9dQZF1DXcBWIGoYBM5M?utm_source=generator&theme=0",
		},
		{"other site", "https://youtu.be/dQw4w9WgXcQ", "https://youtu.be/dQw4w9WgXcQ"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SpotifyEmbedURL(tt.in))
		})
	}
}

func TestScoreTier(t *testing.T) {
	assert.Equal(t, TierPerfect, ScoreTier(5, 5))
	assert.Equal(t, TierAmazing, ScoreTier(4, 5))
	assert.Equal(t, TierGood, ScoreTier(3, 5))
	assert.Equal(t, TierMore, ScoreTier(2, 5))
	assert.Equal(t, TierMore, ScoreTier(0, 0))
}

func TestCardOf_ContainsEveryAnswer(t *testing.T) {
	q := QuizQuestion{ID: "q1", Question: "?", CorrectAnswer: "A", WrongAnswers: StringList{"B", "C"}}

	reverse := func(a []string) {
		for i, j := 0, len(a)-1; i < j; i, j = i+1, j-1 {
			a[i], a[j] = a[j], a[i]
		}
	}
	card := cardOf(q, reverse)
	assert.Equal(t, []string{"C", "B", "A"}, card.Answers)

	card = cardOf(q, RandomShuffle)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, card.Answers)
	assert.Equal(t, StringList{"B", "C"}, q.WrongAnswers, "question is not mutated")
}

func TestGrade(t *testing.T) {
	q := QuizQuestion{CorrectAnswer: "Lyon"}
	assert.True(t, grade(q, " Lyon ").Correct)
	assert.False(t, grade(q, "Paris").Correct)
	assert.Equal(t, "Lyon", grade(q, "Paris").CorrectAnswer)
}

func TestProgressOf(t *testing.T) {
	assert.Equal(t, Progress{}, ProgressOf(nil))

	items := []BucketItem{{IsCompleted: true}, {}, {}}
	assert.Equal(t, Progress{Completed: 1, Total: 3, Percent: 33}, ProgressOf(items))

	items = []BucketItem{{IsCompleted: true}, {IsCompleted: true}, {}}
	assert.Equal(t, 67, ProgressOf(items).Percent)
}

func TestQuizInput_Normalize(t *testing.T) {
	_, err := QuizInput{Question: "Q", CorrectAnswer: "A", WrongAnswers: []string{" ", ""}}.normalize()
	assert.ErrorIs(t, err, ErrValidation, "blank wrong answers do not count")

	q, err := QuizInput{Question: " Q ", CorrectAnswer: "A", WrongAnswers: []string{"", " B "}}.normalize()
	require.NoError(t, err)
	assert.Equal(t, "Q", q.Question)
	assert.Equal(t, StringList{"B"}, q.WrongAnswers)
}

func TestSpecialDateInput_Normalize(t *testing.T) {
	no := false

	tests := []struct {
		name      string
		in        SpecialDateInput
		wantErr   bool
		wantDate  string
		wantIcon  string
		recurring bool
	}{
		{"defaults", SpecialDateInput{Title: "Anniversary", EventDate: "2025-12-04"}, false, "2025-12-04", "heart", true},
		{"known icon", SpecialDateInput{Title: "B", EventDate: "2025-07-01", Icon: "Cake"}, false, "2025-07-01", "cake", true},
		{"unknown icon", SpecialDateInput{Title: "B", EventDate: "2025-07-01", Icon: "rocket"}, false, "2025-07-01", "heart", true},
		{"no year annual", SpecialDateInput{Title: "B", EventDate: "--02-29"}, false, "--02-29", "heart", true},
		{"no year one-time", SpecialDateInput{Title: "B", EventDate: "--02-29", IsRecurring: &no}, true, "", "", false},
		{"bad date", SpecialDateInput{Title: "B", EventDate: "2025-02-30"}, true, "", "", false},
		{"blank title", SpecialDateInput{Title: "  ", EventDate: "2025-02-14"}, true, "", "", false},
		{"basic layout", SpecialDateInput{Title: "B", EventDate: "20250214", IsRecurring: &no}, false, "2025-02-14", "heart", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.in.normalize()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, d.EventDate)
			assert.Equal(t, tt.wantIcon, d.Icon)
			assert.Equal(t, tt.recurring, d.IsRecurring)
		})
	}
}

func TestMemoryInput_Normalize(t *testing.T) {
	m, err := MemoryInput{MemoryDate: "2024-06-01", Title: "Picnic", Category: "travel"}.normalize()
	require.NoError(t, err)
	assert.Equal(t, "travel", m.Category)

	m, err = MemoryInput{MemoryDate: "2024-06-01", Title: "Picnic"}.normalize()
	require.NoError(t, err)
	assert.Equal(t, "milestone", m.Category)

	_, err = MemoryInput{MemoryDate: "--06-01", Title: "Picnic"}.normalize()
	assert.ErrorIs(t, err, ErrValidation, "memories need a year")
}

func TestWishInput_Normalize(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		ok   bool
	}{
		{"center", 0.5, 0.5, true},
		{"corners", 0, 0, true},
		{"cutoff", 1, 0.85, true},
		{"input bar", 0.5, 0.9, false},
		{"left of board", -0.1, 0.5, false},
		{"right of board", 1.1, 0.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WishInput{Wish: "more trips", X: tt.x, Y: tt.y}.normalize()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestTimestamp_Scan(t *testing.T) {
	var ts Timestamp
	require.NoError(t, ts.Scan(int64(1_739_557_800_000_000)))
	assert.Equal(t, time.Date(2025, 2, 14, 18, 30, 0, 0, time.UTC), ts.Time)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan("nope"))
}

func TestStringList_Scan(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(`["a","b"]`))
	assert.Equal(t, StringList{"a", "b"}, l)

	require.NoError(t, l.Scan([]byte(`[]`)))
	assert.Empty(t, l)

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
