package calendar_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-valentine/internal/calendar"
	"github.com/tartampluch/go-valentine/internal/config"
)

// MockFetcher simulates the network layer for unit tests using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the calendar.VCardFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func remoteImporter(body string) (*calendar.Importer, *MockFetcher) {
	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(body)), nil)
	return &calendar.Importer{Fetcher: f}, f
}

func TestImporter_Web_BirthdayAndAnniversary(t *testing.T) {
	vcardContent := "BEGIN:VCARD\nVERSION:4.0\nFN:Jane Doe\nBDAY:1995-03-02\nANNIVERSARY:20201204\nEND:VCARD"

	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, "https://dav.example.com/us.vcf", "me", "secret").
		Return(io.NopCloser(strings.NewReader(vcardContent)), nil)
	im := &calendar.Importer{Fetcher: f}

	dates, err := im.Load(context.Background(), calendar.Source{
		Location: "https://dav.example.com/us.vcf",
		User:     "me",
		Pass:     "secret",
	})
	require.NoError(t, err)
	require.Len(t, dates, 2)

	assert.Equal(t, "Jane Doe's Birthday", dates[0].Title)
	assert.Equal(t, "1995-03-02", dates[0].EventDate)
	assert.Equal(t, config.BirthdayIcon, dates[0].Icon)
	require.NotNil(t, dates[0].IsRecurring)
	assert.True(t, *dates[0].IsRecurring)

	assert.Equal(t, "Anniversary: Jane Doe", dates[1].Title)
	assert.Equal(t, "2020-12-04", dates[1].EventDate)
	assert.Equal(t, config.DefaultIcon, dates[1].Icon)

	f.AssertExpectations(t)
}

func TestImporter_CustomTitles(t *testing.T) {
	im, _ := remoteImporter("BEGIN:VCARD\nVERSION:3.0\nFN:Léa\nBDAY:--07-14\nEND:VCARD")
	im.FormatBirthday = func(name string) string { return "Anniversaire de " + name }

	dates, err := im.Load(context.Background(), calendar.Source{Location: "http://x"})
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, "Anniversaire de Léa", dates[0].Title)
	assert.Equal(t, "--07-14", dates[0].EventDate)
}

func TestImporter_NameFallbacks(t *testing.T) {
	body := "BEGIN:VCARD\nVERSION:3.0\nN:Doe;John;;;\nBDAY:1990-01-01\nEND:VCARD\n" +
		"BEGIN:VCARD\nVERSION:3.0\nBDAY:1990-01-02\nEND:VCARD"
	im, _ := remoteImporter(body)

	dates, err := im.Load(context.Background(), calendar.Source{Location: "http://x"})
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Contains(t, dates[0].Title, "Doe")
	assert.Equal(t, config.FallbackName+"'s Birthday", dates[1].Title)
}

func TestImporter_DateFormats_TableDriven(t *testing.T) {
	tests := []struct {
		name      string
		bdayValue string
		want      string
	}{
		{"ISO8601 Standard", "1990-10-25", "1990-10-25"},
		{"Basic Format", "19901025", "1990-10-25"},
		{"RFC3339", "1990-10-25T00:00:00Z", "1990-10-25"},
		{"Truncated (Month-Day)", "--10-25", "--10-25"},
		{"Truncated Basic", "--1025", "--10-25"},
		{"Leap Day", "--0229", "--02-29"},
		{"Garbage Data", "not-a-date", ""},
		{"Empty Date", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im, _ := remoteImporter("BEGIN:VCARD\nVERSION:3.0\nFN:Test\nBDAY:" + tt.bdayValue + "\nEND:VCARD")

			dates, err := im.Load(context.Background(), calendar.Source{Location: "http://x"})
			require.NoError(t, err)
			if tt.want == "" {
				assert.Empty(t, dates, "Invalid date should be skipped silently")
				return
			}
			require.Len(t, dates, 1)
			assert.Equal(t, tt.want, dates[0].EventDate)
		})
	}
}

func TestImporter_Local_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte("BEGIN:VCARD\nVERSION:4.0\nFN:John Doe\nBDAY:2000-01-01\nEND:VCARD"), 0o600))

	im := &calendar.Importer{}
	dates, err := im.Load(context.Background(), calendar.Source{Location: path})
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, "2000-01-01", dates[0].EventDate)
}

func TestImporter_Local_Missing(t *testing.T) {
	im := &calendar.Importer{}
	_, err := im.Load(context.Background(), calendar.Source{Location: filepath.Join(t.TempDir(), "nope.vcf")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrVCardParse)
}

func TestImporter_EmptyLocation(t *testing.T) {
	im := &calendar.Importer{}
	_, err := im.Load(context.Background(), calendar.Source{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrLocalPathEmpty)
}

func TestImporter_RemoteWithoutFetcher(t *testing.T) {
	im := &calendar.Importer{}
	_, err := im.Load(context.Background(), calendar.Source{Location: "https://x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrFetcherMissing)
}

func TestImporter_Web_NetworkError(t *testing.T) {
	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("network down"))

	im := &calendar.Importer{Fetcher: f}
	_, err := im.Load(context.Background(), calendar.Source{Location: "http://fail.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
	f.AssertExpectations(t)
}

func TestImporter_SkipsBrokenCards(t *testing.T) {
	body := "BEGIN:VCARD\nVERSION:3.0\nFN:Good\nBDAY:1990-01-01\nEND:VCARD\n" +
		"BEGIN:VCARD\nVERSION:3.0\nFN:Bad\nBDAY:1990-13-45\nEND:VCARD\n" +
		"BEGIN:VCARD\nVERSION:3.0\nFN:NoDates\nEND:VCARD"
	im, _ := remoteImporter(body)

	dates, err := im.Load(context.Background(), calendar.Source{Location: "http://x"})
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, "Good's Birthday", dates[0].Title)
}

func TestImporter_ContextCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cancel.vcf")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	im := &calendar.Importer{}
	_, err := im.Load(ctx, calendar.Source{Location: path})
	assert.Equal(t, context.Canceled, err, "Should return context canceled error")
}

func TestSource_IsRemote(t *testing.T) {
	assert.True(t, calendar.Source{Location: "http://a"}.IsRemote())
	assert.True(t, calendar.Source{Location: "HTTPS://a"}.IsRemote())
	assert.False(t, calendar.Source{Location: "/tmp/a.vcf"}.IsRemote())
	assert.False(t, calendar.Source{Location: "ftp://a"}.IsRemote())
}
