package content

import (
	"fmt"
	"regexp"

	"github.com/tartampluch/go-valentine/internal/config"
)

var spotifyPatterns = []struct {
	kind string
	re   *regexp.Regexp
}{
	{config.SpotifyTypeTrack, regexp.MustCompile(`spotify\.com/track/([a-zA-Z0-9]+)`)},
	{config.SpotifyTypeAlbum, regexp.MustCompile(`spotify\.com/album/([a-zA-Z0-9]+)`)},
	{config.SpotifyTypePlay, regexp.MustCompile(`spotify\.com/playlist/([a-zA-Z0-9]+)`)},
}

// SpotifyEmbedURL converts a Spotify track, album or playlist link into its embed
// player URL. Anything else is returned unchanged.
func SpotifyEmbedURL(url string) string {
	for _, p := range spotifyPatterns {
		if m := p.re.FindStringSubmatch(url); m != nil {
			return fmt.Sprintf(config.SpotifyEmbedFormat, p.kind, m[1])
		}
	}
	return url
}
