package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/handiism/tunetracer/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp and most stream players
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	// INI-style format with file, title, and length info.
	FormatPLS
)

// ParsePlaylistFormat parses "m3u" or "pls" (case-insensitive).
func ParsePlaylistFormat(s string) (PlaylistFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m3u", "m3u8":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	default:
		return FormatM3U, fmt.Errorf("unknown playlist format %q", s)
	}
}

// Extension returns the file extension, including the dot.
func (f PlaylistFormat) Extension() string {
	if f == FormatPLS {
		return ".pls"
	}
	return ".m3u"
}

// unknownLength marks a stream or preview of unknown duration.
const unknownLength = -1

// PlaylistCreator turns the tracks a player missed into a playlist, so they
// can be listened to again after the game.
//
// Entries point to the URL that was played during the round (a preview URL
// or a local file:// URL). Tracks without a playable URL are left out.
//
// Example:
//
//	// Create M3U playlist with extended info
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(result.Missed)
//	os.WriteFile("missed.m3u", []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:-1,Artist - Song Title
//	// https://audio-ssl.itunes.apple.com/.../preview.m4a
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with titles
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// Parameters:
//   - format: The playlist format to generate
//   - extended: For M3U format, whether to include #EXTINF lines
//     (ignored for PLS)
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content for tracks.
//
// Returns the playlist as a string, ready to be written to a file.
func (p *PlaylistCreator) CreatePlaylist(tracks []model.Track) string {
	playable := make([]model.Track, 0, len(tracks))
	for _, track := range tracks {
		if track.HasDirectAudio() {
			playable = append(playable, track)
		}
	}

	switch p.format {
	case FormatPLS:
		return p.createPLS(playable)
	default:
		return p.createM3U(playable)
	}
}

// WriteFile writes the playlist to path, creating parent directories.
// If path has no extension the format's extension is appended. Returns the
// path written.
func (p *PlaylistCreator) WriteFile(path string, tracks []model.Track) (string, error) {
	if filepath.Ext(path) == "" {
		path += p.format.Extension()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(p.CreatePlaylist(tracks)), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// createM3U generates an M3U playlist.
//
// Standard M3U format:
//
//	https://example.com/preview1.m4a
//	file:///music/song.mp3
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:-1,Artist - Title
//	https://example.com/preview1.m4a
func (p *PlaylistCreator) createM3U(tracks []model.Track) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, track := range tracks {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:%d,%s\n", unknownLength, oneLine(track.String())))
		}
		sb.WriteString(track.DirectAudioURL + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
// PLS format is an INI-style text file:
//
//	[playlist]
//	File1=https://example.com/preview1.m4a
//	Title1=Artist - Song Title
//	Length1=-1
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(tracks []model.Track) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, track := range tracks {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, track.DirectAudioURL))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", idx, oneLine(track.String())))
		sb.WriteString(fmt.Sprintf("Length%d=%d\n", idx, unknownLength))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(tracks)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// oneLine flattens line breaks, which would corrupt both formats.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var (
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots     = regexp.MustCompile(`\.+$`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// SafeFileName replaces characters that are invalid in file names on any
// platform, so playlist names can be built from track or session titles.
//
// Example:
//
//	SafeFileName("Missed: 80s/90s")      // Returns "Missed_ 80s_90s"
//	SafeFileName("Session...")           // Returns "Session"
//	SafeFileName("Name   with  spaces")  // Returns "Name with spaces"
func SafeFileName(name string) string {
	name = invalidFileChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = whitespaceRuns.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
