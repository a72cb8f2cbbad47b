package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/tunetracer/internal/model"
	"github.com/handiism/tunetracer/internal/progress"
)

type fakePlaylists struct {
	tracks []model.Track
	err    error
	gotID  string
}

func (f *fakePlaylists) PlaylistTracks(ctx context.Context, id string, onProgress progress.Func) ([]model.Track, error) {
	f.gotID = id
	return f.tracks, f.err
}

type fakeTopHits struct {
	tracks []model.Track
	err    error
}

func (f *fakeTopHits) TopHits(ctx context.Context) ([]model.Track, error) {
	return f.tracks, f.err
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		input string
		want  Source
	}{
		{"", Source{Kind: SourceDemo}},
		{"DEMO", Source{Kind: SourceDemo}},
		{"spotify:37i9dQZF1DXcBWIGoYBM5M", Source{Kind: SourceSpotify, Value: "37i9dQZF1DXcBWIGoYBM5M"}},
		{"spotify:playlist:abc123", Source{Kind: SourceSpotify, Value: "abc123"}},
		{"spotify:https://open.spotify.com/playlist/abc123?si=xyz", Source{Kind: SourceSpotify, Value: "abc123"}},
		{"https://open.spotify.com/playlist/abc123", Source{Kind: SourceSpotify, Value: "abc123"}},
		{"file:/tmp/tracks.yaml", Source{Kind: SourceFile, Value: "/tmp/tracks.yaml"}},
		{"dir: ~/Music ", Source{Kind: SourceDir, Value: "~/Music"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSource(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"spotify:", "ftp:thing", "nonsense", "https://example.com/x"} {
		_, err := ParseSource(bad)
		assert.ErrorIs(t, err, ErrInvalidSource, bad)
	}
}

func TestSourceStringRoundTrip(t *testing.T) {
	for _, s := range []string{"demo", "spotify:abc", "file:list.yaml", "dir:/music"} {
		source, err := ParseSource(s)
		require.NoError(t, err)
		assert.Equal(t, s, source.String())
	}
}

func TestNewProvider(t *testing.T) {
	playlists := &fakePlaylists{tracks: []model.Track{{ID: "a"}}}
	backends := Backends{Spotify: playlists, ITunes: &fakeTopHits{}}

	p, err := NewProvider(Source{Kind: SourceSpotify, Value: "abc"}, backends)
	require.NoError(t, err)
	tracks, err := p.FetchCandidates(context.Background())
	require.NoError(t, err)
	assert.Len(t, tracks, 1)
	assert.Equal(t, "abc", playlists.gotID)
	assert.Equal(t, "spotify playlist abc", p.Name())

	_, err = NewProvider(Source{Kind: SourceSpotify, Value: "abc"}, Backends{})
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	_, err = NewProvider(Source{Kind: SourceDemo}, Backends{})
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	p, err = NewProvider(Source{Kind: SourceFile, Value: "x.yaml"}, Backends{})
	require.NoError(t, err)
	assert.IsType(t, &File{}, p)

	p, err = NewProvider(Source{Kind: SourceDir, Value: "."}, Backends{})
	require.NoError(t, err)
	assert.IsType(t, &LocalDir{}, p)
}

func TestITunesTopHitsPropagatesError(t *testing.T) {
	p := &ITunesTopHits{Client: &fakeTopHits{err: errors.New("HTTP 503")}}
	_, err := p.FetchCandidates(context.Background())
	assert.EqualError(t, err, "HTTP 503")
}

func TestFileRoundTrip(t *testing.T) {
	tracks := []model.Track{
		{ID: "take-on-me", Title: "Take On Me", Artist: "a-ha"},
		{ID: "africa", Title: "Africa", Artist: "TOTO", DirectAudioURL: "https://example.com/africa.m4a"},
	}

	for _, name := range []string{"set.yaml", "set.yml", "set.toml", "set.json", "set.list"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteTrackList(path, "80s", tracks))

			got, err := (&File{Path: path}).FetchCandidates(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tracks, got)
		})
	}
}

func TestFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "set.toml")
	content := `name = "80s"

[[tracks]]
id = "africa"
title = "Africa"
artist = "TOTO"
direct_audio_url = "https://example.com/africa.m4a"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := (&File{Path: path}).FetchCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://example.com/africa.m4a", got[0].DirectAudioURL)
}

func TestFileErrors(t *testing.T) {
	_, err := (&File{Path: filepath.Join(t.TempDir(), "missing.yaml")}).FetchCandidates(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tracks: [unclosed"), 0o644))
	_, err = (&File{Path: path}).FetchCandidates(context.Background())
	assert.Error(t, err)
}

func writeMP3(t *testing.T, path, title, artist string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xFB, 0x90, 0x00}, 0o644))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if title != "" {
		tag.SetTitle(title)
	}
	if artist != "" {
		tag.SetArtist(artist)
	}
	require.NoError(t, tag.Save())
}

func TestLocalDirReadsTags(t *testing.T) {
	root := t.TempDir()
	writeMP3(t, filepath.Join(root, "a.mp3"), "Song A", "Band A")
	writeMP3(t, filepath.Join(root, "nested", "b.MP3"), "Song B", "Band B")
	writeMP3(t, filepath.Join(root, "untitled.mp3"), "", "")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("not audio"), 0o644))

	var events atomic.Int32
	dir := &LocalDir{Root: root, Concurrency: 2, OnProgress: func(progress.Event) { events.Add(1) }}
	tracks, err := dir.FetchCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 3)

	sort.Slice(tracks, func(i, j int) bool { return tracks[i].ID < tracks[j].ID })
	assert.Equal(t, "local-a.mp3", tracks[0].ID)
	assert.Equal(t, "Song A", tracks[0].Title)
	assert.Equal(t, "Band A", tracks[0].Artist)
	assert.Equal(t, FileURL(filepath.Join(root, "a.mp3")), tracks[0].DirectAudioURL)
	assert.True(t, tracks[0].HasDirectAudio())

	assert.Equal(t, "local-nested/b.MP3", tracks[1].ID)
	assert.Equal(t, "Song B", tracks[1].Title)

	assert.Equal(t, "untitled", tracks[2].Title)
	assert.Equal(t, UnknownArtist, tracks[2].Artist)
	assert.Positive(t, events.Load())
}

func TestLocalDirMissingRoot(t *testing.T) {
	_, err := (&LocalDir{Root: filepath.Join(t.TempDir(), "nope")}).FetchCandidates(context.Background())
	assert.Error(t, err)
}

func TestFileURL(t *testing.T) {
	assert.Equal(t, "file:///music/My%20Song.mp3", FileURL("/music/My Song.mp3"))
}
