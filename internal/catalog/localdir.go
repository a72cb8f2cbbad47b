package catalog

import (
	"context"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/tunetracer/internal/model"
	"github.com/handiism/tunetracer/internal/progress"
)

// DefaultScanConcurrency bounds parallel tag reads.
const DefaultScanConcurrency = 8

// UnknownArtist is used for files without an artist tag.
const UnknownArtist = "Unknown Artist"

// LocalDir reads candidates from the MP3 files below Root.
//
// Title and artist come from the ID3v2 TIT2 and TPE1 frames. A file without a
// title uses its base name. Files are played from disk through file:// URLs,
// so no preview search is needed.
type LocalDir struct {
	Root        string
	Concurrency int
	OnProgress  progress.Func
}

func (d *LocalDir) Name() string {
	return "directory " + d.Root
}

func (d *LocalDir) FetchCandidates(ctx context.Context) ([]model.Track, error) {
	root, err := filepath.Abs(d.Root)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(path), ".mp3") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.OnProgress.Emit(progress.LevelInfo, "Reading tags of %d files", len(paths))

	limit := d.Concurrency
	if limit <= 0 {
		limit = DefaultScanConcurrency
	}

	tracks := make([]model.Track, len(paths))
	ok := make([]bool, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			track, err := readTrack(root, path)
			if err != nil {
				d.OnProgress.Emit(progress.LevelWarning, "Skipping %s: %v", path, err)
				return nil
			}
			tracks[i] = track
			ok[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.Track, 0, len(tracks))
	for i, track := range tracks {
		if ok[i] {
			out = append(out, track)
		}
	}
	return out, nil
}

func readTrack(root, path string) (model.Track, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return model.Track{}, err
	}
	defer tag.Close()

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}

	title := strings.TrimSpace(tag.Title())
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	artist := strings.TrimSpace(tag.Artist())
	if artist == "" {
		artist = UnknownArtist
	}

	return model.Track{
		ID:             "local-" + filepath.ToSlash(rel),
		Title:          title,
		Artist:         artist,
		DirectAudioURL: FileURL(path),
	}, nil
}

// FileURL returns the file:// URL of an absolute path.
func FileURL(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
