package preview

import (
	"context"

	"github.com/handiism/tunetracer/internal/itunes"
	"github.com/handiism/tunetracer/internal/spotify"
)

// SpotifyPrimary adapts a Spotify client to the Primary interface.
func SpotifyPrimary(c *spotify.Client) Primary {
	return spotifyPrimary{c: c}
}

type spotifyPrimary struct {
	c *spotify.Client
}

func (p spotifyPrimary) Token(ctx context.Context) (string, error) {
	return p.c.Token(ctx)
}

func (p spotifyPrimary) Search(ctx context.Context, title, artist string, strict bool, limit int) ([]Candidate, error) {
	query := spotify.LooseQuery(title, artist)
	if strict {
		query = spotify.StrictQuery(title, artist)
	}

	items, err := p.c.SearchTracks(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, Candidate{
			ID:         item.ID,
			Title:      item.Name,
			Artists:    item.ArtistNames(),
			Popularity: item.Popularity,
			PreviewURL: item.Preview(),
		})
	}
	return candidates, nil
}

// ITunesSecondary adapts an iTunes client to the Secondary interface.
func ITunesSecondary(c *itunes.Client) Secondary {
	return c
}
