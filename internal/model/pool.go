package model

import (
	"errors"
	"fmt"
)

// MinPoolSize is the smallest pool able to form one round: a target plus three decoys.
const MinPoolSize = 4

// ErrPoolTooSmall is returned when a candidate pool has fewer than MinPoolSize
// distinct tracks.
//
// This is a setup error: no session can start from such a pool and the caller
// should ask the player for a different source.
var ErrPoolTooSmall = errors.New("candidate pool too small")

// CandidatePool is the ordered, deduplicated set of tracks available to a session.
//
// A pool is captured once at session start and never changes afterwards. Tracks
// are deduplicated by ID; the first occurrence wins and keeps its position.
// Tracks with an empty ID cannot be identified and are dropped.
//
// Example:
//
//	pool, err := model.NewCandidatePool(tracks)
//	if errors.Is(err, model.ErrPoolTooSmall) {
//	    fmt.Println("Pick a playlist with at least 4 songs")
//	    return
//	}
//	fmt.Printf("%d candidate tracks\n", pool.Len())
type CandidatePool struct {
	tracks []Track
	index  map[string]int
}

// NewCandidatePool builds a pool from tracks, deduplicating by ID.
//
// Returns an error wrapping ErrPoolTooSmall if fewer than MinPoolSize distinct
// tracks remain after deduplication.
func NewCandidatePool(tracks []Track) (*CandidatePool, error) {
	pool := &CandidatePool{
		tracks: make([]Track, 0, len(tracks)),
		index:  make(map[string]int, len(tracks)),
	}

	for _, track := range tracks {
		if track.ID == "" {
			continue
		}
		if _, seen := pool.index[track.ID]; seen {
			continue
		}
		pool.index[track.ID] = len(pool.tracks)
		pool.tracks = append(pool.tracks, track)
	}

	if len(pool.tracks) < MinPoolSize {
		return nil, fmt.Errorf("%w: %d distinct tracks, need at least %d", ErrPoolTooSmall, len(pool.tracks), MinPoolSize)
	}

	return pool, nil
}

// Len returns the number of distinct tracks in the pool.
func (p *CandidatePool) Len() int {
	return len(p.tracks)
}

// At returns the track at position i.
func (p *CandidatePool) At(i int) Track {
	return p.tracks[i]
}

// Contains reports whether a track with the given ID is in the pool.
func (p *CandidatePool) Contains(id string) bool {
	_, ok := p.index[id]
	return ok
}

// Tracks returns a copy of the pool's tracks in order.
func (p *CandidatePool) Tracks() []Track {
	out := make([]Track, len(p.tracks))
	copy(out, p.tracks)
	return out
}
