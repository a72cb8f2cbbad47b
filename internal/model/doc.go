// Package model defines the core data structures shared by the quiz engine,
// the catalog providers and the presentation layer.
//
// # Track
//
// Track is an immutable song value identified by its ID:
//
//	track := model.Track{ID: "abc", Title: "Song", Artist: "Artist"}
//	track.HasDirectAudio() // false: the preview resolver will search for audio
//
// # Candidate Pool
//
// CandidatePool is the deduplicated set of tracks a session draws from:
//
//	pool, err := model.NewCandidatePool(tracks)
//	if errors.Is(err, model.ErrPoolTooSmall) {
//	    // ask for a different source
//	}
//
// # Difficulty
//
// Difficulty maps to the countdown length of each round:
//
//	model.DifficultyEasy.Duration()   // 20s
//	model.DifficultyPro.Duration()    // 10s
//	model.DifficultyLegend.Duration() // 3s
//
// # Results
//
// Outcome describes one scored round and GameResult the whole session.
package model
