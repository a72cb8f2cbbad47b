// Package game implements the round engine of a TuneTracer session.
//
// A Session holds the candidate pool captured at start, the difficulty and
// the number of rounds. Each session is played by a single-use Engine that
// walks every round through the same phases:
//
//	Idle -> RoundStarting -> AwaitingAudio -> Countdown -> Resolved -> ... -> SessionComplete
//
// with Cancelled reachable from any non-terminal phase.
//
// In RoundStarting the Sequencer picks a target the player has not heard in
// the current pass over the pool and three decoys, shuffled together. In
// AwaitingAudio a Resolver finds a preview URL; a round without playable
// audio is skipped and never scored. Countdown runs from the difficulty
// duration to zero at a fixed tick; the first of an answer or expiry wins.
// Correct answers score Points(remaining, streak) and extend the streak,
// anything else resets it and records the target as missed.
//
// Usage:
//
//	session, err := game.StartSession(ctx, catalog.NewITunesTopHits(itunesClient), opts)
//	if errors.Is(err, model.ErrPoolTooSmall) {
//	    return err
//	}
//	result, err := session.Play(ctx, game.Deps{
//	    Resolver: resolver,
//	    Player:   player.NewSilent(),
//	    OnEvent:  handleEvent,
//	})
//	if errors.Is(err, game.ErrSessionCancelled) {
//	    return nil
//	}
//	fmt.Printf("Score %d, %d correct\n", result.Score, result.CorrectAnswers)
package game
