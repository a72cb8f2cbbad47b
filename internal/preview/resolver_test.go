package preview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrimary struct {
	tokenErr  error
	strict    []Candidate
	relaxed   []Candidate
	strictErr error
	block     bool

	tokenCalls  int
	searchCalls []bool
}

func (f *fakePrimary) Token(ctx context.Context) (string, error) {
	f.tokenCalls++
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "tok", nil
}

func (f *fakePrimary) Search(ctx context.Context, title, artist string, strict bool, limit int) ([]Candidate, error) {
	f.searchCalls = append(f.searchCalls, strict)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if strict {
		return f.strict, f.strictErr
	}
	return f.relaxed, nil
}

type fakeSecondary struct {
	url   string
	err   error
	calls int
}

func (f *fakeSecondary) PreviewURL(ctx context.Context, title, artist string) (string, error) {
	f.calls++
	return f.url, f.err
}

func TestResolveDirectURLMakesNoCalls(t *testing.T) {
	primary := &fakePrimary{}
	secondary := &fakeSecondary{url: "https://secondary"}
	r := NewResolver(primary, secondary, DefaultConfig(), nil)

	url, stage := r.ResolveStage(context.Background(), "Song", "Band", "https://direct")
	assert.Equal(t, "https://direct", url)
	assert.Equal(t, StageDirect, stage)
	assert.Zero(t, primary.tokenCalls)
	assert.Zero(t, secondary.calls)
}

func TestResolveStrictStagePrefersPopularity(t *testing.T) {
	primary := &fakePrimary{strict: []Candidate{
		{ID: "1", Title: "Song", Popularity: 10, PreviewURL: "https://p/1"},
		{ID: "2", Title: "Song", Popularity: 80, PreviewURL: "https://p/2"},
		{ID: "3", Title: "Song", Popularity: 99, PreviewURL: ""},
		{ID: "4", Title: "Song", Popularity: 80, PreviewURL: "https://p/4"},
	}}
	r := NewResolver(primary, &fakeSecondary{}, DefaultConfig(), nil)

	url, stage := r.ResolveStage(context.Background(), "Song", "Band", "")
	assert.Equal(t, "https://p/2", url)
	assert.Equal(t, StagePrimaryStrict, stage)
	assert.Equal(t, []bool{true}, primary.searchCalls)
}

func TestResolveFallsBackToRelaxedStage(t *testing.T) {
	primary := &fakePrimary{
		strict:  []Candidate{{ID: "1", Title: "Song - Live at Wembley", PreviewURL: "https://p/live"}},
		relaxed: []Candidate{{ID: "2", Title: "Song", PreviewURL: "https://p/studio"}},
	}
	r := NewResolver(primary, &fakeSecondary{}, DefaultConfig(), nil)

	url, stage := r.ResolveStage(context.Background(), "Song", "Band", "")
	assert.Equal(t, "https://p/studio", url)
	assert.Equal(t, StagePrimaryRelaxed, stage)
	assert.Equal(t, []bool{true, false}, primary.searchCalls)
}

func TestResolveFallsBackToSecondary(t *testing.T) {
	primary := &fakePrimary{strict: []Candidate{{ID: "1", Title: "Song"}}}
	secondary := &fakeSecondary{url: "https://itunes/preview.m4a"}
	r := NewResolver(primary, secondary, DefaultConfig(), nil)

	url, ok := r.Resolve(context.Background(), "Song", "Band", "")
	require.True(t, ok)
	assert.Equal(t, "https://itunes/preview.m4a", url)
	assert.Equal(t, 1, secondary.calls)
}

func TestResolveStageErrorsDoNotAbortChain(t *testing.T) {
	primary := &fakePrimary{strictErr: errors.New("malformed response")}
	secondary := &fakeSecondary{url: "https://itunes/x"}
	r := NewResolver(primary, secondary, DefaultConfig(), nil)

	url, stage := r.ResolveStage(context.Background(), "Song", "Band", "")
	assert.Equal(t, "https://itunes/x", url)
	assert.Equal(t, StageSecondary, stage)
	assert.Equal(t, []bool{true, false}, primary.searchCalls)
}

func TestResolveTokenFailureSkipsPrimaryStages(t *testing.T) {
	primary := &fakePrimary{
		tokenErr: errors.New("invalid_client"),
		strict:   []Candidate{{ID: "1", Title: "Song", PreviewURL: "https://p/1"}},
	}
	secondary := &fakeSecondary{url: "https://itunes/x"}
	r := NewResolver(primary, secondary, DefaultConfig(), nil)

	url, stage := r.ResolveStage(context.Background(), "Song", "Band", "")
	assert.Equal(t, "https://itunes/x", url)
	assert.Equal(t, StageSecondary, stage)
	assert.Empty(t, primary.searchCalls)
}

func TestResolveExhaustedReturnsNone(t *testing.T) {
	secondary := &fakeSecondary{err: errors.New("network down")}
	r := NewResolver(&fakePrimary{}, secondary, DefaultConfig(), nil)

	url, ok := r.Resolve(context.Background(), "Song", "Band", "")
	assert.False(t, ok)
	assert.Empty(t, url)
}

func TestResolveStageTimeout(t *testing.T) {
	primary := &fakePrimary{block: true}
	secondary := &fakeSecondary{url: "https://itunes/x"}
	r := NewResolver(primary, secondary, Config{SearchLimit: 5, StageTimeout: 20 * time.Millisecond}, nil)

	start := time.Now()
	url, stage := r.ResolveStage(context.Background(), "Song", "Band", "")
	assert.Equal(t, StageSecondary, stage)
	assert.Equal(t, "https://itunes/x", url)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestResolveCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	secondary := &fakeSecondary{url: "https://itunes/x"}
	r := NewResolver(&fakePrimary{block: true}, secondary, DefaultConfig(), nil)

	_, ok := r.Resolve(ctx, "Song", "Band", "")
	assert.False(t, ok)
	assert.Zero(t, secondary.calls)
}

func TestResolveNilBackends(t *testing.T) {
	r := NewResolver(nil, nil, DefaultConfig(), nil)
	_, ok := r.Resolve(context.Background(), "Song", "Band", "")
	assert.False(t, ok)
}

func TestDisqualified(t *testing.T) {
	tests := []struct {
		requested string
		candidate string
		want      bool
	}{
		{"Song", "Song", false},
		{"Song", "Song (Remix)", true},
		{"Song", "Song - Live", true},
		{"Song", "SONG REMIX", true},
		{"Song (Remix)", "Song (Remix)", false},
		{"Live Forever", "Live Forever - Live", false},
		{"Song", "Alive", false},
		{"Song", "Delivery", false},
	}

	for _, tt := range tests {
		t.Run(tt.requested+"/"+tt.candidate, func(t *testing.T) {
			assert.Equal(t, tt.want, Disqualified(tt.requested, tt.candidate))
		})
	}
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "primary-relaxed", StagePrimaryRelaxed.String())
	assert.Equal(t, "none", StageNone.String())
}
