package solo

import (
	"context"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millionaire-service/internal/domain"
)

type stubProvider struct {
	calls int
}

func (p *stubProvider) Provide(_ context.Context, _ string, _, _, tier int) (domain.GameQuestion, bool) {
	p.calls++
	return domain.GameQuestion{
		Question:           "Which planet is known as the Red Planet?",
		Options:            []string{"Venus", "Mars", "Jupiter", "Saturn"},
		CorrectAnswerIndex: 1,
		QuestionIndex:      domain.Ptr(tier),
	}, false
}

func newManager() (*Manager, *stubProvider) {
	p := &stubProvider{}
	return NewManager(p, rand.New(rand.NewSource(7)), nil), p
}

func TestStartValidatesProfile(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()

	_, err := m.Start(ctx, "  ", 30)
	require.ErrorIs(t, err, domain.ErrInvalidName)
	_, err = m.Start(ctx, "Ann", 4)
	require.ErrorIs(t, err, domain.ErrInvalidAge)

	v, err := m.Start(ctx, " Ann ", 30)
	require.NoError(t, err)
	assert.Equal(t, "Ann", v.Name)
	assert.Equal(t, 0, v.Tier)
	assert.Equal(t, 100, v.Prize)
	assert.Len(t, v.Options, 4)
	assert.Equal(t, domain.OutcomeWaiting, v.Outcome)
}

func TestCorrectAnswersClimbTheLadder(t *testing.T) {
	m, p := newManager()
	ctx := context.Background()
	v, err := m.Start(ctx, "Ann", 30)
	require.NoError(t, err)

	for tier := 0; tier < 5; tier++ {
		v, err = m.Answer(ctx, v.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.Prize(tier), v.Score)
	}
	assert.Equal(t, 5, v.Tier)
	assert.Equal(t, 6, p.calls)
	assert.False(t, v.Over)
}

func TestWrongAnswerFallsToSafetyNet(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()
	v, _ := m.Start(ctx, "Ann", 30)
	for i := 0; i < 6; i++ {
		v, _ = m.Answer(ctx, v.ID, 1)
	}
	require.Equal(t, 6, v.Tier)

	v, err := m.Answer(ctx, v.ID, 0)
	require.NoError(t, err)
	assert.True(t, v.Over)
	assert.Equal(t, domain.OutcomeEliminated, v.Outcome)
	assert.Equal(t, domain.Prize(domain.SafetyNetIndices[0]), v.Score)
	assert.Empty(t, v.Options)

	_, err = m.Answer(ctx, v.ID, 1)
	assert.ErrorIs(t, err, domain.ErrGameOver)
}

func TestTopTierCompletesGame(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()
	v, _ := m.Start(ctx, "Ann", 30)
	var err error
	for i := 0; i <= domain.TopTier(); i++ {
		v, err = m.Answer(ctx, v.ID, 1)
		require.NoError(t, err)
	}
	assert.True(t, v.Over)
	assert.Equal(t, domain.OutcomeCompleted, v.Outcome)
	assert.Equal(t, domain.Prize(domain.TopTier()), v.Score)
}

func TestFiftyFiftyDisablesTwoWrongOptions(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()
	v, _ := m.Start(ctx, "Ann", 30)

	v, err := m.FiftyFifty(ctx, v.ID)
	require.NoError(t, err)
	assert.Len(t, v.Lifelines.DisabledOptions, 2)
	assert.NotContains(t, v.Lifelines.DisabledOptions, 1)

	_, err = m.FiftyFifty(ctx, v.ID)
	assert.ErrorIs(t, err, domain.ErrLifelineUsed)

	_, err = m.Answer(ctx, v.ID, v.Lifelines.DisabledOptions[0])
	assert.ErrorIs(t, err, domain.ErrInvalidOption)

	v, err = m.Answer(ctx, v.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, v.Lifelines.DisabledOptions, "lifeline output belongs to one question")
}

func TestAskAudienceSumsToHundred(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()
	v, _ := m.Start(ctx, "Ann", 30)

	v, err := m.AskAudience(ctx, v.ID)
	require.NoError(t, err)
	total := 0
	for _, s := range v.Lifelines.AudienceVote {
		assert.GreaterOrEqual(t, s.Percent, 0)
		total += s.Percent
	}
	assert.Equal(t, 100, total)

	_, err = m.AskAudience(ctx, v.ID)
	assert.ErrorIs(t, err, domain.ErrLifelineUsed)
}

func TestSimulateAudienceFavoursCorrectOption(t *testing.T) {
	q := &domain.GameQuestion{Options: []string{"A", "B", "C", "D"}, CorrectAnswerIndex: 2}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		shares := SimulateAudience(q, []int{0, 3}, rng)
		require.Len(t, shares, 2)
		var correct, sum int
		for _, s := range shares {
			sum += s.Percent
			if s.Option == "C" {
				correct = s.Percent
			}
		}
		assert.Equal(t, 100, sum)
		assert.GreaterOrEqual(t, correct, 30)
		assert.LessOrEqual(t, correct, 50)
	}
}

func TestSimulateFriendOnlyNamesVisibleOptions(t *testing.T) {
	q := &domain.GameQuestion{Options: []string{"A", "B", "C", "D"}, CorrectAnswerIndex: 2}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		msg := SimulateFriend(q, []int{0, 1}, rng)
		assert.NotContains(t, msg, `"A"`)
		assert.NotContains(t, msg, `"B"`)
	}
}

func TestWalkAwayNeedsConfirmation(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()
	v, _ := m.Start(ctx, "Ann", 30)
	v, _ = m.Answer(ctx, v.ID, 1)
	v, _ = m.Answer(ctx, v.ID, 1)

	_, err := m.ConfirmWalkAway(ctx, v.ID)
	require.ErrorIs(t, err, domain.ErrNoWalkAwayPending)

	v, err = m.InitiateWalkAway(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, v.WalkAwayPending)

	_, err = m.Answer(ctx, v.ID, 1)
	assert.ErrorIs(t, err, domain.ErrWalkAwayPending)

	v, err = m.CancelWalkAway(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, v.WalkAwayPending)

	_, _ = m.InitiateWalkAway(ctx, v.ID)
	v, err = m.ConfirmWalkAway(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, v.Over)
	assert.Equal(t, domain.OutcomeWalkedAway, v.Outcome)
	assert.Equal(t, domain.Prize(1), v.Score)
}

func TestRestartResetsProgress(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()
	v, _ := m.Start(ctx, "Ann", 30)
	v, _ = m.FiftyFifty(ctx, v.ID)
	kept := -1
	for i := range v.Options {
		if i != 1 && !slices.Contains(v.Lifelines.DisabledOptions, i) {
			kept = i
		}
	}
	v, err := m.Answer(ctx, v.ID, kept)
	require.NoError(t, err)
	require.True(t, v.Over)

	v, err = m.Restart(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, v.Over)
	assert.False(t, v.FiftyFiftyUsed)
	assert.Zero(t, v.Score)
	assert.Zero(t, v.Tier)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}
