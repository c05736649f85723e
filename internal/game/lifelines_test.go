package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millionaire-service/internal/domain"
)

func TestAudiencePercentages(t *testing.T) {
	cases := []struct {
		name  string
		votes []int
		want  []int
	}{
		{name: "two of three", votes: []int{0, 0, 1}, want: []int{67, 33, 0, 0}},
		{name: "three way split puts drift on first", votes: []int{0, 1, 2}, want: []int{34, 33, 33, 0}},
		{name: "unanimous", votes: []int{3}, want: []int{0, 0, 0, 100}},
		{name: "even split", votes: []int{1, 2}, want: []int{0, 50, 50, 0}},
		{name: "no votes", votes: nil, want: []int{0, 0, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AudiencePercentages(tc.votes, 4)
			assert.Equal(t, tc.want, got)
			if len(tc.votes) > 0 {
				sum := 0
				for _, v := range got {
					sum += v
				}
				assert.Equal(t, 100, sum)
			}
		})
	}
}

func TestFiftyFifty(t *testing.T) {
	room := inGameRoom(t, 0, "a", "b")
	disabled, p, err := FiftyFifty(room, "a", seeded())
	require.NoError(t, err)
	require.Len(t, disabled, 2)
	assert.NotContains(t, disabled, 1)

	room = apply(t, room, p)
	assert.True(t, room.Players["a"].FiftyFiftyUsed)
	assert.Equal(t, disabled, VisibleLifelines(room).DisabledOptions)

	_, _, err = FiftyFifty(room, "a", seeded())
	require.ErrorIs(t, err, domain.ErrLifelineUsed)

	_, _, err = Answer(room, "a", disabled[0])
	require.ErrorIs(t, err, domain.ErrInvalidOption)
}

func TestAskTheAudienceFlow(t *testing.T) {
	room := inGameRoom(t, 2, "a", "b", "c", "d")
	p, err := AskAudience(room, "a")
	require.NoError(t, err)
	room = apply(t, room, p)
	require.NoError(t, room.Validate())
	assert.True(t, room.Players["a"].AskAudienceUsed)
	assert.Equal(t, []string{"b", "c", "d"}, AudienceVoters(room, "a"))

	_, err = Respond(room, "a", 1)
	require.ErrorIs(t, err, domain.ErrNotRespondent)

	for id, vote := range map[string]int{"b": 0, "c": 0, "d": 1} {
		require.False(t, RequestComplete(room))
		p, err := Respond(room, id, vote)
		require.NoError(t, err)
		room = apply(t, room, p)
	}
	_, err = Respond(room, "b", 2)
	require.ErrorIs(t, err, domain.ErrAlreadyResponded)
	require.True(t, RequestComplete(room))

	p, err = Aggregate(room)
	require.NoError(t, err)
	room = apply(t, room, p)
	assert.Nil(t, room.ActiveLifelineRequest)
	got := VisibleLifelines(room)
	assert.Equal(t, []domain.AudienceShare{
		{Option: "Venus", Percent: 67},
		{Option: "Mars", Percent: 33},
		{Option: "Jupiter", Percent: 0},
		{Option: "Saturn", Percent: 0},
	}, got.AudienceVote)
	assert.Equal(t, "a", *got.UsedByPlayerID)

	_, err = AskAudience(room, "a")
	require.ErrorIs(t, err, domain.ErrLifelineUsed)
}

func TestAskTheAudienceNeedsVoters(t *testing.T) {
	room := inGameRoom(t, 0, "a", "b")
	room.Players["b"] = domain.Player{Name: "Player b", Age: 20}
	_, err := AskAudience(room, "a")
	require.ErrorIs(t, err, domain.ErrNoRespondents)
}

func TestPhoneAFriendFlow(t *testing.T) {
	room := inGameRoom(t, 1, "a", "b", "c")
	friends, err := CanPhoneFriend(room, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, friends)

	_, err = PhoneFriend(room, "a", "a")
	require.ErrorIs(t, err, domain.ErrNotRespondent)

	p, err := PhoneFriend(room, "a", "c")
	require.NoError(t, err)
	room = apply(t, room, p)
	assert.True(t, room.Players["a"].PhoneFriendUsed)

	_, _, err = FiftyFifty(room, "a", seeded())
	require.ErrorIs(t, err, domain.ErrLifelineInFlight)

	_, err = Respond(room, "b", 1)
	require.ErrorIs(t, err, domain.ErrNotRespondent)

	p, err = Respond(room, "c", 1)
	require.NoError(t, err)
	room = apply(t, room, p)
	require.True(t, RequestComplete(room))

	p, err = Aggregate(room)
	require.NoError(t, err)
	room = apply(t, room, p)
	assert.Nil(t, room.ActiveLifelineRequest)
	assert.Equal(t, "Mars", *VisibleLifelines(room).FriendAnswer)
}

func TestStaleLifelineRequests(t *testing.T) {
	room := inGameRoom(t, 1, "a", "b", "c")
	p, err := AskAudience(room, "a")
	require.NoError(t, err)
	room = apply(t, room, p)

	// the contestant moved on before anyone voted
	room.CurrentQuestionIndex = 2
	room.CurrentQuestion = question(2)
	require.True(t, RequestStale(room))
	require.False(t, RequestComplete(room))

	_, err = Respond(room, "b", 0)
	require.ErrorIs(t, err, domain.ErrStaleRequest)

	p, err = ClearStaleRequest(room)
	require.NoError(t, err)
	room = apply(t, room, p)
	assert.Nil(t, room.ActiveLifelineRequest)

	late := domain.Patch{"activeLifelineRequest.responses.b": 0}
	_, err = late.Apply(room)
	require.ErrorIs(t, err, domain.ErrMissingParent)
}

func TestVisibleLifelinesHidesOlderQuestions(t *testing.T) {
	room := inGameRoom(t, 3, "a", "b")
	room.QuestionLifelineState = domain.LifelineState{
		DisabledOptions: []int{0, 2},
		QuestionIndex:   domain.Ptr(2),
	}
	assert.Empty(t, VisibleLifelines(room).DisabledOptions)

	room.QuestionLifelineState.QuestionIndex = domain.Ptr(3)
	assert.Equal(t, []int{0, 2}, VisibleLifelines(room).DisabledOptions)
}
