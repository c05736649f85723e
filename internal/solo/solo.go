// Package solo runs single-player games: one contestant climbs the prize ladder
// against generated questions, with the audience and friend simulated.
package solo

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
)

// friendConfidence is the draw above which the simulated friend names the correct answer.
const friendConfidence = 0.6

// QuestionProvider never fails; it reports whether the fallback was used.
type QuestionProvider interface {
	Provide(ctx context.Context, key string, age, prize, tier int) (domain.GameQuestion, bool)
}

// View is a solo game as shown to its player. The correct answer is never included.
type View struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Age             int                  `json:"age"`
	Score           int                  `json:"score"`
	Tier            int                  `json:"tier"`
	Prize           int                  `json:"prize"`
	Question        string               `json:"question,omitempty"`
	Options         []string             `json:"options,omitempty"`
	FiftyFiftyUsed  bool                 `json:"fiftyFiftyUsed"`
	AskAudienceUsed bool                 `json:"askAudienceUsed"`
	PhoneFriendUsed bool                 `json:"phoneFriendUsed"`
	Lifelines       domain.LifelineState `json:"lifelines"`
	WalkAwayPending bool                 `json:"walkAwayPending"`
	Over            bool                 `json:"over"`
	Outcome         domain.Outcome       `json:"outcome"`
	Message         string               `json:"message,omitempty"`
}

type soloGame struct {
	mu sync.Mutex

	id   string
	name string
	age  int

	score           int
	tier            int
	question        *domain.GameQuestion
	fiftyFiftyUsed  bool
	askAudienceUsed bool
	phoneFriendUsed bool
	lifelines       domain.LifelineState
	walkAwayPending bool
	over            bool
	outcome         domain.Outcome
	message         string
	lastActive      time.Time
}

// Manager holds every running solo game.
type Manager struct {
	questions QuestionProvider
	log       *zap.Logger
	rng       game.Rand
	now       func() time.Time

	mu    sync.Mutex
	games map[string]*soloGame
}

func NewManager(questions QuestionProvider, rng game.Rand, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if rng == nil {
		rng = game.NewRand()
	}
	return &Manager{
		questions: questions,
		log:       log,
		rng:       game.NewLockedRand(rng),
		now:       time.Now,
		games:     make(map[string]*soloGame),
	}
}

// Start validates the player and serves the first question.
func (m *Manager) Start(ctx context.Context, name string, age int) (View, error) {
	name, err := game.ValidateProfile(name, age)
	if err != nil {
		return View{}, err
	}
	g := &soloGame{id: uuid.NewString(), name: name, age: age, outcome: domain.OutcomeWaiting}

	m.reset(ctx, g)
	view := g.view()

	m.mu.Lock()
	m.games[g.id] = g
	m.mu.Unlock()
	m.log.Info("solo game started", zap.String("game", g.id), zap.String("name", name))
	return view, nil
}

// Restart plays again with the same player.
func (m *Manager) Restart(ctx context.Context, id string) (View, error) {
	g, err := m.get(id)
	if err != nil {
		return View{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	m.reset(ctx, g)
	return g.view(), nil
}

// Get returns the current view.
func (m *Manager) Get(id string) (View, error) {
	g, err := m.get(id)
	if err != nil {
		return View{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view(), nil
}

// Answer scores option against the current question.
func (m *Manager) Answer(ctx context.Context, id string, option int) (View, error) {
	g, err := m.turn(id)
	if err != nil {
		return View{}, err
	}
	defer g.mu.Unlock()

	q := g.question
	if option < 0 || option >= len(q.Options) {
		return View{}, domain.ErrInvalidOption
	}
	if slices.Contains(g.lifelines.DisabledOptions, option) {
		return View{}, fmt.Errorf("%w: option removed by 50:50", domain.ErrInvalidOption)
	}

	if option != q.CorrectAnswerIndex {
		g.score = game.SafetyNetPrize(g.tier - 1)
		g.finish(domain.OutcomeEliminated, fmt.Sprintf("Incorrect! The correct answer was %q. You leave with $%d.",
			q.Options[q.CorrectAnswerIndex], g.score))
		return g.view(), nil
	}

	g.score = domain.Prize(g.tier)
	if g.tier >= domain.TopTier() {
		g.finish(domain.OutcomeCompleted, fmt.Sprintf("Congratulations! You've won the Grand Prize of $%d!", g.score))
		return g.view(), nil
	}
	g.tier++
	m.nextQuestion(ctx, g)
	g.message = fmt.Sprintf("Correct! You've won $%d!", g.score)
	return g.view(), nil
}

// FiftyFifty removes two wrong options.
func (m *Manager) FiftyFifty(_ context.Context, id string) (View, error) {
	g, err := m.turn(id)
	if err != nil {
		return View{}, err
	}
	defer g.mu.Unlock()
	if g.fiftyFiftyUsed {
		return View{}, domain.ErrLifelineUsed
	}
	g.fiftyFiftyUsed = true
	g.lifelines.DisabledOptions = game.RemoveTwo(g.question, m.rng)
	g.message = "Two incorrect answers have been removed!"
	return g.view(), nil
}

// AskAudience simulates a poll that leans towards the correct answer.
func (m *Manager) AskAudience(_ context.Context, id string) (View, error) {
	g, err := m.turn(id)
	if err != nil {
		return View{}, err
	}
	defer g.mu.Unlock()
	if g.askAudienceUsed {
		return View{}, domain.ErrLifelineUsed
	}
	g.askAudienceUsed = true
	g.lifelines.AudienceVote = SimulateAudience(g.question, g.lifelines.DisabledOptions, m.rng)
	g.message = "The audience has voted!"
	return g.view(), nil
}

// PhoneFriend simulates a friend who is right when confident.
func (m *Manager) PhoneFriend(_ context.Context, id string) (View, error) {
	g, err := m.turn(id)
	if err != nil {
		return View{}, err
	}
	defer g.mu.Unlock()
	if g.phoneFriendUsed {
		return View{}, domain.ErrLifelineUsed
	}
	g.phoneFriendUsed = true
	answer := SimulateFriend(g.question, g.lifelines.DisabledOptions, m.rng)
	g.lifelines.FriendAnswer = &answer
	g.message = "You've called a friend!"
	return g.view(), nil
}

// InitiateWalkAway asks the player to confirm.
func (m *Manager) InitiateWalkAway(_ context.Context, id string) (View, error) {
	g, err := m.turn(id)
	if err != nil {
		return View{}, err
	}
	defer g.mu.Unlock()
	g.walkAwayPending = true
	g.message = fmt.Sprintf("Are you sure you want to walk away with $%d?", g.score)
	return g.view(), nil
}

// CancelWalkAway keeps playing.
func (m *Manager) CancelWalkAway(_ context.Context, id string) (View, error) {
	g, err := m.get(id)
	if err != nil {
		return View{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.walkAwayPending = false
	g.message = ""
	return g.view(), nil
}

// ConfirmWalkAway ends the game keeping the winnings so far.
func (m *Manager) ConfirmWalkAway(_ context.Context, id string) (View, error) {
	g, err := m.get(id)
	if err != nil {
		return View{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.over {
		return View{}, domain.ErrGameOver
	}
	if !g.walkAwayPending {
		return View{}, domain.ErrNoWalkAwayPending
	}
	g.finish(domain.OutcomeWalkedAway, fmt.Sprintf("You decided to walk away with your current winnings of $%d.", g.score))
	return g.view(), nil
}

// Run drops games idle for longer than idle until ctx is done.
func (m *Manager) Run(ctx context.Context, idle time.Duration) error {
	if idle <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.reap(m.now().Add(-idle))
		}
	}
}

func (m *Manager) reap(cutoff time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, g := range m.games {
		g.mu.Lock()
		last := g.lastActive
		g.mu.Unlock()
		if last.Before(cutoff) {
			delete(m.games, id)
			m.log.Debug("solo game reaped", zap.String("game", id))
		}
	}
}

func (m *Manager) get(id string) (*soloGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return g, nil
}

// turn locks the game and checks that a question is awaiting an answer.
// The caller unlocks on success.
func (m *Manager) turn(id string) (*soloGame, error) {
	g, err := m.get(id)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	switch {
	case g.over:
		err = domain.ErrGameOver
	case g.walkAwayPending:
		err = domain.ErrWalkAwayPending
	case !g.question.For(g.tier):
		err = domain.ErrNoQuestion
	}
	if err != nil {
		g.mu.Unlock()
		return nil, err
	}
	g.lastActive = m.now()
	return g, nil
}

func (m *Manager) reset(ctx context.Context, g *soloGame) {
	g.score = 0
	g.tier = 0
	g.fiftyFiftyUsed = false
	g.askAudienceUsed = false
	g.phoneFriendUsed = false
	g.walkAwayPending = false
	g.over = false
	g.outcome = domain.OutcomeWaiting
	g.message = ""
	m.nextQuestion(ctx, g)
}

// nextQuestion fetches the question for g.tier. Called with g locked.
func (m *Manager) nextQuestion(ctx context.Context, g *soloGame) {
	g.lifelines = domain.LifelineState{}
	q, fallback := m.questions.Provide(ctx, "solo/"+g.id, g.age, domain.Prize(g.tier), g.tier)
	q.QuestionIndex = domain.Ptr(g.tier)
	g.question = &q
	g.lastActive = m.now()
	if fallback {
		m.log.Warn("solo question fell back", zap.String("game", g.id), zap.Int("tier", g.tier))
	}
}

func (g *soloGame) finish(outcome domain.Outcome, msg string) {
	g.over = true
	g.walkAwayPending = false
	g.outcome = outcome
	g.message = msg
}

func (g *soloGame) view() View {
	v := View{
		ID:              g.id,
		Name:            g.name,
		Age:             g.age,
		Score:           g.score,
		Tier:            g.tier,
		Prize:           domain.Prize(g.tier),
		FiftyFiftyUsed:  g.fiftyFiftyUsed,
		AskAudienceUsed: g.askAudienceUsed,
		PhoneFriendUsed: g.phoneFriendUsed,
		Lifelines:       g.lifelines,
		WalkAwayPending: g.walkAwayPending,
		Over:            g.over,
		Outcome:         g.outcome,
		Message:         g.message,
	}
	if g.question != nil && !g.over {
		v.Question = g.question.Question
		v.Options = slices.Clone(g.question.Options)
	}
	return v
}

// SimulateAudience gives the correct option 30 to 50 percent and spreads the rest
// at random over the other options still on the board. Shares sum to 100.
func SimulateAudience(q *domain.GameQuestion, disabled []int, rng game.Rand) []domain.AudienceShare {
	correct := 30 + rng.Intn(21)
	remaining := 100 - correct

	var wrong []int
	for i := range q.Options {
		if i != q.CorrectAnswerIndex && !slices.Contains(disabled, i) {
			wrong = append(wrong, i)
		}
	}
	pct := make(map[int]int, len(q.Options))
	pct[q.CorrectAnswerIndex] = correct
	if len(wrong) == 0 {
		pct[q.CorrectAnswerIndex] = 100
	} else {
		weights := make([]float64, len(wrong))
		total := 0.0
		for i := range weights {
			weights[i] = rng.Float64()
			total += weights[i]
		}
		given := 0
		for i, idx := range wrong {
			share := 0
			if total > 0 {
				share = int(math.Floor(float64(remaining) * weights[i] / total))
			}
			pct[idx] = share
			given += share
		}
		pct[wrong[0]] += remaining - given
	}

	shares := make([]domain.AudienceShare, 0, len(q.Options))
	for i, opt := range q.Options {
		if slices.Contains(disabled, i) {
			continue
		}
		shares = append(shares, domain.AudienceShare{Option: opt, Percent: pct[i]})
	}
	return shares
}

// SimulateFriend names the correct option when confident, otherwise a random
// wrong option still on the board.
func SimulateFriend(q *domain.GameQuestion, disabled []int, rng game.Rand) string {
	correct := q.Options[q.CorrectAnswerIndex]
	if rng.Float64() > friendConfidence {
		return fmt.Sprintf("I'm pretty sure it's %q.", correct)
	}
	var wrong []int
	for i := range q.Options {
		if i != q.CorrectAnswerIndex && !slices.Contains(disabled, i) {
			wrong = append(wrong, i)
		}
	}
	if len(wrong) == 0 {
		return fmt.Sprintf("I'm not entirely sure, but it could be %q.", correct)
	}
	return fmt.Sprintf("I think it might be %q, but I'm not 100%% sure.", q.Options[wrong[rng.Intn(len(wrong))]])
}
