package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
)

// UpdateType tags a message pushed to a connected client.
type UpdateType string

const (
	UpdateRoom     UpdateType = "room"
	UpdateAnnounce UpdateType = "announce"
	UpdateLeft     UpdateType = "left"
)

const updateBuffer = 16

// Update is one push to a connected client.
type Update struct {
	Type    UpdateType `json:"type"`
	View    *View      `json:"view,omitempty"`
	Message string     `json:"message,omitempty"`
}

// QuestionView is the current question without its answer.
type QuestionView struct {
	Tier     int      `json:"tier"`
	Prize    int      `json:"prize"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// HeatView is the fastest finger puzzle without its solution.
type HeatView struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Items    []string `json:"items"`
}

// View is what one client renders.
type View struct {
	PlayerID         string               `json:"playerId"`
	IsHost           bool                 `json:"isHost"`
	Room             *domain.Room         `json:"room,omitempty"`
	Question         *QuestionView        `json:"question,omitempty"`
	Heat             *HeatView            `json:"heat,omitempty"`
	Lifelines        domain.LifelineState `json:"lifelines"`
	Rankings         []domain.Ranking     `json:"rankings,omitempty"`
	WalkAwayPending  bool                 `json:"walkAwayPending"`
	FriendPickerOpen bool                 `json:"friendPickerOpen"`
}

// Session is one player's live connection to a room. It folds every snapshot
// through the reducer, pushes views and runs host duties.
type Session struct {
	svc      *Service
	code     string
	playerID string
	log      *zap.Logger

	ctx         context.Context
	stop        context.CancelFunc
	unsubscribe func()
	done        chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once

	mu      sync.Mutex
	local   game.LocalState
	updates chan Update
	closing bool
	closed  bool
}

// Connect subscribes playerID to a room they already belong to.
func (s *Service) Connect(ctx context.Context, code, playerID string) (*Session, error) {
	if err := game.ValidatePlayerID(playerID); err != nil {
		return nil, err
	}
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if _, ok := room.Players[playerID]; !ok {
		return nil, domain.ErrPlayerNotFound
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	sctx, stop := context.WithCancel(ctx)
	events, unsubscribe, err := s.rooms.Subscribe(sctx, domain.RoomID(room.GameCode))
	if err != nil {
		stop()
		return nil, err
	}
	sess := &Session{
		svc:         s,
		code:        room.GameCode,
		playerID:    playerID,
		log:         s.log.With(zap.String("code", room.GameCode), zap.String("player", playerID)),
		ctx:         sctx,
		stop:        stop,
		unsubscribe: unsubscribe,
		done:        make(chan struct{}),
		local:       game.NewLocalState(playerID, catalog),
		updates:     make(chan Update, updateBuffer),
	}
	go sess.run(events)
	return sess, nil
}

// Updates streams views and announcements. It is closed by Close.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// Done is closed once the session stops following the room.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// PlayerID returns the player this session acts for.
func (s *Session) PlayerID() string {
	return s.playerID
}

// View returns the latest view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildView(s.local)
}

// Close stops the subscription, waits for host duties and closes Updates.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closing = true
		s.mu.Unlock()

		s.stop()
		s.unsubscribe()
		<-s.done
		s.wg.Wait()

		s.mu.Lock()
		s.closed = true
		close(s.updates)
		s.mu.Unlock()
	})
}

func (s *Session) run(events <-chan domain.RoomEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				if s.ctx.Err() == nil {
					s.handle(domain.RoomEvent{Err: domain.ErrSubscriptionDropped})
				}
				return
			}
			if left := s.handle(ev); left {
				return
			}
		}
	}
}

// handle reduces one event and reports whether the client left the room.
func (s *Session) handle(ev domain.RoomEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return true
	}

	next, effects := game.Reduce(s.local, ev)
	s.local = next
	if !next.Left {
		view := buildView(next)
		s.publishLocked(Update{Type: UpdateRoom, View: &view})
	}
	for _, eff := range effects {
		switch eff.Kind {
		case game.EffectAnnounce:
			s.publishLocked(Update{Type: UpdateAnnounce, Message: eff.Message})
		case game.EffectLeave:
			s.log.Info("left room", zap.Error(eff.Err))
			s.publishLocked(Update{Type: UpdateLeft, Message: eff.Message})
		default:
			s.wg.Add(1)
			go s.runHostEffect(eff)
		}
	}
	return next.Left
}

func (s *Session) runHostEffect(eff game.Effect) {
	defer s.wg.Done()
	ctx := s.ctx
	svc := s.svc

	var err error
	switch eff.Kind {
	case game.EffectEnactHeat:
		timer := time.NewTimer(svc.revealDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		err = svc.EnactHeat(ctx, s.code, s.playerID, *eff.Heat)
	case game.EffectProvisionQuestion:
		err = svc.ProvisionQuestion(ctx, s.code, s.playerID, *eff.Need)
	case game.EffectAggregateLifeline:
		err = svc.AggregateLifeline(ctx, s.code, s.playerID)
	case game.EffectClearStaleRequest:
		err = svc.ClearStaleRequest(ctx, s.code, s.playerID)
	case game.EffectCompleteGame:
		err = svc.CompleteGame(ctx, s.code, s.playerID)
	case game.EffectArchiveResults:
		err = svc.ArchiveResults(ctx, s.code, s.playerID)
	}
	if err == nil || ctx.Err() != nil {
		return
	}
	// Invalid state means another write already superseded this duty.
	if errors.Is(err, domain.ErrInvalidState) && !errors.Is(err, domain.ErrConcurrentUpdate) {
		s.log.Debug("host effect superseded", zap.String("effect", string(eff.Kind)), zap.Error(err))
		return
	}
	s.log.Warn("host effect failed", zap.String("effect", string(eff.Kind)), zap.Error(err))
	s.mu.Lock()
	s.forgetLocked(eff.Kind)
	s.mu.Unlock()
}

// forgetLocked clears a dedup marker so the next snapshot requests the duty again.
func (s *Session) forgetLocked(kind game.EffectKind) {
	switch kind {
	case game.EffectEnactHeat:
		s.local.HeatSeen = -1
	case game.EffectProvisionQuestion:
		s.local.Provisioning = ""
	case game.EffectAggregateLifeline:
		s.local.Aggregating = ""
	case game.EffectClearStaleRequest:
		s.local.Clearing = ""
	case game.EffectCompleteGame:
		s.local.Completing = false
	case game.EffectArchiveResults:
		s.local.Archived = false
	}
}

func (s *Session) publishLocked(u Update) {
	if s.closed {
		return
	}
	select {
	case s.updates <- u:
	default:
		// Drop the oldest update so a slow reader never blocks the room.
		select {
		case <-s.updates:
		default:
		}
		s.updates <- u
	}
}

func (s *Session) pushViewLocked() {
	view := buildView(s.local)
	s.publishLocked(Update{Type: UpdateRoom, View: &view})
}

func (s *Session) announce(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked(Update{Type: UpdateAnnounce, Message: msg})
}

// guard fails when the session is gone or a walk-away confirmation is open.
func (s *Session) guard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing || s.local.Left {
		return domain.ErrSessionClosed
	}
	if s.local.WalkAwayPending {
		return domain.ErrWalkAwayPending
	}
	return nil
}

// Answer submits an answer to the current question.
func (s *Session) Answer(ctx context.Context, option int) (game.AnswerResult, error) {
	if err := s.guard(); err != nil {
		return game.AnswerResult{}, err
	}
	res, err := s.svc.Answer(ctx, s.code, s.playerID, option)
	if err != nil {
		return res, err
	}
	if res.Correct {
		s.announce(fmt.Sprintf("Correct! You now have $%d.", res.Score))
	} else {
		s.announce(fmt.Sprintf("Wrong! The answer was %s. You leave with $%d.", res.CorrectText, res.Score))
	}
	return res, nil
}

// InitiateWalkAway asks for confirmation before walking away.
func (s *Session) InitiateWalkAway() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing || s.local.Left {
		return domain.ErrSessionClosed
	}
	next, err := s.local.InitiateWalkAway()
	if err != nil {
		return err
	}
	s.local = next
	s.pushViewLocked()
	return nil
}

// CancelWalkAway dismisses the confirmation.
func (s *Session) CancelWalkAway() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local = s.local.CancelWalkAway()
	s.pushViewLocked()
}

// ConfirmWalkAway banks the prize after InitiateWalkAway.
func (s *Session) ConfirmWalkAway(ctx context.Context) (int, error) {
	s.mu.Lock()
	pending := s.local.WalkAwayPending
	s.mu.Unlock()
	if !pending {
		return 0, domain.ErrNoWalkAwayPending
	}
	prize, err := s.svc.WalkAway(ctx, s.code, s.playerID)

	s.mu.Lock()
	s.local = s.local.CancelWalkAway()
	s.pushViewLocked()
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	s.announce(fmt.Sprintf("You walked away with $%d.", prize))
	return prize, nil
}

// FiftyFifty uses the 50:50 lifeline.
func (s *Session) FiftyFifty(ctx context.Context) ([]int, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.svc.FiftyFifty(ctx, s.code, s.playerID)
}

// AskAudience opens a poll of the other active players.
func (s *Session) AskAudience(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.svc.AskAudience(ctx, s.code, s.playerID)
}

// OpenFriendPicker lists who can be phoned.
func (s *Session) OpenFriendPicker() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing || s.local.Left {
		return nil, domain.ErrSessionClosed
	}
	next, friends, err := s.local.OpenFriendPicker()
	if err != nil {
		return nil, err
	}
	s.local = next
	s.pushViewLocked()
	return friends, nil
}

// CloseFriendPicker abandons Phone a Friend without using it.
func (s *Session) CloseFriendPicker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local = s.local.CloseFriendPicker()
	s.pushViewLocked()
}

// PhoneFriend calls the chosen player. The picker must be open.
func (s *Session) PhoneFriend(ctx context.Context, targetID string) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.mu.Lock()
	open := s.local.FriendPickerOpen
	s.mu.Unlock()
	if !open {
		return domain.ErrFriendPickerClosed
	}
	if err := s.svc.PhoneFriend(ctx, s.code, s.playerID, targetID); err != nil {
		return err
	}
	s.CloseFriendPicker()
	return nil
}

// Vote answers an open audience poll.
func (s *Session) Vote(ctx context.Context, option int) error {
	return s.svc.SubmitAudienceVote(ctx, s.code, s.playerID, option)
}

// Suggest answers a friend call addressed to this player.
func (s *Session) Suggest(ctx context.Context, option int) error {
	return s.svc.SubmitFriendSuggestion(ctx, s.code, s.playerID, option)
}

// SubmitFastestFinger sends this player's ordering for the running heat.
func (s *Session) SubmitFastestFinger(ctx context.Context, order []int, elapsedMs int64) error {
	return s.svc.SubmitFastestFinger(ctx, s.code, s.playerID, order, elapsedMs)
}

// Start begins the game from the lobby.
func (s *Session) Start(ctx context.Context) error {
	return s.svc.StartGame(ctx, s.code, s.playerID)
}

// Restart plays again from final scores.
func (s *Session) Restart(ctx context.Context) error {
	return s.svc.RestartGame(ctx, s.code, s.playerID)
}

func buildView(local game.LocalState) View {
	v := View{
		PlayerID:         local.PlayerID,
		IsHost:           local.IsHost(),
		WalkAwayPending:  local.WalkAwayPending,
		FriendPickerOpen: local.FriendPickerOpen,
	}
	if local.Room == nil {
		return v
	}
	room := local.Room.Clone()
	if q := room.CurrentQuestion; q.For(room.CurrentQuestionIndex) && !room.IsLoadingQuestion {
		v.Question = &QuestionView{
			Tier:     room.CurrentQuestionIndex,
			Prize:    domain.Prize(room.CurrentQuestionIndex),
			Question: q.Question,
			Options:  q.Options,
		}
	}
	room.CurrentQuestion = nil
	v.Room = &room
	v.Lifelines = game.VisibleLifelines(room)

	switch room.Status {
	case domain.StatusFastestFinger:
		if heat, ok := domain.HeatQuestion(local.Catalog, room.FFFQuestionIndex); ok {
			v.Heat = &HeatView{Index: room.FFFQuestionIndex, Question: heat.Question, Items: heat.Items}
		}
	case domain.StatusFinalScores:
		v.Rankings = game.Rankings(room)
	}
	return v
}
