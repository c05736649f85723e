package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every specific error below wraps exactly one of them so callers
// can branch with errors.Is on the category.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrCapacity       = errors.New("capacity reached")
	ErrInvalidState   = errors.New("invalid state")
	ErrProvisioning   = errors.New("question provisioning failed")
	ErrConnectionLost = errors.New("connection lost")
)

var (
	// ErrInvalidName is returned when a player name is blank.
	ErrInvalidName     = fmt.Errorf("%w: name must not be empty", ErrValidation)
	// ErrInvalidAge is returned when an age falls outside [MinAge, MaxAge].
	ErrInvalidAge      = fmt.Errorf("%w: age must be between %d and %d", ErrValidation, MinAge, MaxAge)
	// ErrInvalidCode is returned for room codes that are not 6 uppercase alphanumerics.
	ErrInvalidCode     = fmt.Errorf("%w: room code must be %d letters or digits", ErrValidation, RoomCodeLength)
	// ErrInvalidPlayerID is returned for ids that cannot be used as a document path segment.
	ErrInvalidPlayerID = fmt.Errorf("%w: player id must be 1 to %d letters, digits, '-' or '_'", ErrValidation, MaxPlayerIDLength)
	ErrInvalidOption   = fmt.Errorf("%w: option index out of range", ErrValidation)
	ErrInvalidOrder    = fmt.Errorf("%w: order must be a permutation of the four items", ErrValidation)
	ErrInvalidPatch    = fmt.Errorf("%w: malformed patch", ErrValidation)

	// ErrRoomNotFound indicates the room document does not exist.
	ErrRoomNotFound   = fmt.Errorf("room %w", ErrNotFound)
	ErrPlayerNotFound = fmt.Errorf("player %w", ErrNotFound)
	ErrGameNotFound   = fmt.Errorf("game %w", ErrNotFound)

	// ErrRoomFull is returned when a join would exceed MaxPlayers.
	ErrRoomFull = fmt.Errorf("%w: room already has %d players", ErrCapacity, MaxPlayers)

	ErrNotInLobby          = fmt.Errorf("%w: game has already started", ErrInvalidState)
	ErrNotHost             = fmt.Errorf("%w: only the host can do that", ErrInvalidState)
	ErrNotEnoughPlayers    = fmt.Errorf("%w: at least %d active players are needed", ErrInvalidState, MinPlayers)
	ErrNotFastestFinger    = fmt.Errorf("%w: no fastest finger round in progress", ErrInvalidState)
	ErrNotEligible         = fmt.Errorf("%w: player is not part of this heat", ErrInvalidState)
	ErrNotInGame           = fmt.Errorf("%w: main game is not in progress", ErrInvalidState)
	ErrNotYourTurn         = fmt.Errorf("%w: it is not your turn", ErrInvalidState)
	ErrNoQuestion          = fmt.Errorf("%w: no question loaded", ErrInvalidState)
	ErrLifelineUsed        = fmt.Errorf("%w: lifeline already used", ErrInvalidState)
	ErrLifelineInFlight    = fmt.Errorf("%w: another lifeline is in progress", ErrInvalidState)
	ErrNoLifelineRequest   = fmt.Errorf("%w: no lifeline request is active", ErrInvalidState)
	ErrNotRespondent       = fmt.Errorf("%w: player cannot respond to this lifeline", ErrInvalidState)
	ErrAlreadyResponded    = fmt.Errorf("%w: response already submitted", ErrInvalidState)
	ErrStaleRequest        = fmt.Errorf("%w: lifeline request belongs to an earlier question", ErrInvalidState)
	ErrNoRespondents       = fmt.Errorf("%w: no other active players to ask", ErrInvalidState)
	ErrWalkAwayPending     = fmt.Errorf("%w: walk away awaiting confirmation", ErrInvalidState)
	ErrNoWalkAwayPending   = fmt.Errorf("%w: no walk away to confirm", ErrInvalidState)
	ErrFriendPickerClosed  = fmt.Errorf("%w: choose a friend to call first", ErrInvalidState)
	ErrSessionClosed       = fmt.Errorf("%w: session closed", ErrInvalidState)
	ErrNotRestartable      = fmt.Errorf("%w: game cannot be restarted from this phase", ErrInvalidState)
	ErrIllegalTransition   = fmt.Errorf("%w: illegal status transition", ErrInvalidState)
	ErrIllegalRoom         = fmt.Errorf("%w: room document is inconsistent", ErrInvalidState)
	ErrGameOver            = fmt.Errorf("%w: game is over", ErrInvalidState)
	ErrRoomExists          = fmt.Errorf("%w: room already exists", ErrInvalidState)
	ErrConcurrentUpdate    = fmt.Errorf("%w: room changed concurrently", ErrInvalidState)
	ErrSubscriptionDropped = fmt.Errorf("%w: room subscription dropped", ErrConnectionLost)
)
