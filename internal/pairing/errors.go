package pairing

import "errors"

// Error taxonomy surfaced to the platform shell. Each maps to a
// plain-language reply for the acting user.
var (
	// ErrInvalidIdentifier means the raw partner input is not a
	// well-formed positive integer.
	ErrInvalidIdentifier = errors.New("pairing: invalid partner identifier")
	// ErrSelfTarget means a user tried to pair with their own ID.
	ErrSelfTarget = errors.New("pairing: cannot pair with yourself")
	// ErrReceiverBusy means the candidate already has an active chat.
	ErrReceiverBusy = errors.New("pairing: receiver already in an active chat")
	// ErrReceiverUnreachable means the reachability probe failed: the
	// candidate never started the bot or has blocked it.
	ErrReceiverUnreachable = errors.New("pairing: receiver unreachable")
	// ErrInvitationNotFound means no pending invitation exists for the
	// pair; a replayed resolution lands here as well.
	ErrInvitationNotFound = errors.New("pairing: invitation not found")
	// ErrNoActiveChat means the acting user has no chat to end or relay in.
	ErrNoActiveChat = errors.New("pairing: no active chat")
	// ErrStorageFault wraps unexpected persistence failures. The prior
	// state is intact; the operation was rolled back.
	ErrStorageFault = errors.New("pairing: storage fault")
)
