package room

type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindState         ErrorKind = "state"
	KindExternalFetch ErrorKind = "external_fetch"
)

const (
	ReasonInternal        = "Something went wrong."
	ReasonRoomIdRequired  = "Room id is required."
	ReasonUserIdRequired  = "User id is required."
	ReasonRoomNotFound    = "Room not found."
	ReasonNotHost         = "Only the host can do that."
	ReasonNotParticipant  = "User is not in this room."
	ReasonAlreadyHost     = "You are already the host."
	ReasonClaimPending    = "Host claim already pending."
	ReasonClaimTaken      = "Another host claim is already pending."
	ReasonNoPendingClaim  = "No pending host claim."
	ReasonNoHost          = "No host is set."
	ReasonViewerQueueAdd  = "Only the host can add to the queue."
	ReasonNotItemOwner    = "Only the host or whoever queued it can remove it."
	ReasonInvalidIndex    = "Invalid queue index."
	ReasonInvalidMove     = "Invalid move indices."
	ReasonQueueEmpty      = "Queue is empty."
	ReasonQueueFull       = "Queue is full."
	ReasonHistoryEmpty    = "Nothing to go back to."
	ReasonInvalidMediaURL = "Invalid media URL."
	ReasonNoMedia         = "No playable media found."
	ReasonInvalidSyncMode = "Invalid sync mode."
	ReasonSyncInactive    = "Sync mode is not active."
)

// Error is a rejected action. Reason is safe to show to users.
type Error struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(reason string) *Error {
	return &Error{Kind: KindValidation, Reason: reason}
}

func authorizationError(reason string) *Error {
	return &Error{Kind: KindAuthorization, Reason: reason}
}

func stateError(reason string) *Error {
	return &Error{Kind: KindState, Reason: reason}
}

func externalFetchError(reason string, err error) *Error {
	return &Error{Kind: KindExternalFetch, Reason: reason, Err: err}
}
