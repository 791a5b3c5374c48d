package session

// State is the payment session's lifecycle state. Exactly one session owns
// exactly one State at a time; the orchestrator is the only writer.
type State string

const (
	StateIdle                       State = "idle"
	StateStartPaymentRequest        State = "start_payment_request"
	StateSheetPresented             State = "sheet_presented"
	StateInterrupt                  State = "interrupt"
	StatePaymentAuthorized          State = "payment_authorized"
	StatePaymentAuthorizationFailed State = "payment_authorization_failed"
	StateCartSubmitted              State = "cart_submitted_for_completion"
	StateUnexpectedError            State = "unexpected_error"
	StateTerminalError              State = "terminal_error"
	StatePresentingFallback         State = "presenting_fallback"
	StateCompleted                  State = "completed"
	StateReset                      State = "reset"
)

// allowedTransitions is the session's legality table. Transitions to
// StateUnexpectedError and StateTerminalError are legal from every state
// and handled separately in CanTransition.
var allowedTransitions = map[State][]State{
	StateIdle:                       {StateStartPaymentRequest, StateCompleted},
	StateStartPaymentRequest:        {StateSheetPresented, StateReset},
	StateSheetPresented:             {StatePaymentAuthorized, StatePaymentAuthorizationFailed, StateInterrupt, StateCompleted},
	StatePaymentAuthorized:          {StateCartSubmitted, StatePaymentAuthorizationFailed, StateInterrupt},
	StatePaymentAuthorizationFailed: {StateCompleted, StateReset},
	StateCartSubmitted:              {StateCompleted},
	StateInterrupt:                  {StateCompleted},
	StateUnexpectedError:            {StateCompleted, StateTerminalError},
	StateTerminalError:              {StateCompleted},
	StatePresentingFallback:         {StateCompleted},
	StateCompleted:                  {StatePresentingFallback, StateReset},
	StateReset:                      {StateIdle},
}

// CanTransition reports whether from → to is a legal session transition.
// Pure function over the legality table so the table itself is testable.
func CanTransition(from, to State) bool {
	// Escape hatch for unrecoverable failures.
	if to == StateUnexpectedError || to == StateTerminalError {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllStates lists every session state, in no particular order.
// Exposed for exhaustive legality testing.
func AllStates() []State {
	return []State{
		StateIdle,
		StateStartPaymentRequest,
		StateSheetPresented,
		StateInterrupt,
		StatePaymentAuthorized,
		StatePaymentAuthorizationFailed,
		StateCartSubmitted,
		StateUnexpectedError,
		StateTerminalError,
		StatePresentingFallback,
		StateCompleted,
		StateReset,
	}
}
