package session

import "testing"

func TestCanTransition_LegalPairs(t *testing.T) {
	tests := []struct {
		from, to State
	}{
		{StateIdle, StateStartPaymentRequest},
		{StateStartPaymentRequest, StateSheetPresented},
		{StateStartPaymentRequest, StateReset},
		{StateSheetPresented, StatePaymentAuthorized},
		{StateSheetPresented, StatePaymentAuthorizationFailed},
		{StateSheetPresented, StateInterrupt},
		{StateSheetPresented, StateCompleted},
		{StatePaymentAuthorized, StateCartSubmitted},
		{StatePaymentAuthorized, StatePaymentAuthorizationFailed},
		{StatePaymentAuthorized, StateInterrupt},
		{StatePaymentAuthorizationFailed, StateCompleted},
		{StateCartSubmitted, StateCompleted},
		{StateInterrupt, StateCompleted},
		{StateUnexpectedError, StateCompleted},
		{StateUnexpectedError, StateTerminalError},
		{StateTerminalError, StateCompleted},
		{StatePresentingFallback, StateCompleted},
		{StateCompleted, StatePresentingFallback},
		{StateCompleted, StateReset},
		{StateReset, StateIdle},
	}

	for _, tt := range tests {
		if !CanTransition(tt.from, tt.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tt.from, tt.to)
		}
	}
}

func TestCanTransition_IllegalPairs(t *testing.T) {
	tests := []struct {
		from, to State
	}{
		{StateIdle, StateSheetPresented},
		{StateIdle, StatePaymentAuthorized},
		{StateSheetPresented, StateCartSubmitted},
		{StateCartSubmitted, StateSheetPresented},
		{StateCartSubmitted, StateReset},
		{StateInterrupt, StateSheetPresented},
		{StateCompleted, StateIdle},
		{StateReset, StateSheetPresented},
		{StatePaymentAuthorized, StateCompleted},
	}

	for _, tt := range tests {
		if CanTransition(tt.from, tt.to) {
			t.Errorf("CanTransition(%s, %s) = true, want false", tt.from, tt.to)
		}
	}
}

// Error states must be reachable from everywhere, including themselves.
func TestCanTransition_ErrorStatesAlwaysReachable(t *testing.T) {
	for _, from := range AllStates() {
		if !CanTransition(from, StateUnexpectedError) {
			t.Errorf("CanTransition(%s, %s) = false, want true", from, StateUnexpectedError)
		}
		if !CanTransition(from, StateTerminalError) {
			t.Errorf("CanTransition(%s, %s) = false, want true", from, StateTerminalError)
		}
	}
}

// Every state must have a path forward; the machine can never strand.
func TestTransitionTable_NoDeadEnds(t *testing.T) {
	for _, from := range AllStates() {
		if len(allowedTransitions[from]) == 0 {
			t.Errorf("state %s has no outgoing transitions", from)
		}
	}
}

// The table must only mention declared states.
func TestTransitionTable_KnownStatesOnly(t *testing.T) {
	known := make(map[State]bool)
	for _, s := range AllStates() {
		known[s] = true
	}
	for from, tos := range allowedTransitions {
		if !known[from] {
			t.Errorf("table source %q is not a declared state", from)
		}
		for _, to := range tos {
			if !known[to] {
				t.Errorf("table target %q (from %q) is not a declared state", to, from)
			}
		}
	}
}
