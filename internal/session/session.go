// Package session implements the payment session state machine and its
// authorization-flow orchestrator. A session accepts a resolved checkout
// target, presents a native payment sheet, answers each sheet event with
// the correct sequence of cart mutations, classifies every failure into
// inline / interrupt / fatal, and drives the session to a single terminal
// disposition before resetting for reuse.
//
// Sessions are single-writer: the platform sheet serializes its callbacks,
// so handlers are never invoked concurrently and no locking is needed. A
// handler must not be re-entered while a prior mutation chain is
// outstanding; the orchestrator never spawns concurrent chains itself.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/google/uuid"

	"wallet-checkout/internal/cartapi"
	"wallet-checkout/internal/classify"
	"wallet-checkout/internal/model"
	"wallet-checkout/internal/sheet"
	"wallet-checkout/internal/target"
)

// genericErrorMessage is shown when an error cannot be translated for the
// sheet. No further translation is attempted.
const genericErrorMessage = "Something went wrong. Please try again or use the web checkout."

// Config carries everything a session needs at construction. There is no
// ambient configuration; all shared settings arrive here.
type Config struct {
	Sheet   sheet.Config
	Cleanup CleanupConfig
}

// FallbackPresenter receives the hand-off URL when the sheet finishes:
// either a success redirect or the checkout URL carrying an interrupt
// reason. Its own completion events are outside this core.
type FallbackPresenter interface {
	Present(ctx context.Context, url string)
}

// Session is one run of the payment state machine, live from idle to
// completed/reset. Safe to reuse after Finished returns.
type Session struct {
	id       string
	client   cartapi.Client
	fallback FallbackPresenter
	cfg      Config
	cleanup  *CleanupPolicy
	logger   *slog.Logger

	state State

	// Mutable per-flow fields, cleared on reset.
	target         target.Target
	cart           *model.Cart
	pinnedCurrency string
	addressID      string
	reason         classify.Reason
	fallbackURL    string
	redirectURL    string
	failed         bool
	lastMethods    []sheet.ShippingMethod
	lastItems      []sheet.SummaryItem
}

// New creates an idle session.
func New(client cartapi.Client, fallback FallbackPresenter, cfg Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Session{
		id:       id,
		client:   client,
		fallback: fallback,
		cfg:      cfg,
		cleanup:  NewCleanupPolicy(cfg.Cleanup, logger),
		logger:   logger.With(slog.String("session_id", id)),
		state:    StateIdle,
	}
}

// ID returns the session's stable identifier, used in logs.
func (s *Session) ID() string { return s.id }

// State returns the current session state.
func (s *Session) State() State { return s.state }

// transition applies a state change if the legality table allows it.
// Illegal transitions are logged and leave the state untouched.
func (s *Session) transition(to State) bool {
	if !CanTransition(s.state, to) {
		s.logger.Warn("rejected state transition",
			slog.String("from", string(s.state)),
			slog.String("to", string(to)),
		)
		return false
	}
	s.logger.Debug("state transition",
		slog.String("from", string(s.state)),
		slog.String("to", string(to)),
	)
	s.state = to
	return true
}

// Start opens the session for a resolved target: fetches or creates the
// cart, pins its currency, and builds the payment request for the sheet.
// A failure to build the request resets the session (the sheet was never
// presented) and returns the error.
func (s *Session) Start(ctx context.Context, t target.Target) (*sheet.PaymentRequest, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid checkout target: %s", t.Reason)
	}
	if !s.transition(StateStartPaymentRequest) {
		return nil, fmt.Errorf("session busy: state is %s", s.state)
	}

	var cart *model.Cart
	var err error
	switch t.Kind {
	case target.KindCart:
		cart, err = s.client.CartFetch(ctx, t.ID)
	case target.KindVariant:
		cart, err = s.client.CartCreate(ctx, t.ID, t.Quantity)
	default:
		err = fmt.Errorf("unsupported target kind %q", t.Kind)
	}
	if err != nil {
		return nil, s.abortPresentation(fmt.Errorf("loading cart: %w", err))
	}
	if cart.TotalAmount.CurrencyCode == "" {
		return nil, s.abortPresentation(model.NewMissingFieldError("cart currency"))
	}

	s.target = t
	s.cart = cart
	s.pinnedCurrency = cart.TotalAmount.CurrencyCode

	req, err := sheet.BuildPaymentRequest(cart, s.cfg.Sheet)
	if err != nil {
		return nil, s.abortPresentation(fmt.Errorf("building payment request: %w", err))
	}

	s.transition(StateSheetPresented)
	s.lastMethods = req.ShippingMethods
	s.lastItems = req.LineItems
	return req, nil
}

// abortPresentation unwinds a session whose sheet never presented.
func (s *Session) abortPresentation(err error) error {
	s.logger.Error("sheet presentation aborted", slog.String("error", err.Error()))
	s.transition(StateReset)
	s.resetFields()
	s.transition(StateIdle)
	return err
}

// === Sheet event handlers (sheet.Events) ===

// ShippingContactSelected upserts the chosen address into the cart and
// re-resolves delivery options, returning the refreshed shipping methods
// and totals. Classified failures surface inline or interrupt the sheet.
func (s *Session) ShippingContactSelected(ctx context.Context, contact sheet.ShippingContact) *sheet.Update {
	if s.state != StateSheetPresented {
		s.logger.Warn("shipping contact event outside presented sheet", slog.String("state", string(s.state)))
		return s.failureUpdate(nil)
	}

	addr, err := sheet.DecodeShippingContact(contact)
	if err == nil {
		err = s.upsertDeliveryAddress(ctx, addr, false)
	}
	if err == nil {
		err = s.refreshDelivery(ctx)
	}
	if err != nil {
		return s.classifyStepFailure(err)
	}
	return s.successUpdate()
}

// ShippingMethodSelected applies the chosen delivery option and re-quotes.
// Failures here degrade gracefully: the sheet keeps its prior totals and
// the buyer can pick again, so nothing escalates. Currency drift is the
// exception — the pinned-currency invariant holds in every step, so a
// drifted snapshot interrupts the sheet instead of re-quoting.
func (s *Session) ShippingMethodSelected(ctx context.Context, method sheet.ShippingMethod) *sheet.Update {
	if s.state != StateSheetPresented {
		s.logger.Warn("shipping method event outside presented sheet", slog.String("state", string(s.state)))
		return s.priorUpdate()
	}

	handle, err := sheet.DecodeShippingMethod(method)
	if err == nil {
		err = s.applyShippingMethod(ctx, handle)
	}
	if err == nil {
		err = s.refreshDelivery(ctx)
	}
	if err != nil {
		if errors.Is(err, model.ErrCurrencyChanged) {
			return s.classifyStepFailure(err)
		}
		s.logger.Warn("shipping method re-quote failed, keeping prior totals",
			slog.String("handle", method.Handle),
			slog.String("error", err.Error()),
		)
		return s.priorUpdate()
	}
	return s.successUpdate()
}

// PaymentAuthorized runs the completion pipeline: attach email, re-validate
// the shipping address strictly, attach the payment token, submit. The
// pinned-currency invariant is re-checked after every sub-step's snapshot.
func (s *Session) PaymentAuthorized(ctx context.Context, auth sheet.Authorization) *sheet.Update {
	if !s.transition(StatePaymentAuthorized) {
		return s.failureUpdate(nil)
	}

	token, email, err := sheet.DecodeAuthorization(auth)
	if err != nil {
		// Contract violation from the sheet itself; the authorization
		// cannot proceed and there is nothing to fix inline.
		s.markFailed()
		s.transition(StatePaymentAuthorizationFailed)
		s.logger.Error("authorization payload incomplete", slog.String("error", err.Error()))
		return s.failureUpdate(nil)
	}

	if err := s.runCompletionPipeline(ctx, token, email, auth); err != nil {
		return s.classifyAuthFailure(err)
	}

	s.transition(StateCartSubmitted)
	return &sheet.Update{Status: sheet.StatusSuccess, LineItems: s.lastItems}
}

func (s *Session) runCompletionPipeline(ctx context.Context, token cartapi.PaymentToken, email string, auth sheet.Authorization) error {
	cart, err := s.client.BuyerIdentityUpdate(ctx, s.cart.ID, email)
	if err != nil {
		return err
	}
	if err := s.replaceSnapshot(cart); err != nil {
		return err
	}

	if s.cart.RequiresShipping() {
		addr, err := sheet.DecodeShippingContact(auth.Contact)
		if err != nil {
			return err
		}
		if err := s.upsertDeliveryAddress(ctx, addr, true); err != nil {
			return err
		}
		if err := s.refreshDelivery(ctx); err != nil {
			return err
		}
	}

	cart, err = s.client.PaymentUpdate(ctx, s.cart.ID, s.cart.TotalAmount, token)
	if err != nil {
		return err
	}
	if err := s.replaceSnapshot(cart); err != nil {
		return err
	}

	redirect, err := s.client.SubmitForCompletion(ctx, s.cart.ID)
	if err != nil {
		return err
	}
	s.redirectURL = redirect
	return nil
}

// Finished handles sheet dismissal regardless of outcome: scrub personal
// data from failed carts (detached, best effort), resolve the hand-off
// URL, present it, and reset the session for reuse. Returns the URL that
// was presented, or empty when there was nothing to present.
func (s *Session) Finished(ctx context.Context) string {
	if s.failed && s.cart != nil {
		// Detached so cleanup retries never hold up the hand-off.
		cleanupCtx := context.WithoutCancel(ctx)
		go s.cleanup.Run(cleanupCtx, s.client, s.cart.ID)
	}

	handoff := s.handoffURL()

	if !s.transition(StateCompleted) {
		// Escape hatch keeps the session recoverable even if dismissal
		// arrives in a state the table does not cover.
		s.transition(StateUnexpectedError)
		s.transition(StateCompleted)
	}

	if handoff != "" && s.fallback != nil {
		s.transition(StatePresentingFallback)
		s.fallback.Present(ctx, handoff)
		s.transition(StateCompleted)
	}

	s.transition(StateReset)
	s.resetFields()
	s.transition(StateIdle)
	return handoff
}

// Verify Session implements the sheet event subscription interface.
var _ sheet.Events = (*Session)(nil)

// === Mutation helpers ===

// replaceSnapshot swaps in a new cart snapshot wholesale, enforcing the
// pinned-currency invariant on every replacement.
func (s *Session) replaceSnapshot(cart *model.Cart) error {
	if cart == nil {
		return model.NewMissingFieldError("cart snapshot")
	}
	if got := cart.TotalAmount.CurrencyCode; got != s.pinnedCurrency {
		return &model.CurrencyChangedError{Pinned: s.pinnedCurrency, Got: got}
	}
	s.cart = cart
	return nil
}

// upsertDeliveryAddress creates the cart address on first use and updates
// the remembered address thereafter. If the snapshot no longer lists the
// remembered id, the address is added as new instead of failing.
func (s *Session) upsertDeliveryAddress(ctx context.Context, addr model.PostalAddress, validate bool) error {
	addressID := s.addressID
	if addressID != "" && !s.snapshotHasAddress(addressID) {
		addressID = ""
	}

	var cart *model.Cart
	var err error
	if addressID == "" {
		cart, err = s.client.DeliveryAddressesAdd(ctx, s.cart.ID, addr, validate)
	} else {
		cart, err = s.client.DeliveryAddressesUpdate(ctx, s.cart.ID, addressID, addr, validate)
	}
	if err != nil {
		return err
	}
	if err := s.replaceSnapshot(cart); err != nil {
		return err
	}
	if selected := s.cart.SelectedDeliveryAddress(); selected != nil {
		s.addressID = selected.ID
	}
	return nil
}

func (s *Session) snapshotHasAddress(id string) bool {
	for _, a := range s.cart.DeliveryAddresses {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (s *Session) applyShippingMethod(ctx context.Context, handle string) error {
	group := s.cart.FirstDeliveryGroup()
	if group == nil {
		return model.NewMissingFieldError("delivery group")
	}
	if group.OptionByHandle(handle) == nil {
		return fmt.Errorf("unknown delivery option %q", handle)
	}
	cart, err := s.client.SelectedDeliveryOptionsUpdate(ctx, s.cart.ID, group.ID, handle)
	if err != nil {
		return err
	}
	return s.replaceSnapshot(cart)
}

// refreshDelivery re-runs delivery-option resolution for the cart.
func (s *Session) refreshDelivery(ctx context.Context) error {
	cart, err := s.client.PrepareForCompletion(ctx, s.cart.ID)
	if err != nil {
		return err
	}
	return s.replaceSnapshot(cart)
}

// === Failure routing ===

// classifyStepFailure routes a pre-authorization step error. Inline errors
// leave the state untouched; interrupts and fatals mark the session failed.
func (s *Session) classifyStepFailure(err error) *sheet.Update {
	res := classify.Classify(err, s.shippingCountry(), s.checkoutURL())
	switch res.Outcome {
	case classify.OutcomeInline:
		return s.failureUpdate(res.FieldErrors)
	case classify.OutcomeInterrupt:
		s.interrupt(res, err)
		return s.failureUpdate(nil)
	default:
		s.fatal(err)
		return s.failureUpdate(nil)
	}
}

// classifyAuthFailure routes an error from the completion pipeline.
// Inline errors end the authorization (the buyer may retry from the web
// checkout); interrupts and fatals behave as in earlier steps.
func (s *Session) classifyAuthFailure(err error) *sheet.Update {
	res := classify.Classify(err, s.shippingCountry(), s.checkoutURL())
	switch res.Outcome {
	case classify.OutcomeInline:
		s.markFailed()
		s.transition(StatePaymentAuthorizationFailed)
		s.logger.Info("payment authorization failed on validation", slog.String("error", err.Error()))
		return s.failureUpdate(res.FieldErrors)
	case classify.OutcomeInterrupt:
		s.interrupt(res, err)
		return s.failureUpdate(nil)
	default:
		s.fatal(err)
		return s.failureUpdate(nil)
	}
}

func (s *Session) interrupt(res classify.Result, err error) {
	s.markFailed()
	s.reason = res.Reason
	if res.FallbackURL != "" {
		s.fallbackURL = res.FallbackURL
	}
	s.transition(StateInterrupt)
	s.logger.Info("sheet interrupted",
		slog.String("reason", string(res.Reason)),
		slog.String("error", err.Error()),
	)
}

func (s *Session) fatal(err error) {
	s.markFailed()
	s.transition(StateUnexpectedError)
	s.logger.Error("unclassified checkout error", slog.String("error", err.Error()))
}

func (s *Session) markFailed() { s.failed = true }

// === Updates & hand-off ===

// successUpdate recomputes the sheet view from the current snapshot and
// caches it as the prior view for graceful degradation.
func (s *Session) successUpdate() *sheet.Update {
	methods := sheet.ShippingMethods(s.cart)
	items, err := sheet.SummaryItems(s.cart)
	if err != nil {
		// Snapshot lost its total mid-flow; treat as fatal.
		s.fatal(err)
		return s.failureUpdate(nil)
	}
	s.lastMethods = methods
	s.lastItems = items
	return &sheet.Update{
		Status:          sheet.StatusSuccess,
		ShippingMethods: methods,
		LineItems:       items,
	}
}

// priorUpdate re-issues the last known-good sheet view.
func (s *Session) priorUpdate() *sheet.Update {
	return &sheet.Update{
		Status:          sheet.StatusSuccess,
		ShippingMethods: s.lastMethods,
		LineItems:       s.lastItems,
	}
}

// failureUpdate builds a failure reply; with no field errors it carries
// the single generic message.
func (s *Session) failureUpdate(fieldErrors []sheet.FieldError) *sheet.Update {
	if len(fieldErrors) == 0 {
		fieldErrors = []sheet.FieldError{{Message: genericErrorMessage}}
	}
	return &sheet.Update{
		Status:          sheet.StatusFailure,
		Errors:          fieldErrors,
		ShippingMethods: s.lastMethods,
		LineItems:       s.lastItems,
	}
}

// handoffURL resolves the URL presented after dismissal: a success
// redirect wins; otherwise the last known checkout URL with the interrupt
// reason (if any) appended as a query parameter.
func (s *Session) handoffURL() string {
	if s.redirectURL != "" {
		return s.redirectURL
	}

	base := s.fallbackURL
	if base == "" {
		base = s.checkoutURL()
	}
	if base == "" {
		return ""
	}
	if s.reason == "" {
		return base
	}

	u, err := url.Parse(base)
	if err != nil {
		s.logger.Warn("unparseable checkout URL, presenting as-is", slog.String("url", base))
		return base
	}
	q := u.Query()
	q.Set("reason", s.reason.QueryValue())
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Session) checkoutURL() string {
	if s.cart == nil {
		return ""
	}
	return s.cart.CheckoutURL
}

func (s *Session) shippingCountry() string {
	if s.cart == nil {
		return ""
	}
	return s.cart.ShippingCountry()
}

// resetFields clears all per-flow state so the session can be reused.
func (s *Session) resetFields() {
	s.target = target.Target{}
	s.cart = nil
	s.pinnedCurrency = ""
	s.addressID = ""
	s.reason = ""
	s.fallbackURL = ""
	s.redirectURL = ""
	s.failed = false
	s.lastMethods = nil
	s.lastItems = nil
}
