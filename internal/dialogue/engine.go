package dialogue

import (
	"context"
	"errors"
	"strings"

	"github.com/tidycall/cleaning-voice-agent/internal/observability/metrics"
	"github.com/tidycall/cleaning-voice-agent/pkg/logging"
)

const (
	// postcodeMaxAttempts failed decodes before the town-and-landmark
	// fallback kicks in.
	postcodeMaxAttempts = 2
	// defaultMaxSilentTurns consecutive empty utterances before the
	// engine falls back to the opening question.
	defaultMaxSilentTurns = 2
)

var correctionSignals = []string{
	"actually", "i meant", "i said", "change that", "that's wrong",
	"thats wrong", "not right", "mistake", "correction",
}

// Engine is the per-call stage machine. It owns every transition: handlers
// feed it one utterance at a time and speak whatever it returns. All state
// lives in the CallSession, so the engine itself is safe to share across
// calls.
type Engine struct {
	proposer       DraftProposer
	actions        *Coordinator
	metrics        *metrics.DialogueMetrics
	logger         *logging.Logger
	maxSilentTurns int
}

// EngineConfig wires the engine's collaborators. Proposer and Metrics are
// optional.
type EngineConfig struct {
	Proposer       DraftProposer
	Actions        *Coordinator
	Metrics        *metrics.DialogueMetrics
	Logger         *logging.Logger
	MaxSilentTurns int
}

// NewEngine creates a dialogue engine.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Actions == nil {
		panic("dialogue: engine requires an action coordinator")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.MaxSilentTurns <= 0 {
		cfg.MaxSilentTurns = defaultMaxSilentTurns
	}
	return &Engine{
		proposer:       cfg.Proposer,
		actions:        cfg.Actions,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		maxSilentTurns: cfg.MaxSilentTurns,
	}
}

// Greeting opens a fresh call.
func (e *Engine) Greeting(s *CallSession) string {
	e.metrics.ObserveCallStarted()
	return e.speak(s, OpeningPrompt)
}

// ProcessTurn handles one caller utterance and returns the reply to speak.
// done is true when the call has reached a terminal stage and the transport
// should stop listening.
func (e *Engine) ProcessTurn(ctx context.Context, s *CallSession, utterance string) (reply string, done bool) {
	if s.Stage.Terminal() {
		if s.Stage == StageDoneBooked {
			return e.speak(s, promptAfterBooked), true
		}
		return e.speak(s, promptBookingDeclined), true
	}

	text := strings.TrimSpace(utterance)
	if text == "" {
		s.SilentTurns++
		if s.SilentTurns > e.maxSilentTurns {
			// Never dead-end a silent caller: return to the opening
			// question and keep the line open.
			s.SilentTurns = 0
			return e.speak(s, OpeningPrompt), false
		}
		return e.speak(s, e.promptFor(s, s.Stage, s.Attempt(s.Stage))), false
	}
	s.SilentTurns = 0
	s.Hear(text)
	e.metrics.ObserveTurn(string(s.Stage))

	// Best-effort AI backfill for fields the caller stated in passing.
	// Deterministic values already in the draft always win, and any
	// failure here is silently a no-op.
	if e.proposer != nil && !s.Quote.Submitted && isQuoteStage(s.Stage) {
		if proposed, err := e.proposer.Propose(ctx, s.Quote, text); err == nil {
			s.Quote = MergeDrafts(s.Quote, proposed)
		} else {
			e.logger.Debug("draft proposal discarded", "call_id", s.CallID, "error", err)
		}
	}

	notice := e.detectExtras(s, text)
	reply, done = e.handleStage(ctx, s, text)
	return e.speak(s, notice+reply), done
}

// speak is the output boundary: every outward sentence passes the currency
// lock here, whatever produced it.
func (e *Engine) speak(s *CallSession, reply string) string {
	out, tripped := LockCurrency(reply)
	if tripped {
		e.metrics.ObserveCurrencyTrip()
		e.logger.Warn("currency lock replaced outbound reply", "call_id", s.CallID)
	}
	s.Say(out)
	return out
}

// detectExtras scans any quote-stage utterance for allow-listed extras and
// queues the new ones for the quantity loop. Returns the impact disclosure
// the first time extras come up, and "" afterwards.
func (e *Engine) detectExtras(s *CallSession, text string) string {
	if !isQuoteStage(s.Stage) || s.Stage == StageExtraQuantity || s.Quote.Submitted {
		return ""
	}
	var newlyAdded bool
	for _, name := range ExtractExtras(text) {
		if _, exists := s.Quote.ExtraQuantity(name); !exists {
			s.Quote.UpsertExtra(name, 0)
			newlyAdded = true
		}
		if qty, _ := s.Quote.ExtraQuantity(name); qty == 0 {
			s.QueueExtra(name)
		}
	}
	if newlyAdded && !s.ExtrasNoticeGiven {
		s.ExtrasNoticeGiven = true
		return extrasImpactNotice
	}
	return ""
}

func isQuoteStage(stage Stage) bool {
	switch stage {
	case StageOfferBooking, StageBookingName, StageBookingPhone, StageBookingEmail,
		StageBookingAddress, StageBookingDate, StageBookingTime, StageCallback,
		StageDoneBooked, StageDoneDeclined:
		return false
	}
	return true
}

// nextQuoteStage picks the first stage whose slot is still open, in the
// fixed question order. Fields the AI merger backfilled are skipped
// naturally.
func (e *Engine) nextQuoteStage(s *CallSession) Stage {
	q := &s.Quote
	if s.PendingProperty != "" {
		return StageConfirmProperty
	}
	if q.ServiceCategory == "" {
		return StageCategory
	}
	if q.ServiceType() == "" {
		return StageServiceType
	}
	if q.needsJobType() && q.JobType == "" {
		return StageJobType
	}
	if q.PropertyType() == "" {
		return StagePropertyType
	}
	if q.Postcode == "" && !s.PostcodeFallbackTaken {
		if s.Attempt(StagePostcode) >= postcodeMaxAttempts {
			return StagePostcodeFallback
		}
		return StagePostcode
	}
	if q.ServiceCategory == CategoryDomestic {
		if q.Bedrooms == 0 && !s.HasAnswered(StageBedrooms) {
			return StageBedrooms
		}
		if q.Bathrooms == 0 && !s.HasAnswered(StageBathrooms) {
			return StageBathrooms
		}
		if q.CountsToiletsSeparately() && !s.HasAnswered(StageToilets) {
			return StageToilets
		}
	} else {
		if !s.HasAnswered(StageCommercialRooms) {
			return StageCommercialRooms
		}
		if !s.HasAnswered(StageToilets) {
			return StageToilets
		}
		if !s.HasAnswered(StageKitchens) {
			return StageKitchens
		}
	}
	if q.IsHourly() && q.PreferredHours == 0 {
		return StageHours
	}
	if q.JobType == JobTypeRegular && q.VisitsPerWeek == 0 {
		return StageFrequency
	}
	// Extras can land in the draft without a quantity, for instance via the
	// AI backfill. Re-queue them so the quantity loop always covers them.
	for _, extra := range q.Extras {
		if extra.Quantity == 0 {
			s.QueueExtra(extra.Name)
		}
	}
	if len(s.PendingExtras) > 0 {
		return StageExtraQuantity
	}
	if !s.ExtrasAsked {
		return StageExtras
	}
	return StageConfirmQuote
}

// advance moves the call to the next open quote stage and returns its
// first-ask prompt.
func (e *Engine) advance(s *CallSession) string {
	next := e.nextQuoteStage(s)
	if next == StageExtras {
		s.ExtrasAsked = true
	}
	s.Stage = next
	return e.promptFor(s, next, 0)
}

// retry re-asks the current stage with wording that escalates by attempt.
func (e *Engine) retry(s *CallSession) string {
	attempt := s.BumpAttempt(s.Stage)
	return e.promptFor(s, s.Stage, attempt)
}

func (e *Engine) promptFor(s *CallSession, stage Stage, attempt int) string {
	q := &s.Quote
	switch stage {
	case StageCategory:
		return promptCategory(attempt)
	case StageServiceType:
		return promptServiceType(q.ServiceCategory, attempt)
	case StageJobType:
		return promptJobType(attempt)
	case StagePropertyType:
		return promptPropertyType(q.ServiceCategory, attempt)
	case StageConfirmProperty:
		return promptConfirmProperty(s.PendingProperty)
	case StagePostcode:
		return promptPostcode(attempt)
	case StagePostcodeFallback:
		return promptPostcodeFallback
	case StageBedrooms:
		return promptBedrooms(attempt)
	case StageBathrooms:
		return promptBathrooms(attempt)
	case StageToilets:
		return promptToilets(attempt)
	case StageKitchens:
		return promptKitchens(attempt)
	case StageCommercialRooms:
		return promptCommercialRooms(attempt)
	case StageHours:
		return promptHours(attempt)
	case StageFrequency:
		return promptFrequency(attempt)
	case StageExtras:
		return promptExtras(attempt)
	case StageExtraQuantity:
		name, _ := s.NextPendingExtra()
		return promptExtraQuantity(name, attempt)
	case StageConfirmQuote:
		return summarizeQuote(q)
	case StageOfferBooking:
		return promptOfferBooking(attempt)
	case StageBookingName:
		return promptBookingName(attempt)
	case StageBookingPhone:
		return promptBookingPhone(attempt)
	case StageBookingEmail:
		return promptBookingEmail(attempt)
	case StageBookingAddress:
		return promptBookingAddress(attempt)
	case StageBookingDate:
		return promptBookingDate(attempt)
	case StageBookingTime:
		return promptBookingTime(attempt)
	case StageCallback:
		return callbackPrompt
	default:
		return OpeningPrompt
	}
}

func (e *Engine) handleStage(ctx context.Context, s *CallSession, text string) (string, bool) {
	q := &s.Quote

	if s.Correcting {
		return e.handleCorrection(s, text), false
	}

	switch s.Stage {
	case StageCategory:
		if category, ok := ExtractCategory(text); ok {
			q.SetCategory(category)
			return e.advance(s), false
		}
		return e.retry(s), false

	case StageServiceType:
		if q.ServiceCategory == CategoryDomestic {
			if scope, ok := ExtractAreasScope(text); ok {
				// Restricting the job to named areas makes it a deep
				// clean of those areas.
				q.AreasScope = scope
				q.DomesticServiceType = ServiceDeepClean
				return e.advance(s), false
			}
		}
		if value, ok := ExtractServiceType(q.ServiceCategory, text); ok {
			if q.ServiceCategory == CategoryDomestic {
				q.DomesticServiceType = value
			} else {
				q.CommercialServiceType = value
			}
			return e.advance(s), false
		}
		return e.retry(s), false

	case StageJobType:
		if value, ok := ExtractJobType(text); ok {
			q.JobType = value
			return e.advance(s), false
		}
		return e.retry(s), false

	case StagePropertyType:
		value, highRisk, ok := ExtractPropertyType(q.ServiceCategory, text)
		if !ok {
			return e.retry(s), false
		}
		if highRisk && !s.PropertyConfirmed {
			s.PendingProperty = value
			return e.advance(s), false
		}
		e.setProperty(q, value)
		return e.advance(s), false

	case StageConfirmProperty:
		yes, ok := ExtractYesNo(text)
		if !ok {
			return e.retry(s), false
		}
		if yes {
			e.setProperty(q, s.PendingProperty)
			s.PropertyConfirmed = true
			s.PendingProperty = ""
			return e.advance(s), false
		}
		s.PendingProperty = ""
		s.BumpAttempt(StagePropertyType)
		s.Stage = StagePropertyType
		return promptPropertyType(q.ServiceCategory, s.Attempt(StagePropertyType)), false

	case StagePostcode:
		if postcode, ok := DecodePostcode(text); ok {
			q.Postcode = postcode
			s.ResetAttempts(StagePostcode)
			return e.advance(s), false
		}
		attempt := s.BumpAttempt(StagePostcode)
		if attempt >= postcodeMaxAttempts {
			s.Stage = StagePostcodeFallback
			return promptPostcodeFallback, false
		}
		return promptPostcode(attempt), false

	case StagePostcodeFallback:
		q.AppendNote("location: " + text)
		s.PostcodeFallbackTaken = true
		e.metrics.ObservePostcodeFallback()
		return e.advance(s), false

	case StageBedrooms:
		// Zero is a real answer here: studio flats have no separate bedroom.
		if n, ok := ExtractCount(text); ok {
			q.Bedrooms = n
			s.MarkAnswered(StageBedrooms)
			return e.advance(s), false
		}
		return e.retry(s), false

	case StageBathrooms:
		if n, ok := ExtractCount(text); ok {
			q.Bathrooms = n
			s.MarkAnswered(StageBathrooms)
			return e.advance(s), false
		}
		return e.retry(s), false

	case StageToilets:
		if n, ok := ExtractCount(text); ok {
			q.Toilets = n
			s.MarkAnswered(StageToilets)
			return e.advance(s), false
		}
		if yes, ok := ExtractYesNo(text); ok && !yes {
			q.Toilets = 0
			s.MarkAnswered(StageToilets)
			return e.advance(s), false
		}
		return e.retry(s), false

	case StageKitchens:
		if n, ok := ExtractCount(text); ok {
			q.Kitchens = n
			s.MarkAnswered(StageKitchens)
			return e.advance(s), false
		}
		if yes, ok := ExtractYesNo(text); ok {
			// A kitchen mentioned without a number counts as one.
			if yes {
				q.Kitchens = 1
			}
			s.MarkAnswered(StageKitchens)
			return e.advance(s), false
		}
		return e.retry(s), false

	case StageCommercialRooms:
		q.AppendNote("size/rooms: " + text)
		s.MarkAnswered(StageCommercialRooms)
		return e.advance(s), false

	case StageHours:
		if hours, ok := ExtractHours(text); ok {
			q.PreferredHours = hours
			return e.advance(s), false
		}
		return e.retry(s), false

	case StageFrequency:
		if visits, ok := ExtractFrequency(text); ok {
			q.VisitsPerWeek = visits
			return e.advance(s), false
		}
		return e.retry(s), false

	case StageExtras:
		// detectExtras has already queued anything named in this turn.
		if len(s.PendingExtras) > 0 {
			return e.advance(s), false
		}
		if yes, ok := ExtractYesNo(text); ok {
			if !yes {
				return e.advance(s), false
			}
			return e.retry(s), false
		}
		return e.retry(s), false

	case StageExtraQuantity:
		name, ok := s.NextPendingExtra()
		if !ok {
			return e.advance(s), false
		}
		if n, countOK := ExtractCount(text); countOK {
			if n == 0 {
				q.RemoveExtra(name)
			} else {
				q.UpsertExtra(name, n)
			}
			s.PopPendingExtra()
			return e.advance(s), false
		}
		if yes, ok := ExtractYesNo(text); (ok && !yes) || strings.Contains(strings.ToLower(text), "leave it") {
			q.RemoveExtra(name)
			s.PopPendingExtra()
			return e.advance(s), false
		}
		return e.retry(s), false

	case StageConfirmQuote:
		yes, ok := ExtractYesNo(text)
		if !ok {
			if containsAny(strings.ToLower(text), correctionSignals) {
				s.Correcting = true
				return "Of course. What should I change?", false
			}
			return e.retry(s), false
		}
		if !yes {
			s.Correcting = true
			return "No problem. What should I change?", false
		}
		return e.submitQuote(ctx, s), false

	case StageOfferBooking:
		if containsAny(strings.ToLower(text), correctionSignals) {
			s.Correcting = true
			return "Of course. What should I change?", false
		}
		yes, ok := ExtractYesNo(text)
		if !ok {
			return e.retry(s), false
		}
		if !yes {
			s.Stage = StageDoneDeclined
			return promptBookingDeclined, true
		}
		s.Stage = StageBookingName
		return promptBookingName(0), false

	case StageBookingName:
		if name, ok := ExtractName(text); ok {
			s.Booking.FullName = name
			s.Stage = StageBookingPhone
			return promptBookingPhone(0), false
		}
		return e.retry(s), false

	case StageBookingPhone:
		if phone, ok := ExtractPhone(text); ok {
			s.Booking.Phone = phone
			s.Stage = StageBookingEmail
			return promptBookingEmail(0), false
		}
		return e.retry(s), false

	case StageBookingEmail:
		if email, ok := ExtractEmail(text); ok {
			s.Booking.Email = email
			s.Stage = StageBookingAddress
			return promptBookingAddress(0), false
		}
		return e.retry(s), false

	case StageBookingAddress:
		if address, ok := ExtractAddress(text); ok {
			s.Booking.Address = address
			s.Stage = StageBookingDate
			return promptBookingDate(0), false
		}
		return e.retry(s), false

	case StageBookingDate:
		if date, ok := ExtractDate(text); ok {
			s.Booking.PreferredDate = date
			s.Stage = StageBookingTime
			return promptBookingTime(0), false
		}
		return e.retry(s), false

	case StageBookingTime:
		if timeOfDay, ok := ExtractTime(text); ok {
			s.Booking.PreferredTime = timeOfDay
			return e.submitBooking(ctx, s)
		}
		return e.retry(s), false

	case StageCallback:
		if phone, ok := ExtractPhone(text); ok {
			s.Booking.Phone = phone
			q.AppendNote("callback requested: " + phone)
			s.Stage = StageDoneDeclined
			return promptCallbackDone, true
		}
		return e.retry(s), false
	}

	// Unknown stage: recover rather than stall.
	s.Stage = StageCategory
	return OpeningPrompt, false
}

// handleCorrection lets the caller overwrite already-populated fields after
// rejecting the readback. If the quote was already priced, a change
// invalidates it and forces re-submission.
func (e *Engine) handleCorrection(s *CallSession, text string) string {
	q := &s.Quote
	lower := strings.ToLower(text)
	changed := false

	if value, ok := ExtractServiceType(q.ServiceCategory, text); ok && value != q.ServiceType() {
		if q.ServiceCategory == CategoryDomestic {
			q.DomesticServiceType = value
		} else {
			q.CommercialServiceType = value
		}
		changed = true
	}
	if value, _, ok := ExtractPropertyType(q.ServiceCategory, text); ok && value != q.PropertyType() {
		e.setProperty(q, value)
		changed = true
	}
	if postcode, ok := DecodePostcode(text); ok && postcode != q.Postcode {
		q.Postcode = postcode
		changed = true
	}
	if value, ok := ExtractJobType(text); ok && value != q.JobType {
		q.JobType = value
		changed = true
	}
	if visits, ok := ExtractFrequency(text); ok && visits != q.VisitsPerWeek {
		q.VisitsPerWeek = visits
		changed = true
	}
	if strings.Contains(lower, "hour") {
		if hours, ok := ExtractHours(text); ok && hours != q.PreferredHours {
			q.PreferredHours = hours
			changed = true
		}
	}
	for _, room := range []struct {
		keyword string
		field   *int
	}{
		{"bedroom", &q.Bedrooms},
		{"bathroom", &q.Bathrooms},
		{"toilet", &q.Toilets},
		{"kitchen", &q.Kitchens},
	} {
		if strings.Contains(lower, room.keyword) {
			if n, ok := ExtractCount(text); ok && n != *room.field {
				*room.field = n
				changed = true
			}
		}
	}

	if !changed {
		return "Sorry, what would you like to change? You can correct the property, postcode, rooms, hours or frequency."
	}

	s.Correcting = false
	if q.Submitted {
		// A confirmed correction invalidates the previous quote.
		q.Submitted = false
	}
	return e.advance(s)
}

func (e *Engine) setProperty(q *QuoteDraft, value string) {
	if q.ServiceCategory == CategoryCommercial {
		q.CommercialProperty = value
	} else {
		q.DomesticPropertyType = value
	}
}

// submitQuote runs the completeness gate and the pricing action, mapping
// each failure class to its recovery path.
func (e *Engine) submitQuote(ctx context.Context, s *CallSession) string {
	if missing := s.MissingQuoteField(); missing != "" {
		// Re-prompt for exactly the first missing item.
		e.logger.Info("completeness gate blocked pricing", "call_id", s.CallID, "missing", missing)
		return e.advance(s)
	}

	spoken, err := e.actions.SubmitQuote(ctx, s)
	switch {
	case err == nil:
		e.metrics.ObservePricing("success")
		s.Stage = StageOfferBooking
		return spoken + " " + promptOfferBooking(0)
	case errors.Is(err, ErrCurrencyViolation):
		e.metrics.ObservePricing("currency_violation")
		s.Stage = StageCallback
		return callbackPrompt
	default:
		e.metrics.ObservePricing("failure")
		// Resume from the postcode step, the cheapest recoverable point.
		s.Stage = StagePostcode
		s.ResetAttempts(StagePostcode)
		return pricingApology + promptPostcode(0)
	}
}

func (e *Engine) submitBooking(ctx context.Context, s *CallSession) (string, bool) {
	if err := e.actions.SubmitBooking(ctx, s); err != nil {
		e.metrics.ObserveBooking("failure")
		// Date and time are the likeliest to have drifted; keep the rest.
		s.Booking.PreferredDate = ""
		s.Booking.PreferredTime = ""
		s.Stage = StageBookingDate
		return promptBookingFailedRetry + promptBookingDate(0), false
	}
	e.metrics.ObserveBooking("success")
	s.Stage = StageDoneBooked
	return promptBookingConfirmed(s.Booking.PreferredDate, s.Booking.PreferredTime), true
}
