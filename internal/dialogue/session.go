package dialogue

import "time"

// Stage identifies where the call sits in the slot-filling flow. Transitions
// happen only through Engine.ProcessTurn; handlers never set stages directly.
type Stage string

const (
	StageCategory         Stage = "category"
	StageServiceType      Stage = "service_type"
	StageJobType          Stage = "job_type"
	StagePropertyType     Stage = "property_type"
	StageConfirmProperty  Stage = "confirm_property"
	StagePostcode         Stage = "postcode"
	StagePostcodeFallback Stage = "postcode_fallback"
	StageBedrooms         Stage = "bedrooms"
	StageBathrooms        Stage = "bathrooms"
	StageToilets          Stage = "toilets"
	StageKitchens         Stage = "kitchens"
	StageCommercialRooms  Stage = "commercial_rooms"
	StageHours            Stage = "hours"
	StageFrequency        Stage = "frequency"
	StageExtras           Stage = "extras"
	StageExtraQuantity    Stage = "extra_quantity"
	StageConfirmQuote     Stage = "confirm_quote"
	StageOfferBooking     Stage = "offer_booking"
	StageBookingName      Stage = "booking_name"
	StageBookingPhone     Stage = "booking_phone"
	StageBookingEmail     Stage = "booking_email"
	StageBookingAddress   Stage = "booking_address"
	StageBookingDate      Stage = "booking_date"
	StageBookingTime      Stage = "booking_time"
	StageCallback         Stage = "callback_collection"
	StageDoneBooked       Stage = "done_booked"
	StageDoneDeclined     Stage = "done_declined"
)

// Terminal reports whether the call has reached an end state.
func (s Stage) Terminal() bool {
	return s == StageDoneBooked || s == StageDoneDeclined
}

// TranscriptEntry is one caller utterance or spoken reply, kept for
// diagnostics only; nothing in the flow reads it back.
type TranscriptEntry struct {
	Role string    `json:"role"` // "caller" or "agent"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// CallSession is the per-call state: one instance per call id, owned by the
// engine and mutated once per inbound utterance. JSON-serializable so the
// Redis store can persist it between turns.
type CallSession struct {
	CallID  string       `json:"call_id"`
	Stage   Stage        `json:"stage"`
	Quote   QuoteDraft   `json:"quote_draft"`
	Booking BookingDraft `json:"booking_draft"`

	Transcript []TranscriptEntry `json:"transcript,omitempty"`

	// Attempts counts retries per stage so prompt wording can vary and
	// fallback paths can trigger at the right attempt.
	Attempts map[string]int `json:"attempt_counters,omitempty"`

	// Answered records stages whose legitimate answer may be zero, where
	// the draft value alone cannot show the question was asked.
	Answered map[string]bool `json:"answered_stages,omitempty"`

	// PendingExtras queues extras awaiting a quantity, asked FIFO.
	PendingExtras []string `json:"pending_extra_queue,omitempty"`

	// ExtrasNoticeGiven ensures the price/time impact disclosure is spoken
	// at most once per call.
	ExtrasNoticeGiven bool `json:"extras_impact_acknowledged,omitempty"`

	// PropertyConfirmed is set after a high-risk property phrase has been
	// explicitly confirmed; one confirmation covers the rest of the call.
	PropertyConfirmed bool `json:"property_confirmed,omitempty"`

	// PendingProperty holds a high-risk property value awaiting a yes/no.
	PendingProperty string `json:"pending_property,omitempty"`

	// PostcodeFallbackTaken is set after two failed postcode attempts; the
	// flow then proceeds on the town-and-landmark note instead.
	PostcodeFallbackTaken bool `json:"postcode_fallback_taken,omitempty"`

	// ExtrasAsked is set once the extras question has been put to the
	// caller, so a plain "no" can move the flow on.
	ExtrasAsked bool `json:"extras_asked,omitempty"`

	// Correcting is set when the caller rejects the quote readback; the
	// next utterance may overwrite already-populated fields.
	Correcting bool `json:"correcting,omitempty"`

	// SilentTurns counts consecutive empty utterances.
	SilentTurns int `json:"silent_turns,omitempty"`

	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// NewCallSession creates an empty session at the opening stage.
func NewCallSession(callID string) *CallSession {
	now := time.Now().UTC()
	return &CallSession{
		CallID:         callID,
		Stage:          StageCategory,
		Attempts:       make(map[string]int),
		StartedAt:      now,
		LastActivityAt: now,
	}
}

// Attempt returns the retry count for a stage.
func (s *CallSession) Attempt(stage Stage) int {
	if s.Attempts == nil {
		return 0
	}
	return s.Attempts[string(stage)]
}

// BumpAttempt increments and returns the retry count for a stage.
func (s *CallSession) BumpAttempt(stage Stage) int {
	if s.Attempts == nil {
		s.Attempts = make(map[string]int)
	}
	s.Attempts[string(stage)]++
	return s.Attempts[string(stage)]
}

// ResetAttempts clears the retry count for a stage, used when re-entering a
// stage on a recovery path so the caller gets fresh wording.
func (s *CallSession) ResetAttempts(stage Stage) {
	if s.Attempts != nil {
		delete(s.Attempts, string(stage))
	}
}

// MarkAnswered records that a stage's question has been answered, even when
// the answer was zero.
func (s *CallSession) MarkAnswered(stage Stage) {
	if s.Answered == nil {
		s.Answered = make(map[string]bool)
	}
	s.Answered[string(stage)] = true
}

// HasAnswered reports whether a stage's question has been answered.
func (s *CallSession) HasAnswered(stage Stage) bool {
	return s.Answered[string(stage)]
}

// MissingQuoteField runs the draft's completeness gate with the answered
// room stages taken into account, so an explicit zero count passes.
func (s *CallSession) MissingQuoteField() string {
	return s.Quote.missingQuoteField(s.HasAnswered(StageBedrooms), s.HasAnswered(StageBathrooms))
}

// Say appends an agent line to the transcript.
func (s *CallSession) Say(text string) {
	s.Transcript = append(s.Transcript, TranscriptEntry{Role: "agent", Text: text, At: time.Now().UTC()})
}

// Hear appends a caller utterance to the transcript.
func (s *CallSession) Hear(text string) {
	s.Transcript = append(s.Transcript, TranscriptEntry{Role: "caller", Text: text, At: time.Now().UTC()})
	s.LastActivityAt = time.Now().UTC()
}

// NextPendingExtra returns the head of the extras quantity queue.
func (s *CallSession) NextPendingExtra() (string, bool) {
	if len(s.PendingExtras) == 0 {
		return "", false
	}
	return s.PendingExtras[0], true
}

// PopPendingExtra removes the head of the extras quantity queue.
func (s *CallSession) PopPendingExtra() {
	if len(s.PendingExtras) > 0 {
		s.PendingExtras = s.PendingExtras[1:]
	}
}

// QueueExtra appends an extra awaiting a quantity, skipping duplicates.
func (s *CallSession) QueueExtra(name string) {
	for _, queued := range s.PendingExtras {
		if queued == name {
			return
		}
	}
	s.PendingExtras = append(s.PendingExtras, name)
}
