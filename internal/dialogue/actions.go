package dialogue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidycall/cleaning-voice-agent/pkg/logging"
)

// ErrCurrencyViolation marks a pricing response carrying dollar-denominated
// content. It is a data-integrity failure, not a transport failure: the
// figure is never spoken and never converted.
var ErrCurrencyViolation = errors.New("dialogue: pricing response not in pounds")

// PriceQuote is what the pricing collaborator returns.
type PriceQuote struct {
	Amount   float64 `json:"amount,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// PricingClient submits a completed QuoteDraft for pricing.
type PricingClient interface {
	Price(ctx context.Context, callID string, quote QuoteDraft) (PriceQuote, error)
}

// BookingClient persists a completed booking.
type BookingClient interface {
	Book(ctx context.Context, callID string, quote QuoteDraft, booking BookingDraft) error
}

// BookingNotifier is told about confirmed bookings; failures are logged and
// never reach the caller.
type BookingNotifier interface {
	BookingConfirmed(ctx context.Context, quote QuoteDraft, booking BookingDraft) error
}

const defaultWebhookTimeout = 8 * time.Second

// WebhookPricingClient calls the pricing webhook over HTTP.
type WebhookPricingClient struct {
	url    string
	client *http.Client
}

// NewWebhookPricingClient creates a pricing client with a bounded timeout.
func NewWebhookPricingClient(url string, timeout time.Duration) *WebhookPricingClient {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookPricingClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type pricingRequest struct {
	// CallID doubles as an idempotent upsert key for the collaborator.
	CallID string     `json:"call_id"`
	Quote  QuoteDraft `json:"quote"`
}

// Price submits the quote and decodes the response.
func (c *WebhookPricingClient) Price(ctx context.Context, callID string, quote QuoteDraft) (PriceQuote, error) {
	body, err := json.Marshal(pricingRequest{CallID: callID, Quote: quote})
	if err != nil {
		return PriceQuote{}, fmt.Errorf("dialogue: encode pricing request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return PriceQuote{}, fmt.Errorf("dialogue: build pricing request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return PriceQuote{}, fmt.Errorf("dialogue: pricing webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return PriceQuote{}, fmt.Errorf("dialogue: pricing webhook returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return PriceQuote{}, fmt.Errorf("dialogue: read pricing response: %w", err)
	}
	var price PriceQuote
	if err := json.Unmarshal(data, &price); err != nil {
		return PriceQuote{}, fmt.Errorf("dialogue: decode pricing response: %w", err)
	}
	return price, nil
}

// WebhookBookingClient calls the booking webhook over HTTP.
type WebhookBookingClient struct {
	url    string
	client *http.Client
}

// NewWebhookBookingClient creates a booking client with a bounded timeout.
func NewWebhookBookingClient(url string, timeout time.Duration) *WebhookBookingClient {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookBookingClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type bookingRequest struct {
	CallID  string       `json:"call_id"`
	Quote   QuoteDraft   `json:"quote"`
	Booking BookingDraft `json:"booking"`
}

// Book submits the booking; the collaborator only reports success or
// failure.
func (c *WebhookBookingClient) Book(ctx context.Context, callID string, quote QuoteDraft, booking BookingDraft) error {
	body, err := json.Marshal(bookingRequest{CallID: callID, Quote: quote, Booking: booking})
	if err != nil {
		return fmt.Errorf("dialogue: encode booking request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("dialogue: build booking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("dialogue: booking webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("dialogue: booking webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Coordinator drives the two external actions: pricing submission and
// booking submission. It owns minimum-hours normalization and the currency
// validation of pricing responses; retry policy stays with the engine.
type Coordinator struct {
	pricing  PricingClient
	booking  BookingClient
	notifier BookingNotifier
	logger   *logging.Logger
}

// NewCoordinator wires the external collaborators. notifier may be nil.
func NewCoordinator(pricing PricingClient, booking BookingClient, notifier BookingNotifier, logger *logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Coordinator{pricing: pricing, booking: booking, notifier: notifier, logger: logger}
}

// SubmitQuote normalizes hours, submits the draft, and validates the
// response currency. The returned string is the price sentence to speak on
// success. The draft must already have passed the completeness gate.
func (c *Coordinator) SubmitQuote(ctx context.Context, session *CallSession) (string, error) {
	quote := &session.Quote
	quote.ApplyMinimumHours()

	price, err := c.pricing.Price(ctx, session.CallID, *quote)
	if err != nil {
		c.logger.Error("pricing submission failed", "call_id", session.CallID, "error", err)
		return "", err
	}

	if strings.EqualFold(price.Currency, "usd") ||
		ContainsDollarMarker(price.Message) ||
		ContainsDollarMarker(price.Currency) {
		c.logger.Error("pricing response violated currency lock", "call_id", session.CallID, "currency", price.Currency)
		return "", ErrCurrencyViolation
	}

	quote.Submitted = true

	spoken := strings.TrimSpace(price.Message)
	if spoken == "" && price.Amount > 0 {
		spoken = fmt.Sprintf("Your price comes to %.2f pounds.", price.Amount)
	}
	if spoken == "" {
		spoken = "I've got your price ready."
	}
	return spoken, nil
}

// SubmitBooking fills the booking postcode from the quote when the caller
// never restated it, submits once, and notifies on success.
func (c *Coordinator) SubmitBooking(ctx context.Context, session *CallSession) error {
	if session.Booking.Postcode == "" {
		session.Booking.Postcode = session.Quote.Postcode
	}
	if err := c.booking.Book(ctx, session.CallID, session.Quote, session.Booking); err != nil {
		c.logger.Error("booking submission failed", "call_id", session.CallID, "error", err)
		return err
	}
	if c.notifier != nil {
		// Best effort; the booking already succeeded.
		go func(quote QuoteDraft, booking BookingDraft) {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := c.notifier.BookingConfirmed(notifyCtx, quote, booking); err != nil {
				c.logger.Error("booking confirmation notify failed", "error", err)
			}
		}(session.Quote, session.Booking)
	}
	return nil
}
