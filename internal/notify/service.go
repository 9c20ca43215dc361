package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidycall/cleaning-voice-agent/internal/dialogue"
	"github.com/tidycall/cleaning-voice-agent/pkg/logging"
)

// Service emails the operations inbox when a booking is confirmed. It
// implements dialogue.BookingNotifier; the coordinator calls it off the hot
// path, so a failure here never reaches the caller.
type Service struct {
	email  EmailSender
	opsTo  string
	logger *logging.Logger
}

// NewService creates a booking notification service. opsTo is the inbox that
// receives the confirmation summary.
func NewService(email EmailSender, opsTo string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, opsTo: opsTo, logger: logger}
}

// BookingConfirmed sends the booking summary to the operations inbox and a
// confirmation to the customer when they left an email address.
func (s *Service) BookingConfirmed(ctx context.Context, quote dialogue.QuoteDraft, booking dialogue.BookingDraft) error {
	if s.email == nil {
		return nil
	}

	summary := bookingSummary(quote, booking)

	if s.opsTo != "" {
		msg := EmailMessage{
			To:      s.opsTo,
			ToName:  "Operations",
			Subject: fmt.Sprintf("New booking: %s on %s", booking.FullName, booking.PreferredDate),
			Body:    summary,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("ops booking notification failed", "error", err)
			return fmt.Errorf("notify: ops booking email: %w", err)
		}
	}

	if booking.Email != "" {
		msg := EmailMessage{
			To:      booking.Email,
			ToName:  booking.FullName,
			Subject: "Your cleaning booking is confirmed",
			Body: fmt.Sprintf(
				"Hi %s,\n\nYour cleaning visit is booked for %s at %s.\n\n%s\nThank you for choosing us.\n",
				booking.FullName, booking.PreferredDate, booking.PreferredTime, summary,
			),
		}
		if err := s.email.Send(ctx, msg); err != nil {
			// Customer copy is best effort; the ops record already went out.
			s.logger.Warn("customer booking confirmation failed", "error", err, "to", booking.Email)
		}
	}

	return nil
}

func bookingSummary(quote dialogue.QuoteDraft, booking dialogue.BookingDraft) string {
	var b strings.Builder
	b.WriteString("Booking details\n")
	fmt.Fprintf(&b, "  Name:     %s\n", booking.FullName)
	fmt.Fprintf(&b, "  Phone:    %s\n", booking.Phone)
	if booking.Email != "" {
		fmt.Fprintf(&b, "  Email:    %s\n", booking.Email)
	}
	fmt.Fprintf(&b, "  Address:  %s\n", booking.Address)
	fmt.Fprintf(&b, "  Date:     %s at %s\n", booking.PreferredDate, booking.PreferredTime)
	b.WriteString("Job details\n")
	fmt.Fprintf(&b, "  Service:  %s (%s)\n", quote.ServiceType(), quote.ServiceCategory)
	if quote.PropertyType() != "" {
		fmt.Fprintf(&b, "  Property: %s\n", quote.PropertyType())
	}
	if quote.Postcode != "" {
		fmt.Fprintf(&b, "  Postcode: %s\n", quote.Postcode)
	}
	if quote.PreferredHours > 0 {
		fmt.Fprintf(&b, "  Hours:    %g\n", quote.PreferredHours)
	}
	if len(quote.Extras) > 0 {
		names := make([]string, 0, len(quote.Extras))
		for _, extra := range quote.Extras {
			names = append(names, fmt.Sprintf("%s x%d", extra.Name, extra.Quantity))
		}
		fmt.Fprintf(&b, "  Extras:   %s\n", strings.Join(names, ", "))
	}
	if quote.Notes != "" {
		fmt.Fprintf(&b, "  Notes:    %s\n", quote.Notes)
	}
	return b.String()
}
