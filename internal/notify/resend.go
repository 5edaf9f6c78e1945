package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/nomadic-camps/booking-service/internal/domain/booking"
)

// ResendNotifier sends booking emails through the Resend API.
type ResendNotifier struct {
	client     *resend.Client
	from       string
	adminEmail string
}

// NewResendNotifier creates a ResendNotifier. adminEmail may be empty,
// in which case admin alerts are skipped.
func NewResendNotifier(apiKey, from, adminEmail string) *ResendNotifier {
	return &ResendNotifier{
		client:     resend.NewClient(apiKey),
		from:       from,
		adminEmail: adminEmail,
	}
}

// SendBookingConfirmation emails the customer their booking details.
func (n *ResendNotifier) SendBookingConfirmation(ctx context.Context, b *booking.Booking) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{b.CustomerEmail()},
		Subject: fmt.Sprintf("Booking Confirmation %s - NOMADIC", b.BookingNumber()),
		Html:    confirmationHTML(b),
	}

	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

// SendAdminAlert notifies staff of a new paid booking.
func (n *ResendNotifier) SendAdminAlert(ctx context.Context, b *booking.Booking) error {
	if n.adminEmail == "" {
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.adminEmail},
		Subject: fmt.Sprintf("New paid booking %s - %s on %s", b.BookingNumber(), b.Location(), b.BookingDate().Format("2006-01-02")),
		Html:    adminAlertHTML(b),
	}

	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send admin alert: %w", err)
	}
	return nil
}

func addOnsText(b *booking.Booking) string {
	var names []string
	addOns := b.AddOns()
	if addOns.Charcoal {
		names = append(names, "Charcoal")
	}
	if addOns.Firewood {
		names = append(names, "Firewood")
	}
	if addOns.PortableToilet {
		names = append(names, "Portable Toilet")
	}
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func confirmationHTML(b *booking.Booking) string {
	var sb strings.Builder
	sb.WriteString(`<html><body style="font-family:sans-serif;color:#333">`)
	sb.WriteString(`<h1>NOMADIC</h1><h2>Booking Confirmation</h2>`)
	fmt.Fprintf(&sb, "<p>Dear %s,</p>", b.CustomerName())
	sb.WriteString("<p>Thank you for booking your desert adventure with NOMADIC! Your booking has been confirmed and payment has been processed successfully.</p>")
	sb.WriteString("<h3>Booking Details</h3><table>")
	fmt.Fprintf(&sb, "<tr><td><b>Booking Reference:</b></td><td>%s</td></tr>", b.BookingNumber())
	fmt.Fprintf(&sb, "<tr><td><b>Booking Date:</b></td><td>%s</td></tr>", b.BookingDate().Format("Monday, January 2, 2006"))
	fmt.Fprintf(&sb, "<tr><td><b>Location:</b></td><td>%s</td></tr>", b.Location())
	fmt.Fprintf(&sb, "<tr><td><b>Number of Tents:</b></td><td>%d</td></tr>", b.NumberOfTents())
	fmt.Fprintf(&sb, "<tr><td><b>Add-ons:</b></td><td>%s</td></tr>", addOnsText(b))
	fmt.Fprintf(&sb, "<tr><td><b>Children Included:</b></td><td>%s</td></tr>", yesNo(b.HasChildren()))
	if b.Notes() != "" {
		fmt.Fprintf(&sb, "<tr><td><b>Special Notes:</b></td><td>%s</td></tr>", b.Notes())
	}
	fmt.Fprintf(&sb, "<tr><td><b>Subtotal:</b></td><td>AED %.2f</td></tr>", b.Subtotal())
	fmt.Fprintf(&sb, "<tr><td><b>VAT:</b></td><td>AED %.2f</td></tr>", b.VAT())
	fmt.Fprintf(&sb, "<tr><td><b>Total Paid:</b></td><td>AED %.2f</td></tr>", b.Total())
	sb.WriteString("</table>")
	sb.WriteString("<p>Please arrive at the meeting point 30 minutes before departure. If you have any questions or need to make changes to your booking, contact us immediately.</p>")
	sb.WriteString("</body></html>")
	return sb.String()
}

func adminAlertHTML(b *booking.Booking) string {
	var sb strings.Builder
	sb.WriteString(`<html><body style="font-family:sans-serif;color:#333">`)
	sb.WriteString("<h2>New paid booking</h2><table>")
	fmt.Fprintf(&sb, "<tr><td><b>Reference:</b></td><td>%s</td></tr>", b.BookingNumber())
	fmt.Fprintf(&sb, "<tr><td><b>Customer:</b></td><td>%s (%s, %s)</td></tr>", b.CustomerName(), b.CustomerEmail(), b.CustomerPhone())
	fmt.Fprintf(&sb, "<tr><td><b>Date:</b></td><td>%s</td></tr>", b.BookingDate().Format("2006-01-02"))
	fmt.Fprintf(&sb, "<tr><td><b>Location:</b></td><td>%s</td></tr>", b.Location())
	fmt.Fprintf(&sb, "<tr><td><b>Tents:</b></td><td>%d</td></tr>", b.NumberOfTents())
	fmt.Fprintf(&sb, "<tr><td><b>Total:</b></td><td>AED %.2f</td></tr>", b.Total())
	sb.WriteString("</table></body></html>")
	return sb.String()
}
