// Package notify delivers booking side effects. The log-backed implementations
// record what would be sent and are used until an email and payment provider are configured.
package notify

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/camp-rental/backend/internal/storage/models"
)

// LogNotifier writes booking emails to the log.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a notifier writing to logger, or the standard logger when nil.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

// NotifyBookingCreated records the guest confirmation and host alert.
func (n *LogNotifier) NotifyBookingCreated(ctx context.Context, camp *models.Camp, b *models.Booking) {
	if ctx.Err() != nil {
		return
	}
	n.logger.Printf("Email to guest %s: booking %s at %s on %s is %s", b.GuestID, b.ID, camp.Name, b.CheckInDate, b.Status)
	n.logger.Printf("Email to host %s: new booking %s for %s on %s", camp.HostID, b.ID, camp.Name, b.CheckInDate)
}

// NotifyBookingCancelled records the cancellation notices.
func (n *LogNotifier) NotifyBookingCancelled(ctx context.Context, camp *models.Camp, b *models.Booking) {
	if ctx.Err() != nil {
		return
	}
	n.logger.Printf("Email to guest %s: booking %s at %s on %s was cancelled", b.GuestID, b.ID, camp.Name, b.CheckInDate)
	n.logger.Printf("Email to host %s: booking %s on %s was cancelled, the day is open again", camp.HostID, b.ID, b.CheckInDate)
}

// LogPaymentProvider issues checkout URLs under a base URL without contacting a processor.
type LogPaymentProvider struct {
	baseURL string
	logger  *log.Logger
}

// NewLogPaymentProvider creates a payment provider issuing URLs under baseURL.
func NewLogPaymentProvider(baseURL string, logger *log.Logger) *LogPaymentProvider {
	if logger == nil {
		logger = log.Default()
	}
	return &LogPaymentProvider{baseURL: baseURL, logger: logger}
}

// CreateSession returns the checkout URL for b.
func (p *LogPaymentProvider) CreateSession(ctx context.Context, camp *models.Camp, b *models.Booking) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if b.ID == "" {
		return "", fmt.Errorf("booking has no id")
	}

	u, err := url.JoinPath(p.baseURL, "checkout", url.PathEscape(b.ID))
	if err != nil {
		return "", fmt.Errorf("building checkout url: %w", err)
	}
	p.logger.Printf("Payment session for booking %s at %s: %.2f", b.ID, camp.Name, b.TotalPrice)
	return u, nil
}
