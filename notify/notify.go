// Package notify delivers finalized purchase inquiries to the configured
// administrators. Delivery is per-admin independent: one failure never
// blocks the rest.
package notify

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/a7motors/dealerbot/core/logger"
	"log/slog"

	"github.com/a7motors/dealerbot/catalog"
)

// Profile identifies the customer who submitted the inquiry.
type Profile struct {
	UserID    int64
	Username  string
	FirstName string
}

// Inquiry is a completed inquiry draft ready for delivery. Car is the
// snapshot taken when the inquiry was started from a catalog view, nil for
// standalone inquiries.
type Inquiry struct {
	Ref         string
	Name        string
	Phone       string
	Preferences string
	Car         *catalog.Car
}

// Sender delivers one text message to one user. The transport layer
// implements it; tests use fakes.
type Sender interface {
	SendToUser(userID int64, text string) error
}

// Dispatcher fans an inquiry out to every configured admin id.
type Dispatcher struct {
	sender Sender
	admins []int64
}

// NewDispatcher builds a Dispatcher over the numeric admin ids. Handle-only
// allow-list entries cannot be messaged directly and are not included.
func NewDispatcher(sender Sender, admins []int64) *Dispatcher {
	return &Dispatcher{sender: sender, admins: admins}
}

// NewRef produces a short human-readable inquiry reference code.
func NewRef() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// Dispatch formats the inquiry and attempts delivery to every admin. It
// reports whether at least one delivery succeeded. When none did, the
// formatted message is logged in full for manual recovery; the caller still
// confirms to the customer either way.
func (d *Dispatcher) Dispatch(profile Profile, inq Inquiry) bool {
	if inq.Ref == "" {
		inq.Ref = NewRef()
	}
	text := Format(profile, inq)

	var errs *multierror.Error
	delivered := 0
	for _, adminID := range d.admins {
		if err := d.sender.SendToUser(adminID, text); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("admin %d: %w", adminID, err))
			logger.Warn(logger.Background(), "notify", "dispatch.send_failed",
				slog.Int64("admin_id", adminID),
				slog.String("inquiry_ref", inq.Ref),
				slog.String("err", err.Error()),
			)
			continue
		}
		delivered++
	}

	if delivered == 0 {
		attrs := []slog.Attr{
			slog.String("status", "error"),
			slog.String("inquiry_ref", inq.Ref),
			slog.Int("count", len(d.admins)),
			slog.String("payload", text),
		}
		if err := errs.ErrorOrNil(); err != nil {
			attrs = append(attrs, slog.String("err", err.Error()))
		}
		logger.Error(logger.Background(), "notify", "dispatch.failed", attrs...)
		return false
	}

	logger.Info(logger.Background(), "notify", "dispatch.delivered",
		slog.String("status", "ok"),
		slog.String("inquiry_ref", inq.Ref),
		slog.Int("delivered", delivered),
		slog.Int("count", len(d.admins)),
	)
	return true
}

// Format renders the human-readable admin notification.
func Format(profile Profile, inq Inquiry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Новая заявка №%s\n\n", inq.Ref)
	fmt.Fprintf(&b, "Имя: %s\n", inq.Name)
	fmt.Fprintf(&b, "Телефон: %s\n", inq.Phone)
	if inq.Preferences != "" {
		fmt.Fprintf(&b, "Пожелания: %s\n", inq.Preferences)
	}
	if inq.Car != nil {
		fmt.Fprintf(&b, "\nАвтомобиль: %s %s, %d г.\n", inq.Car.Brand, inq.Car.Model, inq.Car.Year)
		fmt.Fprintf(&b, "Цена: %d BYN (id %d)\n", inq.Car.Price, inq.Car.ID)
	}
	b.WriteString("\nОтправитель: ")
	if profile.FirstName != "" {
		b.WriteString(profile.FirstName)
	}
	if profile.Username != "" {
		fmt.Fprintf(&b, " @%s", profile.Username)
	}
	fmt.Fprintf(&b, " (id %d)", profile.UserID)
	return b.String()
}
