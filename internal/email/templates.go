package email

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupiah = message.NewPrinter(language.Indonesian)

func formatRupiah(amount int64) string {
	return rupiah.Sprintf("Rp%d", amount)
}

func (s *Service) SendTopupApproved(ctx context.Context, to, name string, amount, balance int64) error {
	body := fmt.Sprintf(`Hi %s,

Your DompetBowar top-up of %s has been approved.
Your balance is now %s.

- DompetBowar`, name, formatRupiah(amount), formatRupiah(balance))

	return s.enqueue(ctx, Job{Type: "topup_approved", To: to, Name: name, Subject: "Top-up approved", Body: body})
}

func (s *Service) SendTopupRejected(ctx context.Context, to, name string, amount int64, note string) error {
	body := fmt.Sprintf(`Hi %s,

Your DompetBowar top-up of %s was rejected.
Reason: %s

Your balance has not changed. Reply to this email if you believe this is a mistake.

- DompetBowar`, name, formatRupiah(amount), note)

	return s.enqueue(ctx, Job{Type: "topup_rejected", To: to, Name: name, Subject: "Top-up rejected", Body: body})
}

func (s *Service) SendBookingReceipt(ctx context.Context, to, name string, bookingID int, amount int64, method string, paidAt time.Time) error {
	subject := fmt.Sprintf("Booking #%d paid", bookingID)
	body := fmt.Sprintf(`Hi %s,

We received %s for booking #%d (paid by %s on %s).
You can cancel within the next few minutes for a full refund.

- DompetBowar`, name, formatRupiah(amount), bookingID, method, paidAt.Format("Jan 2, 2006 at 15:04"))

	return s.enqueue(ctx, Job{Type: "booking_receipt", To: to, Name: name, Subject: subject, Body: body})
}
