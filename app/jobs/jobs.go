// Package jobs defines the queued background work: receipt mail after a
// completed payment and the admin notification when a product is reported.
package jobs

import (
	"fmt"

	"github.com/shashiranjanraj/deviceexpress/config"
	"github.com/shashiranjanraj/deviceexpress/pkg/mail"
	"github.com/shashiranjanraj/deviceexpress/pkg/queue"
)

// ReceiptEmailJob mails the buyer a receipt once the payment cascade has
// completed. Dispatched by the payment service.
type ReceiptEmailJob struct {
	To            string  `json:"to"`
	BookingID     string  `json:"bookingId"`
	TransactionID string  `json:"transactionId"`
	Amount        float64 `json:"amount"`
}

func (j *ReceiptEmailJob) Handle() error {
	body := fmt.Sprintf(
		"<p>Thanks for your purchase.</p>"+
			"<p>Booking: %s<br>Transaction: %s<br>Amount: %.2f</p>",
		j.BookingID, j.TransactionID, j.Amount)

	return mail.To(j.To).
		Subject("Your DeviceExpress payment receipt").
		Body(body).
		Send()
}

// ReportNotifyJob tells the moderation inbox a product was reported.
type ReportNotifyJob struct {
	ProductID     string `json:"productId"`
	ProductName   string `json:"productName"`
	ReporterEmail string `json:"reporterEmail"`
	Reason        string `json:"reason"`
}

func (j *ReportNotifyJob) Handle() error {
	to := config.Get("MODERATION_EMAIL", "moderation@deviceexpress.app")
	body := fmt.Sprintf(
		"<p>Product %q (%s) was reported by %s.</p><p>Reason: %s</p>",
		j.ProductName, j.ProductID, j.ReporterEmail, j.Reason)

	return mail.To(to).
		Subject("Reported item: " + j.ProductName).
		Body(body).
		Send()
}

// RegisterAll makes every job type known to the queue. Call once at boot,
// before workers start.
func RegisterAll() {
	queue.Register("*jobs.ReceiptEmailJob", func() queue.Job { return &ReceiptEmailJob{} })
	queue.Register("*jobs.ReportNotifyJob", func() queue.Job { return &ReportNotifyJob{} })
}
