package services

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"libralend/internal/adapters/persistence/models"
)

// NotificationService posts lending notices to a webhook. Disabled when
// no webhook URL is configured; every Notify method is then a no-op.
type NotificationService struct {
	webhookURL string
	enabled    bool
}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	url := os.Getenv("NOTIFY_WEBHOOK_URL")
	return &NotificationService{
		webhookURL: url,
		enabled:    url != "",
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// send posts a plain-text message to the configured webhook
func (s *NotificationService) send(message string) error {
	if !s.enabled {
		return nil
	}

	req, err := http.NewRequest("POST", s.webhookURL, bytes.NewBufferString(message))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return nil
}

// NotifyOverdue sends a notice that a loan has gone overdue
func (s *NotificationService) NotifyOverdue(loan *models.Loan, fine float64) {
	message := fmt.Sprintf(`⚠️ Loan overdue

📋 Loan: %s
📖 Book ID: %d
👤 Member ID: %d
📅 Due: %s
💰 Accrued fine: $%.2f`,
		loan.LoanRef,
		loan.BookID,
		loan.MemberID,
		loan.DueDate.Format("2006-01-02"),
		fine,
	)

	s.send(message)
}

// NotifyDueSoon reminds a member that a loan is due within a day
func (s *NotificationService) NotifyDueSoon(loan *models.Loan) {
	title := ""
	if loan.Book != nil {
		title = loan.Book.Title
	}

	message := fmt.Sprintf(`📅 Loan due soon

📋 Loan: %s
📖 Book: %s
👤 Member ID: %d
📅 Due: %s

Please return or extend before the due date.`,
		loan.LoanRef,
		title,
		loan.MemberID,
		loan.DueDate.Format("2006-01-02"),
	)

	s.send(message)
}

// NotifySweepCompleted reports a finished overdue sweep
func (s *NotificationService) NotifySweepCompleted(count int) {
	if count == 0 {
		return
	}
	s.send(fmt.Sprintf("🔄 Overdue sweep reclassified %d loans", count))
}
