package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/settlex-hq/settlex-settler/pkg/logger"
	"github.com/settlex-hq/settlex-settler/pkg/metrics"
	"github.com/settlex-hq/settlex-settler/pkg/models"
)

// SMTPConfig carries the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailNotifier sends per-employee payment confirmations over SMTP. Delivery
// is best-effort: a failed send is counted and logged, never returned as a
// settlement error.
type EmailNotifier struct {
	cfg SMTPConfig
	log logger.Logger

	// send is swappable in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailNotifier(cfg SMTPConfig, log logger.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, log: log, send: smtp.SendMail}
}

// NotifyBatch emails each intent's employee. Intents without an email address
// are skipped. Returns the last send error for logging purposes.
func (n *EmailNotifier) NotifyBatch(ctx context.Context, intents []models.PaymentIntent, outcome *models.SettlementOutcome) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	var lastErr error
	for _, intent := range intents {
		if intent.Email == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := buildMessage(n.cfg.From, intent, outcome)
		if err := n.send(addr, auth, n.cfg.From, []string{intent.Email}, msg); err != nil {
			n.log.ErrorWith(logger.Notify, "Failed to notify %s: %v", intent.Email, err)
			metrics.NotificationErrors.Inc()
			lastErr = err
			continue
		}
		n.log.DebugWith(logger.Notify, "Payment confirmation sent to %s", intent.Email)
	}
	return lastErr
}

func buildMessage(from string, intent models.PaymentIntent, outcome *models.SettlementOutcome) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", intent.Email)
	fmt.Fprintf(&b, "Subject: Payment confirmation: %s %s\r\n", intent.Amount, intent.Currency)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")

	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", intent.Name)
	fmt.Fprintf(&b, "Your salary payment has been settled on-chain.\r\n\r\n")
	fmt.Fprintf(&b, "Amount:          %s %s\r\n", intent.Amount, intent.Currency)
	fmt.Fprintf(&b, "Wallet:          %s\r\n", intent.Recipient)
	fmt.Fprintf(&b, "Transaction:     %s\r\n", outcome.TxHash)
	fmt.Fprintf(&b, "Block:           %d\r\n", outcome.BlockNumber)
	fmt.Fprintf(&b, "Settlement time: %s\r\n", outcome.SettlementTime.Round(time.Millisecond))
	fmt.Fprintf(&b, "Paid at:         %s\r\n", time.Now().UTC().Format(time.RFC3339))
	return []byte(b.String())
}

// Noop discards all notifications. Used when SMTP is not configured.
type Noop struct{}

func (Noop) NotifyBatch(context.Context, []models.PaymentIntent, *models.SettlementOutcome) error {
	return nil
}
