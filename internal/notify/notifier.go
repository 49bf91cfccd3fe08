package notify

import (
	"context"
	"strings"
	"time"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/internal/results"
	"github.com/wonny/schloss/pkg/logger"
)

// DefaultSubject is the fixed mail subject
const DefaultSubject = "Daily Walter Schloss Stock Screener Results"

// TestSymbols is the dummy list sent by --test-email
var TestSymbols = []contracts.TickerSymbol{"AAPL", "MSFT", "GOOGL"}

// Notifier mails the qualifying list to a recipient
type Notifier struct {
	tokens    contracts.TokenProvider
	transport Transport
	subject   string
	now       func() time.Time
	logger    *logger.Logger
}

// NewNotifier creates a notifier. An empty subject uses DefaultSubject.
func NewNotifier(tokens contracts.TokenProvider, transport Transport, subject string, log *logger.Logger) *Notifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Notifier{
		tokens:    tokens,
		transport: transport,
		subject:   subject,
		now:       time.Now,
		logger:    log,
	}
}

// Body renders the snapshot header followed by one symbol per line
func Body(qualifying []contracts.TickerSymbol) string {
	lines := make([]string, 0, len(qualifying)+1)
	lines = append(lines, results.SnapshotHeader)
	lines = append(lines, contracts.SymbolStrings(qualifying)...)
	return strings.Join(lines, "\n")
}

// Notify sends the list, authenticating as recipient. Errors are
// *contracts.NotificationError.
func (n *Notifier) Notify(ctx context.Context, qualifying []contracts.TickerSymbol, recipient string) error {
	log := n.logger.WithFields(map[string]interface{}{
		"recipient":  recipient,
		"qualifying": len(qualifying),
	})

	token, err := n.tokens.AccessToken(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to obtain access token")
		return &contracts.NotificationError{Recipient: recipient, Err: err}
	}

	msg := Message{
		From:    recipient,
		To:      []string{recipient},
		Subject: n.subject,
		Body:    Body(qualifying),
		Date:    n.now(),
	}

	if err := n.transport.Send(ctx, msg, recipient, token); err != nil {
		log.WithError(err).Error("Failed to send email")
		return &contracts.NotificationError{Recipient: recipient, Err: err}
	}

	log.Info("Email sent successfully")
	return nil
}
