package notify

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/logger"
)

type fakeTokens struct {
	token string
	err   error
	calls int
}

func (f *fakeTokens) AccessToken(ctx context.Context) (string, error) {
	f.calls++
	return f.token, f.err
}

type sentMail struct {
	msg   Message
	user  string
	token string
}

type fakeTransport struct {
	sent []sentMail
	err  error
}

func (f *fakeTransport) Send(ctx context.Context, msg Message, user, accessToken string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{msg: msg, user: user, token: accessToken})
	return nil
}

func TestXOAuth2String(t *testing.T) {
	encoded := XOAuth2String("me@example.com", "ya29.token")

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, "user=me@example.com\x01auth=Bearer ya29.token\x01\x01", string(raw))
}

func TestBody(t *testing.T) {
	tests := []struct {
		name    string
		symbols []contracts.TickerSymbol
		want    string
	}{
		{"list", []contracts.TickerSymbol{"AAPL", "MSFT", "GOOGL"}, "Stocks meeting Walter Schloss criteria:\nAAPL\nMSFT\nGOOGL"},
		{"empty", nil, "Stocks meeting Walter Schloss criteria:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Body(tt.symbols))
		})
	}
}

func TestMessageBytes(t *testing.T) {
	msg := Message{
		From:    "me@example.com",
		To:      []string{"me@example.com"},
		Subject: DefaultSubject,
		Body:    "line1\nline2",
		Date:    time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC),
	}

	out := string(msg.Bytes())
	assert.Contains(t, out, "From: me@example.com\r\n")
	assert.Contains(t, out, "To: me@example.com\r\n")
	assert.Contains(t, out, "Subject: Daily Walter Schloss Stock Screener Results\r\n")
	assert.Contains(t, out, "Content-Type: text/plain")
	assert.Contains(t, out, "Date: Sun, 18 Oct 2026 18:00:00 +0000\r\n")
	assert.True(t, strings.HasSuffix(out, "\r\n\r\nline1\r\nline2\r\n"))
}

func TestNotify(t *testing.T) {
	tokens := &fakeTokens{token: "tok"}
	transport := &fakeTransport{}
	n := NewNotifier(tokens, transport, "", logger.Nop())

	err := n.Notify(context.Background(), TestSymbols, "me@example.com")
	require.NoError(t, err)

	require.Len(t, transport.sent, 1)
	sent := transport.sent[0]
	assert.Equal(t, "me@example.com", sent.user)
	assert.Equal(t, "tok", sent.token)
	assert.Equal(t, "me@example.com", sent.msg.From)
	assert.Equal(t, []string{"me@example.com"}, sent.msg.To)
	assert.Equal(t, DefaultSubject, sent.msg.Subject)
	assert.Equal(t, "Stocks meeting Walter Schloss criteria:\nAAPL\nMSFT\nGOOGL", sent.msg.Body)
}

func TestNotifyCustomSubject(t *testing.T) {
	transport := &fakeTransport{}
	n := NewNotifier(&fakeTokens{token: "tok"}, transport, "Screener", logger.Nop())

	require.NoError(t, n.Notify(context.Background(), nil, "me@example.com"))
	assert.Equal(t, "Screener", transport.sent[0].msg.Subject)
}

func TestNotifyFailures(t *testing.T) {
	errSMTP := errors.New("535 5.7.8 bad credentials")

	tests := []struct {
		name      string
		tokens    *fakeTokens
		transport *fakeTransport
		wantIs    error
	}{
		{
			name:      "token unavailable",
			tokens:    &fakeTokens{err: contracts.ErrAuth},
			transport: &fakeTransport{},
			wantIs:    contracts.ErrAuth,
		},
		{
			name:      "transport rejects",
			tokens:    &fakeTokens{token: "tok"},
			transport: &fakeTransport{err: errSMTP},
			wantIs:    errSMTP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNotifier(tt.tokens, tt.transport, "", logger.Nop())
			err := n.Notify(context.Background(), TestSymbols, "me@example.com")
			require.Error(t, err)

			var ne *contracts.NotificationError
			require.ErrorAs(t, err, &ne)
			assert.Equal(t, "me@example.com", ne.Recipient)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.Empty(t, tt.transport.sent)
		})
	}
}
