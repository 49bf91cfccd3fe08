package notify

import (
	"context"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/schloss/pkg/config"
	"github.com/wonny/schloss/pkg/logger"
)

type smtpSession struct {
	commands []string
	data     string
}

// fakeSMTP accepts a single session without STARTTLS
func fakeSMTP(t *testing.T, authReply string) (int, <-chan smtpSession) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	done := make(chan smtpSession, 1)
	go func() {
		var session smtpSession
		defer func() { done <- session }()

		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		conn.SetDeadline(time.Now().Add(5 * time.Second))

		tp := textproto.NewConn(conn)
		tp.PrintfLine("220 fake ESMTP")

		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			session.commands = append(session.commands, line)

			switch {
			case strings.HasPrefix(line, "EHLO"):
				tp.PrintfLine("250-fake")
				tp.PrintfLine("250 AUTH XOAUTH2")
			case strings.HasPrefix(line, "AUTH"):
				tp.PrintfLine("%s", authReply)
			case strings.HasPrefix(line, "MAIL"), strings.HasPrefix(line, "RCPT"):
				tp.PrintfLine("250 OK")
			case line == "DATA":
				tp.PrintfLine("354 go ahead")
				data, err := tp.ReadDotBytes()
				if err != nil {
					return
				}
				session.data = string(data)
				tp.PrintfLine("250 queued")
			case line == "QUIT":
				tp.PrintfLine("221 bye")
				return
			default:
				tp.PrintfLine("502 unknown")
			}
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port, done
}

func testMessage() Message {
	return Message{
		From:    "me@example.com",
		To:      []string{"me@example.com"},
		Subject: DefaultSubject,
		Body:    Body(TestSymbols),
	}
}

func TestSMTPTransportSend(t *testing.T) {
	port, done := fakeSMTP(t, "235 2.7.0 Accepted")

	transport := NewSMTPTransport(config.MailConfig{SMTPHost: "127.0.0.1", SMTPPort: port}, logger.Nop()).
		AllowPlaintext()

	err := transport.Send(context.Background(), testMessage(), "me@example.com", "tok")
	require.NoError(t, err)

	session := <-done
	require.GreaterOrEqual(t, len(session.commands), 6)
	assert.True(t, strings.HasPrefix(session.commands[0], "EHLO "))
	assert.Contains(t, session.commands, "AUTH XOAUTH2 "+XOAuth2String("me@example.com", "tok"))
	assert.Contains(t, session.commands, "MAIL FROM:<me@example.com>")
	assert.Contains(t, session.commands, "RCPT TO:<me@example.com>")
	assert.Equal(t, "QUIT", session.commands[len(session.commands)-1])

	assert.Contains(t, session.data, "Subject: "+DefaultSubject)
	assert.Contains(t, session.data, "Stocks meeting Walter Schloss criteria:\nAAPL\nMSFT\nGOOGL")
}

func TestSMTPTransportAuthRejected(t *testing.T) {
	port, done := fakeSMTP(t, "535 5.7.8 Username and Password not accepted")

	transport := NewSMTPTransport(config.MailConfig{SMTPHost: "127.0.0.1", SMTPPort: port}, logger.Nop()).
		AllowPlaintext()

	err := transport.Send(context.Background(), testMessage(), "me@example.com", "stale")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth xoauth2")

	session := <-done
	for _, cmd := range session.commands {
		assert.False(t, strings.HasPrefix(cmd, "MAIL"), "no MAIL after failed auth")
	}
}

func TestSMTPTransportRequiresStartTLS(t *testing.T) {
	port, done := fakeSMTP(t, "235 2.7.0 Accepted")

	transport := NewSMTPTransport(config.MailConfig{SMTPHost: "127.0.0.1", SMTPPort: port}, logger.Nop())

	err := transport.Send(context.Background(), testMessage(), "me@example.com", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STARTTLS")

	session := <-done
	for _, cmd := range session.commands {
		assert.False(t, strings.HasPrefix(cmd, "AUTH"), "token must not be sent in plaintext")
	}
}

func TestSMTPTransportDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	transport := NewSMTPTransport(config.MailConfig{SMTPHost: "127.0.0.1", SMTPPort: port}, logger.Nop())
	err = transport.Send(context.Background(), testMessage(), "me@example.com", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial")
}
