package mailer

import (
	"context"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"user-activation/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// startFakeSMTP accepts one session and hands back the DATA payload.
func startFakeSMTP(t *testing.T) (string, int, <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		tp := textproto.NewConn(conn)
		tp.PrintfLine("220 fake ESMTP")

		var data string
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			switch {
			case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
				tp.PrintfLine("250 fake")
			case strings.HasPrefix(line, "MAIL FROM"), strings.HasPrefix(line, "RCPT TO"):
				tp.PrintfLine("250 OK")
			case line == "DATA":
				tp.PrintfLine("354 go ahead")
				lines, err := tp.ReadDotLines()
				if err != nil {
					return
				}
				data = strings.Join(lines, "\n")
				tp.PrintfLine("250 queued")
			case line == "QUIT":
				tp.PrintfLine("221 bye")
				received <- data
				return
			default:
				tp.PrintfLine("502 not implemented")
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port, received
}

func TestSMTPSender_SendActivationCode(t *testing.T) {
	host, port, received := startFakeSMTP(t)

	sender := NewSMTPSender(utils.EmailConfig{
		Host:    host,
		Port:    port,
		From:    "no-reply@example.com",
		Timeout: 5 * time.Second,
	}, time.Minute, zaptest.NewLogger(t))

	err := sender.SendActivationCode(context.Background(), "a@x.com", "4821")
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Contains(t, msg, "To: a@x.com")
		assert.Contains(t, msg, "Subject: Activate your account")
		assert.Contains(t, msg, "Your activation code is 4821.")
		assert.Contains(t, msg, "It expires in 1 minute.")
	case <-time.After(5 * time.Second):
		t.Fatal("fake SMTP server received nothing")
	}
}

func TestSMTPSender_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	sender := NewSMTPSender(utils.EmailConfig{
		Host:    "127.0.0.1",
		Port:    port,
		Timeout: time.Second,
	}, time.Minute, zaptest.NewLogger(t))

	err = sender.SendActivationCode(context.Background(), "a@x.com", "4821")
	assert.Error(t, err)
}

func TestLogSender_LogsCode(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	require.NoError(t, sender.SendActivationCode(context.Background(), "a@x.com", "4821"))

	entries := logs.FilterField(zap.String("activation_code", "4821")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a@x.com", entries[0].ContextMap()["email"])
}

func TestNew_PicksSender(t *testing.T) {
	log := zaptest.NewLogger(t)

	assert.IsType(t, &LogSender{}, New(utils.EmailConfig{}, time.Minute, log))
	assert.IsType(t, &SMTPSender{}, New(utils.EmailConfig{Host: "smtp.example.com"}, time.Minute, log))
}

func TestFormatTTL(t *testing.T) {
	assert.Equal(t, "1 minute", formatTTL(time.Minute))
	assert.Equal(t, "15 minutes", formatTTL(15*time.Minute))
}
