package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type captureSender struct {
	msgs []*mail.Msg
	err  error
}

func (s *captureSender) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	s.msgs = append(s.msgs, msgs...)
	return s.err
}

func TestEmail_NotifyContact(t *testing.T) {
	sender := &captureSender{}
	n := NewEmailWithSender(sender, "me@example.com", "owner@example.com", zap.NewNop())

	err := n.NotifyContact(context.Background(), Contact{
		Name:        "Ada",
		Email:       "ada@example.com",
		Message:     "<b>hello</b>",
		SubmittedAt: time.Date(2025, 5, 4, 13, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, sender.msgs, 1)

	msg := sender.msgs[0]
	assert.Equal(t, []string{"New Contact Form Submission: Ada"}, msg.GetGenHeader(mail.HeaderSubject))

	to := msg.GetToString()
	require.Len(t, to, 1)
	assert.Contains(t, to[0], "owner@example.com")

	from := msg.GetFromString()
	require.Len(t, from, 1)
	assert.Contains(t, from[0], "Portfolio Contact")
	assert.Contains(t, from[0], "me@example.com")

	var raw bytes.Buffer
	_, err = msg.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "May 4, 2025, 1:30 PM")
	assert.Contains(t, raw.String(), "&lt;b&gt;hello&lt;/b&gt;")
}

func TestEmail_SendFailure(t *testing.T) {
	sender := &captureSender{err: errors.New("connection refused")}
	n := NewEmailWithSender(sender, "me@example.com", "owner@example.com", zap.NewNop())

	err := n.NotifyContact(context.Background(), Contact{Name: "Ada", Email: "ada@example.com", Message: "hi"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.NotifyContact(context.Background(), Contact{}))
}
