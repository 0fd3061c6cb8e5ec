package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureTransport struct {
	sent []Message
	err  error
}

func (c *captureTransport) Send(_ context.Context, msg Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func newComposer() *Composer {
	return NewComposer("MedMind", "https://app.example.com/", 24*time.Hour, time.Hour)
}

func TestComposer_Links(t *testing.T) {
	c := newComposer()
	assert.Equal(t, "https://app.example.com/verify-email?token=abc123", c.VerificationLink("abc123"))
	assert.Equal(t, "https://app.example.com/reset-password?token=abc123", c.RecoveryLink("abc123"))
}

func TestComposer_DefaultBaseURL(t *testing.T) {
	c := NewComposer("MedMind", "  ", 24*time.Hour, time.Hour)
	assert.Equal(t, DefaultBaseURL+"/verify-email?token=t", c.VerificationLink("t"))
}

func TestComposer_VerificationBody(t *testing.T) {
	msg, err := newComposer().Verification("a@b.com", "Ana", "tok")
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", msg.To)
	assert.Contains(t, msg.Subject, "MedMind")
	assert.Contains(t, msg.Text, "https://app.example.com/verify-email?token=tok")
	assert.Contains(t, msg.Text, "24 hours")
	assert.Contains(t, msg.HTML, `href="https://app.example.com/verify-email?token=tok"`)
	assert.Contains(t, msg.HTML, "Ana")
}

func TestComposer_RecoveryBody(t *testing.T) {
	msg, err := newComposer().Recovery("a@b.com", "Ana", "tok")
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "https://app.example.com/reset-password?token=tok")
	assert.Contains(t, msg.Text, "1 hour.")
	assert.Contains(t, msg.HTML, "ignore this email")
}

func TestComposer_EscapesNameInHTML(t *testing.T) {
	msg, err := newComposer().Verification("a@b.com", "<script>x</script>", "tok")
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestHumanizeTTL(t *testing.T) {
	assert.Equal(t, "1 hour", humanizeTTL(time.Hour))
	assert.Equal(t, "24 hours", humanizeTTL(24*time.Hour))
	assert.Equal(t, "90 minutes", humanizeTTL(90*time.Minute))
	assert.Equal(t, "1 minute", humanizeTTL(time.Minute))
}

func TestDispatcher_SendsThroughTransport(t *testing.T) {
	tr := &captureTransport{}
	d := NewDispatcher(newComposer(), tr)

	require.NoError(t, d.SendVerification(context.Background(), "a@b.com", "Ana", "v-tok"))
	require.NoError(t, d.SendRecovery(context.Background(), "a@b.com", "Ana", "r-tok"))

	require.Len(t, tr.sent, 2)
	assert.True(t, strings.Contains(tr.sent[0].Text, "verify-email?token=v-tok"))
	assert.True(t, strings.Contains(tr.sent[1].Text, "reset-password?token=r-tok"))
}

func TestDispatcher_WrapsTransportError(t *testing.T) {
	boom := errors.New("smtp down")
	d := NewDispatcher(newComposer(), &captureTransport{err: boom})

	err := d.SendRecovery(context.Background(), "a@b.com", "Ana", "tok")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "send email")
}
