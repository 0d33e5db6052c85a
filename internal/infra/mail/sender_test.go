package mail

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestSendLeadWelcome(t *testing.T) {
	d := &fakeDialer{}
	s := NewEmailSenderWithDialer(d, "noreply@taskflow.io", "https://app.taskflow.io")

	require.NoError(t, s.SendLeadWelcome("ana@example.com", "Ana"))

	require.Len(t, d.sent, 1)
	m := d.sent[0]
	assert.Equal(t, []string{"noreply@taskflow.io"}, m.GetHeader("From"))
	assert.Equal(t, []string{"ana@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Welcome to TaskFlow, Ana!"}, m.GetHeader("Subject"))
}

func TestSendLevelUp(t *testing.T) {
	d := &fakeDialer{}
	s := NewEmailSenderWithDialer(d, "noreply@taskflow.io", "https://app.taskflow.io")

	require.NoError(t, s.SendLevelUp("ana@example.com", "", 4))

	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"You reached level 4 on TaskFlow"}, d.sent[0].GetHeader("Subject"))
}

func TestSendWrapsDialerError(t *testing.T) {
	boom := errors.New("535 authentication failed")
	s := NewEmailSenderWithDialer(&fakeDialer{err: boom}, "noreply@taskflow.io", "")

	err := s.SendLevelUp("ana@example.com", "Ana", 2)

	assert.ErrorIs(t, err, boom)
}

func TestTemplatesRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, templates.ExecuteTemplate(&buf, "level_up.html", LevelUpData{Name: "<b>Ana</b>", Level: 7, AppURL: "https://app.taskflow.io"}))
	assert.Contains(t, buf.String(), "Level 7 unlocked, &lt;b&gt;Ana&lt;/b&gt;!")
	assert.Contains(t, buf.String(), `href="https://app.taskflow.io"`)

	buf.Reset()
	require.NoError(t, templates.ExecuteTemplate(&buf, "lead_welcome.html", LeadWelcomeData{AppURL: "https://app.taskflow.io"}))
	assert.Contains(t, buf.String(), "Welcome to TaskFlow!")
}
