package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/cablecom/leads-api/internal/entity"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) DialAndSend(msgs ...*gomail.Message) error {
	args := m.Called(msgs)
	return args.Error(0)
}

type blockingSender struct {
	release chan struct{}
}

func (b blockingSender) DialAndSend(...*gomail.Message) error {
	<-b.release
	return nil
}

type panickingSender struct{}

func (panickingSender) DialAndSend(...*gomail.Message) error {
	panic("smtp exploded")
}

func testLead() entity.Lead {
	return entity.Lead{
		ID:          42,
		Name:        "Jane Doe",
		Email:       "jane@x.com",
		Phone:       "5551234567",
		Service:     "fiber-optic",
		ProjectType: "upgrade",
		Budget:      "custom-range",
		Message:     "Need 10 drops\n<script>alert(1)</script>",
	}
}

func render(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestBuildMessage(t *testing.T) {
	n := NewLeadNotifier(nil, "contact@cable-comservices.com", "ops@cable-comservices.com", time.Second, nil)
	n.now = func() time.Time { return time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC) }

	m, err := n.BuildMessage(testLead())
	require.NoError(t, err)

	assert.Equal(t, []string{"New Lead: Jane Doe - fiber-optic"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"ops@cable-comservices.com"}, m.GetHeader("To"))
	assert.Contains(t, m.GetHeader("From")[0], "Cable-Com Services")
	assert.Contains(t, m.GetHeader("From")[0], "<contact@cable-comservices.com>")

	data := n.emailData(testLead())
	assert.Equal(t, "Fiber Optic Installation", data.Service)
	assert.Equal(t, "Upgrade/Expansion", data.ProjectType)
	assert.Equal(t, "custom-range", data.Budget)
	assert.Empty(t, data.Timeline)
	assert.Equal(t, "42", data.LeadID)

	raw := render(t, m)
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
}

func TestTemplates(t *testing.T) {
	n := NewLeadNotifier(nil, "a@x.com", "b@x.com", 0, nil)
	data := n.emailData(testLead())

	var html, text bytes.Buffer
	require.NoError(t, htmlTmpl.Execute(&html, data))
	require.NoError(t, textTmpl.Execute(&text, data))

	assert.NotContains(t, html.String(), "<script>")
	assert.Contains(t, html.String(), "Need 10 drops<br>")
	assert.NotContains(t, html.String(), "Timeline")
	assert.Contains(t, text.String(), "SERVICE REQUESTED\n-----------------\nFiber Optic Installation")
	assert.Contains(t, text.String(), "PROJECT TYPE: Upgrade/Expansion")
	assert.NotContains(t, text.String(), "TIMELINE:")
	assert.Contains(t, text.String(), "Lead ID: 42")

	unsaved := n.emailData(entity.Lead{Name: "x", Message: "y"})
	assert.Equal(t, "Pending", unsaved.LeadID)
}

func TestSendLeadNotification(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := new(MockSender)
		s.On("DialAndSend", mock.Anything).Return(nil).Once()
		n := NewLeadNotifier(s, "a@x.com", "b@x.com", time.Second, nil)

		res := n.SendLeadNotification(context.Background(), testLead())
		assert.True(t, res.Success)
		assert.NoError(t, res.Err)
		s.AssertExpectations(t)
	})

	t.Run("transport error", func(t *testing.T) {
		s := new(MockSender)
		s.On("DialAndSend", mock.Anything).Return(errors.New("535 auth failed"))
		n := NewLeadNotifier(s, "a@x.com", "b@x.com", time.Second, nil)

		res := n.SendLeadNotification(context.Background(), testLead())
		assert.False(t, res.Success)
		var ne *NotificationError
		require.ErrorAs(t, res.Err, &ne)
		assert.Equal(t, int64(42), ne.LeadID)
	})

	t.Run("panic", func(t *testing.T) {
		n := NewLeadNotifier(panickingSender{}, "a@x.com", "b@x.com", time.Second, nil)
		res := n.SendLeadNotification(context.Background(), testLead())
		assert.False(t, res.Success)
		assert.Contains(t, res.Err.Error(), "smtp exploded")
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		n := NewLeadNotifier(blockingSender{release: release}, "a@x.com", "b@x.com", 20*time.Millisecond, nil)

		start := time.Now()
		res := n.SendLeadNotification(context.Background(), testLead())
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("no recipient", func(t *testing.T) {
		s := new(MockSender)
		n := NewLeadNotifier(s, "a@x.com", "", time.Second, nil)
		res := n.SendLeadNotification(context.Background(), testLead())
		assert.False(t, res.Success)
		s.AssertNotCalled(t, "DialAndSend", mock.Anything)
	})
}

func TestAsyncDispatcher(t *testing.T) {
	release := make(chan struct{})
	n := NewLeadNotifier(blockingSender{release: release}, "a@x.com", "b@x.com", time.Minute, nil)
	d := NewAsyncDispatcher(n)

	start := time.Now()
	d.Dispatch(testLead())
	assert.Less(t, time.Since(start), time.Second)

	close(release)
	d.Wait()
}
