package email

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendLowStockAlert(t *testing.T) {
	svc := NewEmailService(EmailConfig{
		SMTPHost:  "mail.local",
		SMTPPort:  2525,
		FromName:  "Duka",
		FromEmail: "pos@duka.local",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		assert.Nil(t, a)
		return nil
	}

	err := svc.SendLowStockAlert("owner@duka.local", "Mama Mboga", []LowStockItem{
		{Name: "Sugar 1kg", Code: "SUG1", Remaining: 2, AlertAt: 5},
		{Name: "Bread <white>", Remaining: 0, AlertAt: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, "pos@duka.local", gotFrom)
	assert.Equal(t, []string{"owner@duka.local"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: Low stock at Mama Mboga: 2 product(s)\r\n")
	assert.Contains(t, msg, "Sugar 1kg")
	assert.Contains(t, msg, "Bread &lt;white&gt;")
	assert.Contains(t, msg, "<td style=\"padding: 8px;\">SUG1</td>")
	assert.Equal(t, 2, strings.Count(msg, "<td style=\"padding: 8px; text-align: right;\">")/2)
}

func TestSendLowStockAlert_NothingToSend(t *testing.T) {
	svc := NewEmailService(EmailConfig{SMTPHost: "mail.local", SMTPPort: 25})
	svc.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("no mail expected")
		return nil
	}

	assert.NoError(t, svc.SendLowStockAlert("owner@duka.local", "Duka", nil))
	assert.True(t, svc.Enabled())
	assert.False(t, NewEmailService(EmailConfig{}).Enabled())
}
