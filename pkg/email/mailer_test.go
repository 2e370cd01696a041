package email_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rundetips/platform/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  email.SendEmailParams
		wantErr bool
	}{
		{
			name: "valid html email",
			params: email.SendEmailParams{
				SendTo:   "user@example.com",
				Subject:  "Tipprunde Login",
				BodyHTML: "<p>hi</p>",
			},
		},
		{
			name: "valid text email",
			params: email.SendEmailParams{
				SendTo:   "user@example.com",
				Subject:  "Tipprunde Login",
				BodyText: "hi",
			},
		},
		{
			name:    "missing recipient",
			params:  email.SendEmailParams{Subject: "s", BodyText: "b"},
			wantErr: true,
		},
		{
			name:    "malformed recipient",
			params:  email.SendEmailParams{SendTo: "not-an-email", Subject: "s", BodyText: "b"},
			wantErr: true,
		},
		{
			name:    "missing subject",
			params:  email.SendEmailParams{SendTo: "user@example.com", BodyText: "b"},
			wantErr: true,
		},
		{
			name:    "missing body",
			params:  email.SendEmailParams{SendTo: "user@example.com", Subject: "s"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := email.NewDevSender(dir)

	err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Tipprunde Login",
		BodyHTML: "<p>code</p>",
		BodyText: "code",
		Tag:      "login-code",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var hasHTML, hasText, hasJSON bool
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".html":
			hasHTML = true
		case ".txt":
			hasText = true
		case ".json":
			hasJSON = true
		}
		assert.True(t, strings.Contains(e.Name(), "login-code"))
	}
	assert.True(t, hasHTML)
	assert.True(t, hasText)
	assert.True(t, hasJSON)
}

func TestNewPostmarkClient_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  email.Config
	}{
		{name: "missing server token", cfg: email.Config{PostmarkAccountToken: "a", SenderEmail: "s@x.com", SupportEmail: "h@x.com"}},
		{name: "missing account token", cfg: email.Config{PostmarkServerToken: "s", SenderEmail: "s@x.com", SupportEmail: "h@x.com"}},
		{name: "invalid sender", cfg: email.Config{PostmarkServerToken: "s", PostmarkAccountToken: "a", SenderEmail: "nope", SupportEmail: "h@x.com"}},
		{name: "invalid support", cfg: email.Config{PostmarkServerToken: "s", PostmarkAccountToken: "a", SenderEmail: "s@x.com", SupportEmail: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := email.NewPostmarkClient(tt.cfg)
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
		})
	}
}
