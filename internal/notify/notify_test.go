package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitescout/sitescout/internal/config"
	"github.com/sitescout/sitescout/pkg/slack"
)

func TestSlack_PostsText(t *testing.T) {
	t.Parallel()

	var got slack.Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
	}))
	defer server.Close()

	n := New(slack.NewClient(server.URL), config.EmailConfig{})

	require.NoError(t, n.Slack(context.Background(), "acme.com is down"))
	assert.Equal(t, "acme.com is down", got.Text)
}

func TestSlack_SkipsWhenUnconfigured(t *testing.T) {
	t.Parallel()

	n := New(slack.NewClient(""), config.EmailConfig{})
	assert.NoError(t, n.Slack(context.Background(), "dropped"))
}

func TestEmail_SkipsWhenUnconfigured(t *testing.T) {
	t.Parallel()

	n := New(nil, config.EmailConfig{})
	assert.NoError(t, n.Email([]string{"ops@acme.com"}, "subject", "<p>hi</p>"))
}

func TestEmail_RequiresRecipients(t *testing.T) {
	t.Parallel()

	n := New(nil, config.EmailConfig{Host: "smtp.acme.com", From: "bot@acme.com"})

	err := n.Email(nil, "subject", "<p>hi</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipients")
}
