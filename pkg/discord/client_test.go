package discord

import (
	"strings"
	"testing"
	"unicode/utf8"

	"instacord/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient("token-123")
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestBuildEmbed(t *testing.T) {
	msg := models.RenderableMessage{
		Title:    "From alice",
		Body:     "hello there",
		Color:    models.ColorReceived,
		ImageURL: "https://cdn.example.com/img.jpg",
		Footer:   "Received via Instagram DM",
	}
	msg.AddField("📥 Received at", "Jan 2, 2026 3:04:05 PM", true)

	embed := buildEmbed(msg)

	assert.Equal(t, "From alice", embed.Title)
	assert.Equal(t, "hello there", embed.Description)
	assert.Equal(t, models.ColorReceived, embed.Color)
	require.NotNil(t, embed.Image)
	assert.Equal(t, "https://cdn.example.com/img.jpg", embed.Image.URL)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Received via Instagram DM", embed.Footer.Text)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "📥 Received at", embed.Fields[0].Name)
	assert.True(t, embed.Fields[0].Inline)
}

func TestBuildEmbed_OmitsEmptyParts(t *testing.T) {
	embed := buildEmbed(models.RenderableMessage{Title: "From alice", Body: "hi"})

	assert.Nil(t, embed.Image)
	assert.Nil(t, embed.Footer)
	assert.Empty(t, embed.Fields)
}

func TestTruncateBody(t *testing.T) {
	short := "hello"
	assert.Equal(t, short, truncateBody(short))

	long := strings.Repeat("x", 2500)
	got := truncateBody(long)
	assert.Len(t, got, 2000)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestTruncateBody_MultiByteRunes(t *testing.T) {
	long := strings.Repeat("日本語テスト", 500)
	got := truncateBody(long)

	assert.True(t, utf8.ValidString(got), "truncation must not split a rune")
	assert.Equal(t, 2000, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))

	// A body exactly at the limit passes through untouched.
	exact := strings.Repeat("é", 2000)
	assert.Equal(t, exact, truncateBody(exact))
}
