package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_IsCommand(t *testing.T) {
	text := func(s string) *string { return &s }

	tests := []struct {
		name    string
		message *Message
		want    bool
	}{
		{
			name:    "команда по префиксу без entities",
			message: &Message{Text: text("/start")},
			want:    true,
		},
		{
			name:    "обычный текст",
			message: &Message{Text: text("привет")},
			want:    false,
		},
		{
			name: "команда размечена entity",
			message: &Message{
				Text:     text("/orders"),
				Entities: []Entity{{Type: "bot_command", Offset: 0, Length: 7}},
			},
			want: true,
		},
		{
			name: "команда в середине текста не считается",
			message: &Message{
				Text:     text("глянь /orders"),
				Entities: []Entity{{Type: "bot_command", Offset: 6, Length: 7}},
			},
			want: false,
		},
		{
			name:    "пустой текст",
			message: &Message{Text: text("")},
			want:    false,
		},
		{
			name:    "nil message",
			message: nil,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.message.IsCommand())
		})
	}
}

func TestChat_IsPrivate(t *testing.T) {
	assert.True(t, (&Chat{Type: ChatTypePrivate}).IsPrivate())
	assert.False(t, (&Chat{Type: ChatTypeGroup}).IsPrivate())
	assert.False(t, (*Chat)(nil).IsPrivate())
}
