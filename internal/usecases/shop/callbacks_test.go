package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantAction string
		wantArg    string
	}{
		{
			name:       "действие с аргументом",
			data:       "product:42",
			wantAction: "product",
			wantArg:    "42",
		},
		{
			name:       "действие без аргумента",
			data:       "noop",
			wantAction: "noop",
			wantArg:    "",
		},
		{
			name:       "двоеточия внутри аргумента не режутся",
			data:       "ticket_reply:7:extra",
			wantAction: "ticket_reply",
			wantArg:    "7:extra",
		},
		{
			name:       "пустая строка",
			data:       "",
			wantAction: "",
			wantArg:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, arg := parseCallbackData(tt.data)
			assert.Equal(t, tt.wantAction, action)
			assert.Equal(t, tt.wantArg, arg)
		})
	}
}
