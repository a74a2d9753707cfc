package handler

import (
	"testing"

	"renthunt/internal/keyboard"

	"github.com/stretchr/testify/assert"
)

func TestCleanCallbackData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain action",
			input:    CallbackStartSearch,
			expected: CallbackStartSearch,
		},
		{
			name:     "option payload keeps inner space",
			input:    keyboard.Payload(ActionReadAreas, 3),
			expected: "read-areas 3",
		},
		{
			name:     "telebot unique prefix",
			input:    "\f" + CallbackFinish,
			expected: CallbackFinish,
		},
		{
			name:     "surrounding whitespace",
			input:    "  " + CallbackLocalePrefix + "en\n",
			expected: "choose-locale:en",
		},
		{
			name:     "control characters inside",
			input:    "edit\x00-price\x01",
			expected: CallbackEditPrice,
		},
		{
			name:     "only whitespace",
			input:    " \t ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanCallbackData(tt.input))
		})
	}
}

func TestIsEditShortcut(t *testing.T) {
	for _, data := range []string{CallbackEditAreas, CallbackEditBeds, CallbackEditMinPrice, CallbackEditPrice} {
		assert.True(t, isEditShortcut(data), data)
	}
	for _, data := range []string{CallbackFinish, CallbackStartSearch, "edit", ""} {
		assert.False(t, isEditShortcut(data), data)
	}
}
