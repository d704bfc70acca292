package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractIntent(t *testing.T) {
	tests := []struct {
		input       string
		destination string
		duration    string
	}{
		{"I want to plan a trip to Kyoto for 5 days", "Kyoto", "5 days"},
		{"Kyoto", "Kyoto", DefaultDuration},
		{"  Lisbon  ", "Lisbon", DefaultDuration},
		{"Help me explore the Amalfi Coast for 2 weeks!", "Amalfi Coast", "2 weeks"},
		{"What should I do in Barcelona, I have 4 days", "Barcelona", "4 days"},
		{"Tell me about Hanoi.", "Hanoi", DefaultDuration},
		{"Iceland road trip", "Iceland road", DefaultDuration},
		{"I would like to travel to New York for a week", "New York", DefaultDuration},
		{"Plan to visit Rome 3 Days", "Rome", "3 days"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ExtractIntent(tt.input)
			assert.Equal(t, tt.destination, got.Destination)
			assert.Equal(t, tt.duration, got.Duration)
		})
	}
}

func TestDurationDays(t *testing.T) {
	assert.Equal(t, 5, DurationDays("5 days"))
	assert.Equal(t, 1, DurationDays("1 day"))
	assert.Equal(t, 14, DurationDays("2 weeks"))
	assert.Equal(t, 30, DurationDays("1 month"))
	assert.Equal(t, 0, DurationDays("a while"))
}
