package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundQuarterHours(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    float64
	}{
		{"zero stays zero", 0, 0},
		{"one second hits the floor", 1, 0.25},
		{"just below a quarter hour", 899, 0.25},
		{"exactly a quarter hour", 900, 0.25},
		{"just above a quarter hour", 901, 0.5},
		{"half hour", 1800, 0.5},
		{"full hour", 3600, 1.0},
		{"an hour and a second", 3601, 1.25},
		{"ninety minutes", 5400, 1.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RoundQuarterHours(tc.seconds))
		})
	}
}

func TestRoundHours(t *testing.T) {
	assert.Equal(t, 0.0, RoundHours(0))
	assert.Equal(t, 0.0, RoundHours(-1))
	assert.Equal(t, 0.25, RoundHours(0.01))
	assert.Equal(t, 0.25, RoundHours(0.25))
	assert.Equal(t, 0.5, RoundHours(0.26))
	assert.Equal(t, 1.0, RoundHours(1.0))
	assert.Equal(t, 1.25, RoundHours(1.01))
}
