package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateAddr(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"203.0.113.7", "203***3.7"},
		{"2001:db8::ff00:42:8329", "200***329"},
		{"1.2.3.4", "***"},
		{"", "***"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, truncateAddr(tt.input))
	}
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background())
	id := GetCorrelationID(ctx)
	assert.NotEmpty(t, id)

	// Re-tagging an already tagged context keeps the existing ID.
	again := WithCorrelationID(ctx)
	assert.Equal(t, id, GetCorrelationID(again))
}

func TestGetCorrelationIDMissing(t *testing.T) {
	assert.Empty(t, GetCorrelationID(context.Background()))
}
