package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string) error
		input   string
		wantErr bool
	}{
		{"required ok", ValidateRequired, "x", false},
		{"required blank", ValidateRequired, "  ", true},
		{"url ok", ValidateURL, "https://api.github.com", false},
		{"url enterprise", ValidateURL, "http://ghe.local/api/v3", false},
		{"url no scheme", ValidateURL, "api.github.com", true},
		{"url empty", ValidateURL, "", true},
		{"duration ok", ValidateDuration, "1h30m", false},
		{"duration empty", ValidateDuration, "", false},
		{"duration bare number", ValidateDuration, "30", true},
		{"positive ok", ValidatePositiveInt, "5", false},
		{"positive zero", ValidatePositiveInt, "0", true},
		{"positive text", ValidatePositiveInt, "abc", true},
		{"range ok", ValidateIntRange(-2, 9), "-2", false},
		{"range high", ValidateIntRange(-2, 9), "10", true},
		{"range float", ValidateIntRange(0, 10), "1.5", true},
		{"size ok", ValidateSize, "64MB", false},
		{"size empty", ValidateSize, "", false},
		{"size bad", ValidateSize, "big", true},
		{"level ok", ValidateLogLevel, "DEBUG", false},
		{"level bad", ValidateLogLevel, "loud", true},
		{"format ok", ValidateLogFormat, "json", false},
		{"format bad", ValidateLogFormat, "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateIntRange_WrapsErrInvalidRange(t *testing.T) {
	assert.ErrorIs(t, ValidateIntRange(1, 64)("65"), ErrInvalidRange)
}
