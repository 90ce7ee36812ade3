package testutil

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/quantmind-br/gitzip-go/internal/utils"
)

// NewTestLogger creates a debug logger that writes through t.Log
func NewTestLogger(t *testing.T) *utils.Logger {
	t.Helper()

	zlogger := zerolog.New(zerolog.ConsoleWriter{Out: zerolog.NewTestWriter(t), NoColor: true}).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Str("test", t.Name()).
		Logger()

	return &utils.Logger{Logger: zlogger}
}
