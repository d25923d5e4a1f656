package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, sync, err := newLogger(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
		sync()
	}

	_, _, err := newLogger("fatal")
	assert.EqualError(t, err, "unsupported log level: fatal")

	_, _, err = newLogger("loud")
	assert.Error(t, err)
}
