package logging

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	log, err := New(Config{Level: "debug", Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log, err = New(Config{Level: "nonsense", Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trader.log")

	log, err := New(Config{Level: "info", File: path, Quiet: true})
	require.NoError(t, err)
	log.WithField("symbol", "BTCUSDT").Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "symbol=BTCUSDT")
}

func TestNew_QuietWithoutFile(t *testing.T) {
	log, err := New(Config{Level: "info", Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, io.Discard, log.Out)
}
