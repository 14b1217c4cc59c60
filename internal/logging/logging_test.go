package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestGetLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)

	logger := GetLogger("discovery")
	logger.Info().Msg("scan started")

	assert.Contains(t, buf.String(), `"component":"discovery"`)
	assert.Contains(t, buf.String(), "scan started")
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prevLevel) })
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	done := LogOperationStart(logger, "scan")
	done()

	out := buf.String()
	assert.Contains(t, out, "Operation started")
	assert.Contains(t, out, "Operation completed")
	assert.Contains(t, out, `"duration"`)
}

func TestLogFilePath(t *testing.T) {
	assert.Contains(t, LogFilePath(), AppName+".log")
}
