package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithOutput("debug", "json", &buf)

	logger.WithField("component", "ranking").Debug("ranking recomputed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ranking recomputed", entry["msg"])
	assert.Equal(t, "ranking", entry["component"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithOutput("info", "TEXT", &buf)

	logger.Info("hello")
	assert.Contains(t, buf.String(), `msg=hello`)
}

func TestParseLevel_FallsBackToInfo(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, parseLevel("loud"))
	assert.Equal(t, logrus.WarnLevel, parseLevel(" warn "))
	assert.Equal(t, logrus.InfoLevel, New("", "json").GetLevel())
}
