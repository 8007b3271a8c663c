package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Config{Level: "warn", Format: "logfmt"})
	require.NoError(t, err)

	level.Info(logger).Log("msg", "hidden")
	level.Warn(logger).Log("msg", "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "caller=")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Config{Level: "debug", Format: "json"})
	require.NoError(t, err)

	level.Debug(logger).Log("msg", "parsed", "pairs", 3)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "parsed", line["msg"])
	assert.Equal(t, "debug", line["level"])
	assert.EqualValues(t, 3, line["pairs"])
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Config{Level: "loud"})
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, Config{Format: "xml"})
	assert.Error(t, err)
}
