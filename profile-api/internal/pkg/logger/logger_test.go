package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.WithField("component", "summary_service").Infof("summarized %d wards", 9)

	out := buf.String()
	assert.Contains(t, out, "summarized 9 wards")
	assert.Contains(t, out, `"component":"summary_service"`)
	assert.Contains(t, out, `"level":"info"`)
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithFields(map[string]interface{}{"dataset": "ward_demographics", "locale": "ne"}).Warn("cache miss")

	assert.Contains(t, buf.String(), `"dataset":"ward_demographics"`)
	assert.Contains(t, buf.String(), `"locale":"ne"`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info("hidden")
	log.Debug("hidden too")
	assert.Empty(t, buf.String())

	log.Error("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("loud", &buf)

	log.Debug("no")
	log.Info("yes")

	assert.NotContains(t, buf.String(), `"msg":"no"`)
	assert.Contains(t, buf.String(), `"msg":"yes"`)
}

func TestSetLevelAndDebugEnabled(t *testing.T) {
	log := New("info", "development")
	assert.False(t, IsDebugEnabled(log))

	require.NoError(t, SetLevel(log, "debug"))
	assert.True(t, IsDebugEnabled(log))

	assert.Error(t, SetLevel(log, "nonsense"))
}

func TestForComponent(t *testing.T) {
	var buf bytes.Buffer
	log := ForComponent(NewWithWriter("info", &buf), "report_service")
	log.Info("ready")

	assert.Contains(t, buf.String(), `"component":"report_service"`)
	assert.NotNil(t, ForComponent(nil, "fallback"))
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("discarded") })
}
