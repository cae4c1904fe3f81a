package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithOutput(t *testing.T) {
	var buf bytes.Buffer
	log := ForComponent(NewWithOutput("debug", "production", &buf), "upstream_fetcher")

	log.WithField("dataset", "ward_demographics").Debugf("fetched %d rows", 9)

	assert.Contains(t, buf.String(), `"component":"upstream_fetcher"`)
	assert.Contains(t, buf.String(), `"dataset":"ward_demographics"`)
	assert.Contains(t, buf.String(), "fetched 9 rows")
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("error", "production", &buf)

	log.Warn("quiet")
	assert.Empty(t, buf.String())

	log.Errorf("loud %s", "error")
	assert.Contains(t, buf.String(), "loud error")
}

func TestTextFormatOutsideProduction(t *testing.T) {
	var buf bytes.Buffer
	NewWithOutput("info", "development", &buf).Info("hello")

	assert.Contains(t, buf.String(), "level=info")
	assert.NotContains(t, buf.String(), `"msg"`)
}
