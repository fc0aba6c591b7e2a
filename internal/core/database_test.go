package core

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogSchemaVersion(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logSchemaVersion(logger, 3, nil)
	assert.Contains(t, buf.String(), `"level":"info"`)
	assert.Contains(t, buf.String(), `"version":3`)

	buf.Reset()
	logSchemaVersion(logger, 0, errors.New("relation goose_db_version does not exist"))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "goose_db_version does not exist")
}
