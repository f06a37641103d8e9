package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func TestTimeLogsFailureWithIDs(t *testing.T) {
	buf := captureLogs(t)
	ctx := WithRunID(WithRequestID(context.Background(), "req-1"), "run-1")

	err := errors.New("boom")
	Time(ctx, "matrix.Build")(&err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "matrix.Build", entry["op"])
	assert.Equal(t, "req-1", entry["req_id"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "boom", entry["error"])
}

func TestTimeLogsSuccessAtDebug(t *testing.T) {
	buf := captureLogs(t)

	var err error
	Time(context.Background(), "legs.Build")(&err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.NotContains(t, entry, "run_id")
}
