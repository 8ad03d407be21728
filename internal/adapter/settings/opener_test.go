package settings

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogOpener(t *testing.T) {
	var buf bytes.Buffer
	o := NewLogOpener(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, o.OpenSettings(context.Background()))
	require.NoError(t, o.OpenSettings(context.Background()))

	assert.Equal(t, int64(2), o.Requests())
	assert.Contains(t, buf.String(), "open location settings")
	assert.Contains(t, buf.String(), "requests=2")
}
