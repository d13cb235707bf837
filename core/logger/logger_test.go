package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/core/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithProduction("storefront"),
			logger.WithOutput(&buf),
		)
		log.Info("cart loaded", logger.Component("cart"), logger.Quantity(3))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "cart loaded", record["msg"])
		assert.Equal(t, "storefront", record["app"])
		assert.Equal(t, "production", record["env"])
		assert.Equal(t, "cart", record["component"])
		assert.EqualValues(t, 3, record["quantity"])
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithLevel(slog.LevelWarn),
			logger.WithOutput(&buf),
		)
		log.Info("dropped")
		log.Warn("kept")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("development logs debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithDevelopment("storefront"), logger.WithOutput(&buf))
		log.Debug("visible")
		assert.True(t, strings.Contains(buf.String(), "visible"))
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, logger.ParseLevel(in), in)
	}
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	t.Run("nil-safe helpers", func(t *testing.T) {
		t.Parallel()
		assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
		assert.True(t, logger.Errors(nil, nil).Equal(slog.Attr{}))
		assert.True(t, logger.BookID("").Equal(slog.Attr{}))
		assert.True(t, logger.VisitorID("").Equal(slog.Attr{}))
		assert.True(t, logger.Role("").Equal(slog.Attr{}))
	})

	t.Run("errors keep order", func(t *testing.T) {
		t.Parallel()
		first, second := errors.New("first"), errors.New("second")
		attr := logger.Errors(first, nil, second)
		require.Equal(t, "errors", attr.Key)
		g := attr.Value.Group()
		require.Len(t, g, 2)
		assert.Equal(t, "0", g[0].Key)
		assert.Equal(t, "2", g[1].Key)
	})

	t.Run("domain helpers", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "book_id", logger.BookID("b1").Key)
		assert.Equal(t, "mode", logger.Mode("local").Key)
		assert.Equal(t, "role", logger.Role("admin").Key)
	})
}
