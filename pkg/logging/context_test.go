package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/specfuse/specfuse/pkg/logging"
)

func TestContextFunctions(t *testing.T) {
	t.Run("WithSource adds source to context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithSource(ctx, "internal_csv")

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithProduct adds product type and date", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithProduct(ctx, "phones", "20250601")

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithOperation adds operation to context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithOperation(ctx, "reconcile")

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("FromContext returns default for nil context", func(t *testing.T) {
		logger := logging.FromContext(nil) //nolint:staticcheck
		assert.Equal(t, logging.Default(), logger)
	})

	t.Run("FromContext returns default for bare context", func(t *testing.T) {
		logger := logging.FromContext(context.Background())
		assert.Equal(t, logging.Default(), logger)
	})

	t.Run("WithLogger round-trips through context", func(t *testing.T) {
		var buf bytes.Buffer
		custom := logging.NewJSON(&buf)
		ctx := logging.WithLogger(context.Background(), &custom)

		got := logging.FromContext(ctx)
		got.Error().Str("field_path", "display.size").Msg("coercion failed")
		assert.True(t, strings.Contains(buf.String(), "display.size"))
	})

	t.Run("Ctx is an alias for FromContext", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, logging.FromContext(ctx), logging.Ctx(ctx))
	})
}

func TestContextFieldPropagation(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewJSON(&buf)
	ctx := logging.WithLogger(context.Background(), &base)
	ctx = logging.WithSource(ctx, "amazon")
	ctx = logging.WithProduct(ctx, "tv", "20250602")

	logging.FromContext(ctx).Warn().Msg("dropping unmappable key")

	out := buf.String()
	assert.Contains(t, out, `"source_id":"amazon"`)
	assert.Contains(t, out, `"product_type":"tv"`)
	assert.Contains(t, out, `"date":"20250602"`)
}
