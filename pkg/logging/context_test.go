package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/graphmesh/meshalign/pkg/logging"
)

// bufferContext returns a context carrying a logger that writes to the
// returned buffer.
func bufferContext() (context.Context, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf)
	return logging.WithLogger(context.Background(), &logger), buf
}

func TestContextFunctions(t *testing.T) {
	t.Run("WithLogger and FromContext round-trip", func(t *testing.T) {
		ctx, buf := bufferContext()

		logging.FromContext(ctx).Info().Msg("from context")

		assert.Contains(t, buf.String(), "from context")
	})

	t.Run("FromContext without logger returns default", func(t *testing.T) {
		assert.NotNil(t, logging.FromContext(context.Background()))
		assert.NotNil(t, logging.FromContext(nil))
	})

	t.Run("Ctx is an alias for FromContext", func(t *testing.T) {
		ctx, buf := bufferContext()

		logging.Ctx(ctx).Info().Msg("via alias")

		assert.Contains(t, buf.String(), "via alias")
	})

	t.Run("WithRunID tags the logger and stores the ID", func(t *testing.T) {
		ctx, buf := bufferContext()
		ctx = logging.WithRunID(ctx, "run-42")

		logging.Ctx(ctx).Info().Msg("tagged")

		assert.Contains(t, buf.String(), `"run_id":"run-42"`)
		assert.Equal(t, "run-42", logging.RunID(ctx))
	})

	t.Run("RunID without one returns empty", func(t *testing.T) {
		assert.Empty(t, logging.RunID(context.Background()))
	})

	t.Run("WithMatcher adds matcher field", func(t *testing.T) {
		ctx, buf := bufferContext()
		ctx = logging.WithMatcher(ctx, "lexical")

		logging.Ctx(ctx).Info().Msg("loading")

		assert.Contains(t, buf.String(), `"matcher":"lexical"`)
	})

	t.Run("WithStrategy adds strategy field", func(t *testing.T) {
		ctx, buf := bufferContext()
		ctx = logging.WithStrategy(ctx, "majority")

		logging.Ctx(ctx).Info().Msg("voting")

		assert.Contains(t, buf.String(), `"strategy":"majority"`)
	})

	t.Run("WithField handles common types", func(t *testing.T) {
		ctx, buf := bufferContext()
		ctx = logging.WithField(ctx, "mappings", 7)
		ctx = logging.WithField(ctx, "threshold", 0.5)
		ctx = logging.WithField(ctx, "accepted", true)
		ctx = logging.WithField(ctx, "err", assert.AnError)

		logging.Ctx(ctx).Info().Msg("fields")

		output := buf.String()
		assert.Contains(t, output, `"mappings":7`)
		assert.Contains(t, output, `"threshold":0.5`)
		assert.Contains(t, output, `"accepted":true`)
		assert.Contains(t, output, assert.AnError.Error())
	})

	t.Run("chaining context helpers", func(t *testing.T) {
		ctx, buf := bufferContext()
		ctx = logging.WithRunID(ctx, "run-1")
		ctx = logging.WithMatcher(ctx, "structural")
		ctx = logging.WithStrategy(ctx, "threshold")

		logging.Ctx(ctx).Info().Msg("chained")

		output := buf.String()
		assert.Contains(t, output, `"run_id":"run-1"`)
		assert.Contains(t, output, `"matcher":"structural"`)
		assert.Contains(t, output, `"strategy":"threshold"`)
	})
}
