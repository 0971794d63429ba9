package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/dbbm/internal/adapters/telemetry"
	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/dbbm/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestInterfaceSatisfaction(_ *testing.T) {
	var _ ports.Tracer = (*telemetry.OTelTracer)(nil)
	var _ ports.Span = (*telemetry.OTelSpan)(nil)
	var _ sdktrace.SpanProcessor = (*telemetry.Bridge)(nil)
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return rec
}

func TestOTelTracer_Attributes(t *testing.T) {
	rec := withRecorder(t)

	var h domain.StateHash
	h[0] = 0xab

	tracer := telemetry.NewOTelTracer("test")
	_, span := tracer.Start(context.Background(), "sql",
		ports.WithAttribute("dbbm.dry_run", true),
	)
	span.SetAttribute("dbbm.hash", h)
	span.SetAttribute("dbbm.cached", false)
	span.SetAttribute("count", 3)
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "sql", ended[0].Name())
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.Bool("dbbm.dry_run", true),
		attribute.String("dbbm.hash", h.String()),
		attribute.Bool("dbbm.cached", false),
		attribute.Int("count", 3),
	}, ended[0].Attributes())
}

func TestOTelSpan_RecordError(t *testing.T) {
	rec := withRecorder(t)

	_, span := telemetry.NewOTelTracer("test").Start(context.Background(), "copy")
	span.RecordError(errors.New("disk full"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "disk full", ended[0].Status().Description)
}

func TestBridge(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		renderer := mocks.NewMockRenderer(ctrl)

		gomock.InOrder(
			renderer.EXPECT().OnStepStart(gomock.Any(), "restore", gomock.Any()),
			renderer.EXPECT().OnStepComplete(gomock.Any(), gomock.Any(), nil),
		)

		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
		_, span := tp.Tracer("test").Start(context.Background(), "restore")
		span.End()
	})

	t.Run("failure carries status description", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		renderer := mocks.NewMockRenderer(ctrl)

		renderer.EXPECT().OnStepStart(gomock.Any(), gomock.Any(), gomock.Any())
		renderer.EXPECT().OnStepComplete(gomock.Any(), gomock.Any(), gomock.Any()).
			Do(func(_ string, _ time.Time, err error) {
				assert.EqualError(t, err, "boom")
			})

		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
		_, span := tp.Tracer("test").Start(context.Background(), "sql")
		span.SetStatus(codes.Error, "boom")
		span.End()
	})

	t.Run("nil renderer", func(_ *testing.T) {
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(nil)))
		_, span := tp.Tracer("test").Start(context.Background(), "noop")
		span.End()
	})
}

func TestSetup(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	renderer.EXPECT().OnStepStart(gomock.Any(), "copy", gomock.Any())
	renderer.EXPECT().OnStepComplete(gomock.Any(), gomock.Any(), nil)
	renderer.EXPECT().Flush().Return(nil)

	previous := otel.GetTracerProvider()
	shutdown := telemetry.Setup(renderer)

	_, span := telemetry.NewOTelTracer("test").Start(context.Background(), "copy")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Equal(t, previous, otel.GetTracerProvider())
}
