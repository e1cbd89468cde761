package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributes(t *testing.T) {
	s := String("term", "Go")
	assert.Equal(t, "term", string(s.Key))
	assert.Equal(t, "Go", s.Value.AsString())

	i := Int("page", 3)
	assert.Equal(t, int64(3), i.Value.AsInt64())
}

func TestGetTracerWithoutProvider(t *testing.T) {
	_, span := GetTracer("langsalary/test").Start(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
}
