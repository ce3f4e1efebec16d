// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestNewProvider(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := NewProvider(exporter, Config{
		ServiceName:    "agora",
		ServiceVersion: "test",
	})
	_, span := tp.Tracer("test").Start(t.Context(), "op")
	span.End()
	require.NoError(t, tp.ForceFlush(t.Context()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "op", spans[0].Name)
	assert.Contains(t, spans[0].Resource.Attributes(), semconv.ServiceName("agora"))
	require.NoError(t, tp.Shutdown(t.Context()))
}

func TestSetupStdout(t *testing.T) {
	shutdown, err := Setup(t.Context(), Config{ServiceName: "agora", Stdout: true})
	require.NoError(t, err)
	require.NoError(t, shutdown(t.Context()))
}
