/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package tracing

import (
	"context"
	"fmt"
	"os"

	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

var logger = log.New("tracing")

// SpanExporterType specifies the type of span exporter used by tracer provider.
type SpanExporterType = string

const (
	None   SpanExporterType = ""
	Jaeger SpanExporterType = "JAEGER"
	Stdout SpanExporterType = "STDOUT"
)

const (
	JaegerAgentEndpointEnvKey     = "OTEL_EXPORTER_JAEGER_AGENT_HOST"
	JaegerCollectorEndpointEnvKey = "OTEL_EXPORTER_JAEGER_ENDPOINT"

	tracerName = "https://github.com/trustbloc/iowallet"

	protocolVersionKey = attribute.Key("iowallet.protocol_version")
)

// IsExportedSupported reports whether the exporter type can be passed to Initialize.
func IsExportedSupported(exporter SpanExporterType) bool {
	switch exporter {
	case None, Jaeger, Stdout:
		return true
	default:
		return false
	}
}

type options struct {
	protocolVersion string
	syncExport      bool
}

// Opt configures Initialize.
type Opt func(*options)

// WithProtocolVersion records the wallet protocol version on every exported span.
func WithProtocolVersion(version string) Opt {
	return func(o *options) {
		o.protocolVersion = version
	}
}

// WithSyncExport exports each span as it ends instead of batching. Short lived commands use it
// so that no span is lost on exit.
func WithSyncExport() Opt {
	return func(o *options) {
		o.syncExport = true
	}
}

// Provider holds the tracer of the wallet services and the provider redis is instrumented with.
type Provider struct {
	provider trace.TracerProvider
	shutdown func(ctx context.Context) error
}

// Tracer returns the tracer the wallet services start their spans with.
func (p *Provider) Tracer() trace.Tracer {
	return p.provider.Tracer(tracerName)
}

// TracerProvider returns the underlying provider, for instrumented clients.
func (p *Provider) TracerProvider() trace.TracerProvider {
	return p.provider
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	_, ok := p.provider.(*tracesdk.TracerProvider)

	return ok
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown() {
	if err := p.shutdown(context.Background()); err != nil {
		logger.Warn("Error shutting down tracer provider", log.WithError(err))
	}
}

// Initialize creates a tracer provider exporting to exporter. The provider is not registered
// globally; spans are started only through the returned provider. With None the provider is a
// no-op one.
func Initialize(exporter SpanExporterType, serviceName string, opts ...Opt) (*Provider, error) {
	if exporter == None {
		return &Provider{
			provider: trace.NewNoopTracerProvider(),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	o := &options{}
	for _, f := range opts {
		f(o)
	}

	spanExporter, err := newExporter(exporter)
	if err != nil {
		return nil, err
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(serviceName),
		semconv.ProcessPIDKey.Int(os.Getpid()),
	}

	if o.protocolVersion != "" {
		attrs = append(attrs, protocolVersionKey.String(o.protocolVersion))
	}

	processor := tracesdk.WithBatcher(spanExporter)
	if o.syncExport {
		processor = tracesdk.WithSyncer(spanExporter)
	}

	tp := tracesdk.NewTracerProvider(
		processor,
		tracesdk.WithResource(resource.NewWithAttributes(semconv.SchemaURL, attrs...)),
	)

	return &Provider{provider: tp, shutdown: tp.Shutdown}, nil
}

func newExporter(exporter SpanExporterType) (tracesdk.SpanExporter, error) {
	switch exporter {
	case Jaeger:
		var endpoint jaeger.EndpointOption

		switch {
		case os.Getenv(JaegerAgentEndpointEnvKey) != "":
			endpoint = jaeger.WithAgentEndpoint()
		case os.Getenv(JaegerCollectorEndpointEnvKey) != "":
			endpoint = jaeger.WithCollectorEndpoint()
		default:
			return nil, fmt.Errorf("neither agent nor collector endpoint is provided")
		}

		e, err := jaeger.New(endpoint)
		if err != nil {
			return nil, fmt.Errorf("create jaeger exporter: %w", err)
		}

		return e, nil
	case Stdout:
		// stdout carries command output, spans go to stderr.
		e, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}

		return e, nil
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", exporter)
	}
}
