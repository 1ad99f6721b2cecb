package gateway

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/BaSui01/imagegate/provider"
	"github.com/BaSui01/imagegate/types"
)

const tracerName = "github.com/BaSui01/imagegate/gateway"

// Invoker builds a provider client for a resolved model and issues exactly one call.
// It does not interpret failures.
type Invoker struct {
	factory *provider.Factory
	tracer  trace.Tracer
}

func NewInvoker(factory *provider.Factory) *Invoker {
	if factory == nil {
		factory = provider.NewFactory(nil)
	}
	return &Invoker{factory: factory, tracer: otel.Tracer(tracerName)}
}

// Invoke passes the model id through unchanged.
func (i *Invoker) Invoke(ctx context.Context, cfg ModelConfig, apiKey string, req *types.GenerationRequest) (*provider.GenerateResponse, error) {
	ctx, span := i.tracer.Start(ctx, "provider.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("imagegate.model", cfg.ID),
			attribute.String("imagegate.variant", string(cfg.Variant)),
			attribute.String("imagegate.size", req.Size),
		))
	defer span.End()

	p, err := i.factory.Build(cfg.Variant, apiKey, cfg.Params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp, err := p.Generate(ctx, &provider.GenerateRequest{
		Prompt: req.Prompt,
		Model:  cfg.ID,
		Size:   req.Size,
		N:      1,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("imagegate.images", len(resp.Images)))
	return resp, nil
}
