package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/imagegate/internal/ctxkeys"
	"github.com/BaSui01/imagegate/provider"
	"github.com/BaSui01/imagegate/types"
)

// Stage names a step of the request pipeline. The pipeline is strictly linear.
type Stage string

const (
	StageReceived          Stage = "received"
	StageValidated         Stage = "validated"
	StageModelResolved     Stage = "model_resolved"
	StageCredentialChecked Stage = "credential_checked"
	StageInvoked           Stage = "invoked"
	StageSucceeded         Stage = "succeeded"
	StageFailed            Stage = "failed"
	StageResponded         Stage = "responded"
)

// Limiter is the optional per-client quota hook, checked after validation and credential resolution.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MetricsRecorder receives generation outcomes.
type MetricsRecorder interface {
	RecordGeneration(provider, model, status string, duration time.Duration)
	RecordError(code string)
}

// Input is what a host hands to the pipeline.
type Input struct {
	Body     []byte
	ClientIP string
}

// HostRequest is the host-neutral view of an inbound request.
type HostRequest struct {
	Method   string
	Referer  string
	ClientIP string
	Body     []byte
}

// HostResponse is written back by the host adapter as-is. Body is nil for preflight.
type HostResponse struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// Service 是网关核心：校验 → 解析模型 → 尺寸策略 → 凭据检查 → 调用提供者 → 构建响应.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	registry    *Registry
	sizes       *SizePolicy
	credentials *CredentialResolver
	invoker     *Invoker
	cors        *CorsPolicy
	strictSizes bool
	limiter     Limiter
	metrics     MetricsRecorder
	logger      *zap.Logger
	tracer      trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

func WithRegistry(r *Registry) Option { return func(s *Service) { s.registry = r } }

func WithSizePolicy(p *SizePolicy) Option { return func(s *Service) { s.sizes = p } }

// WithFactory replaces the provider factory, e.g. to inject a fake variant.
func WithFactory(f *provider.Factory) Option { return func(s *Service) { s.invoker = NewInvoker(f) } }

func WithCorsPolicy(p *CorsPolicy) Option { return func(s *Service) { s.cors = p } }

// WithStrictSizes selects the size policy: true rejects unsupported sizes, false falls back to the model default.
func WithStrictSizes(strict bool) Option { return func(s *Service) { s.strictSizes = strict } }

func WithLimiter(l Limiter) Option { return func(s *Service) { s.limiter = l } }

func WithMetrics(m MetricsRecorder) Option { return func(s *Service) { s.metrics = m } }

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates the pipeline. Credentials are read only through source.
func NewService(source CredentialSource, opts ...Option) *Service {
	s := &Service{
		registry:    DefaultRegistry(),
		sizes:       DefaultSizePolicy(),
		credentials: NewCredentialResolver(source),
		cors:        NewCorsPolicy(nil),
		strictSizes: true,
		logger:      zap.NewNop(),
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.invoker == nil {
		s.invoker = NewInvoker(nil)
	}
	s.logger = s.logger.With(zap.String("component", "gateway"))
	return s
}

// Registry exposes the model table.
func (s *Service) Registry() *Registry { return s.registry }

// Sizes exposes the size policy.
func (s *Service) Sizes() *SizePolicy { return s.sizes }

// Credentials exposes the resolver, for readiness reporting.
func (s *Service) Credentials() *CredentialResolver { return s.credentials }

// Generate runs the pipeline. A non-nil error is always a *types.Error.
func (s *Service) Generate(ctx context.Context, in Input) (*types.GenerationResult, error) {
	ctx, span := s.tracer.Start(ctx, "gateway.generate")
	defer span.End()

	log := s.logger
	if id, ok := ctxkeys.RequestID(ctx); ok {
		log = log.With(zap.String("request_id", id))
	}

	result, stage, cfg, err := s.run(ctx, log, in)
	if err != nil {
		sig := ToSignal(err)
		span.SetStatus(codes.Error, sig.Message)
		span.SetAttributes(attribute.String("imagegate.error_code", string(sig.Code)))
		if s.metrics != nil {
			s.metrics.RecordError(string(sig.Code))
		}
		fields := []zap.Field{
			zap.String("stage", string(stage)),
			zap.String("code", string(sig.Code)),
			zap.String("message", sig.Message),
		}
		if cfg.ID != "" {
			fields = append(fields, zap.String("model", cfg.ID))
		}
		if sig.Code.Category() == types.CategoryClientInput {
			log.Info("request rejected", fields...)
		} else {
			log.Error("request failed", append(fields, zap.Error(err))...)
		}
		return nil, sig
	}
	return result, nil
}

func (s *Service) run(ctx context.Context, log *zap.Logger, in Input) (*types.GenerationResult, Stage, ModelConfig, error) {
	req, err := ParseRequest(in.Body)
	if err != nil {
		return nil, StageReceived, ModelConfig{}, err
	}

	log.Info("request params",
		zap.String("model", req.Model),
		zap.String("size", req.Size),
		zap.Int("prompt_length", len([]rune(req.Prompt))),
	)

	cfg, err := s.registry.Resolve(req.Model)
	if err != nil {
		return nil, StageValidated, ModelConfig{}, err
	}

	size, substituted, err := s.sizes.Resolve(cfg.ID, req.Size, s.strictSizes)
	if err != nil {
		return nil, StageModelResolved, cfg, err
	}
	if substituted {
		log.Warn("unsupported size replaced by model default",
			zap.String("model", cfg.ID),
			zap.String("requested", req.Size),
			zap.String("size", size),
		)
	}
	req.Size = size

	apiKey, err := s.credentials.Resolve(cfg)
	if err != nil {
		return nil, StageModelResolved, cfg, err
	}

	// 只有通过校验、即将调用上游的请求才计入配额
	if s.limiter != nil && in.ClientIP != "" {
		allowed, err := s.limiter.Allow(ctx, in.ClientIP)
		switch {
		case err != nil:
			log.Warn("quota check failed, allowing request", zap.String("client_ip", in.ClientIP), zap.Error(err))
		case !allowed:
			return nil, StageModelResolved, cfg, types.NewError(types.ErrRateLimited, "Too many requests")
		}
	}

	start := time.Now()
	log.Info("generation started",
		zap.String("model", cfg.ID),
		zap.String("variant", string(cfg.Variant)),
		zap.String("size", size),
		zap.Time("start_time", start),
	)

	resp, err := s.invoker.Invoke(ctx, cfg, apiKey, req)
	end := time.Now()
	duration := end.Sub(start)
	log.Info("generation finished",
		zap.String("model", cfg.ID),
		zap.Time("end_time", end),
		zap.Int64("duration_ms", duration.Milliseconds()),
		zap.Bool("ok", err == nil),
	)

	if err != nil {
		s.record(cfg, "error", duration)
		return nil, StageInvoked, cfg, err
	}
	result, err := BuildResponse(resp)
	if err != nil {
		s.record(cfg, "error", duration)
		return nil, StageInvoked, cfg, err
	}
	s.record(cfg, "success", duration)
	return result, StageSucceeded, cfg, nil
}

func (s *Service) record(cfg ModelConfig, status string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordGeneration(string(cfg.Variant), cfg.ID, status, d)
	}
}

// Handle runs a full request for a host: CORS headers, preflight, method check, pipeline, JSON body.
func (s *Service) Handle(ctx context.Context, req HostRequest) HostResponse {
	headers := s.cors.Headers(req.Referer)

	switch req.Method {
	case http.MethodOptions:
		return HostResponse{Status: http.StatusOK, Headers: headers}
	case http.MethodPost:
	default:
		sig := types.NewError(types.ErrMethodNotAllowed, fmt.Sprintf("Method %s not allowed", req.Method))
		headers["Allow"] = "POST, OPTIONS"
		return errorResponse(sig, headers)
	}

	result, err := s.Generate(ctx, Input{Body: req.Body, ClientIP: req.ClientIP})
	if err != nil {
		return errorResponse(ToSignal(err), headers)
	}
	body, mErr := json.Marshal(result)
	if mErr != nil {
		return errorResponse(types.NewError(types.ErrInternalError, "failed to encode response"), headers)
	}
	return HostResponse{Status: http.StatusOK, Headers: headers, Body: body}
}

func errorResponse(sig *types.Error, headers map[string]string) HostResponse {
	body, _ := json.Marshal(types.ErrorResponse{Error: string(sig.Code), Message: sig.Message, Params: sig.Params})
	return HostResponse{Status: sig.Status(), Headers: headers, Body: body}
}
