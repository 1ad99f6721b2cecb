package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/BaSui01/imagegate/gateway"
	"github.com/BaSui01/imagegate/types"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes 请求体上限
const DefaultMaxBodyBytes int64 = 1 << 20

// =============================================================================
// 🖼️ 图像生成 Handler
// =============================================================================

// ImageHandler 把 net/http 请求转交给网关核心，并原样写回其响应
type ImageHandler struct {
	service      *gateway.Service
	logger       *zap.Logger
	maxBodyBytes int64
}

// NewImageHandler 创建图像生成处理器
func NewImageHandler(service *gateway.Service, logger *zap.Logger) *ImageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageHandler{
		service:      service,
		logger:       logger.With(zap.String("handler", "image")),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// WithMaxBodyBytes 设置请求体上限
func (h *ImageHandler) WithMaxBodyBytes(n int64) *ImageHandler {
	if n > 0 {
		h.maxBodyBytes = n
	}
	return h
}

// ServeHTTP 处理 /api/generate-image 与 /api/ai
// @Summary 生成图像
// @Description 根据 prompt、model、size 生成一张图像，返回 data URI
// @Tags 图像
// @Accept json
// @Produce json
// @Success 200 {object} types.GenerationResult "生成成功"
// @Failure 400 {object} types.ErrorResponse "请求无效"
// @Failure 405 {object} types.ErrorResponse "方法不允许"
// @Failure 429 {object} types.ErrorResponse "超出配额"
// @Failure 500 {object} types.ErrorResponse "凭据缺失或生成失败"
// @Router /api/generate-image [post]
func (h *ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body []byte
	if r.Method == http.MethodPost && r.Body != nil {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteError(w, types.NewError(types.ErrInvalidBody, "Request body too large").
					WithHTTPStatus(http.StatusRequestEntityTooLarge), h.logger)
				return
			}
			WriteError(w, types.NewError(types.ErrInvalidBody, "Invalid JSON body").WithCause(err), h.logger)
			return
		}
	}

	resp := h.service.Handle(r.Context(), gateway.HostRequest{
		Method:   r.Method,
		Referer:  r.Referer(),
		ClientIP: ClientIP(r),
		Body:     body,
	})
	writeHostResponse(w, resp)
}

func writeHostResponse(w http.ResponseWriter, resp gateway.HostResponse) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.Status)
	if resp.Body != nil {
		_, _ = w.Write(resp.Body)
	}
}

// =============================================================================
// 📋 模型列表 Handler
// =============================================================================

// ModelInfo 模型信息
type ModelInfo struct {
	ID          string   `json:"id"`
	Provider    string   `json:"provider"`
	Sizes       []string `json:"sizes"`
	DefaultSize string   `json:"default_size"`
	Configured  bool     `json:"configured"`
}

// ModelsResponse 模型列表响应
type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ListModels 返回注册表中的模型（声明顺序），以及对应凭据是否已配置
func ListModels(service *gateway.Service) []ModelInfo {
	registry := service.Registry()
	sizes := service.Sizes()
	configs := make([]gateway.ModelConfig, 0, registry.Len())
	for _, id := range registry.Models() {
		cfg, err := registry.Resolve(id)
		if err != nil {
			continue
		}
		configs = append(configs, cfg)
	}
	configured := service.Credentials().Configured(configs)

	out := make([]ModelInfo, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, ModelInfo{
			ID:          cfg.ID,
			Provider:    cfg.ProviderName,
			Sizes:       sizes.SupportedSizes(cfg.ID),
			DefaultSize: sizes.DefaultSize(cfg.ID),
			Configured:  configured[cfg.CredentialKey],
		})
	}
	return out
}

// HandleModels 处理 GET /api/models
// @Summary 模型列表
// @Tags 图像
// @Produce json
// @Success 200 {object} ModelsResponse
// @Router /api/models [get]
func HandleModels(service *gateway.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			WriteError(w, types.NewError(types.ErrMethodNotAllowed, "Method "+r.Method+" not allowed"), nil)
			return
		}
		WriteJSON(w, http.StatusOK, ModelsResponse{Models: ListModels(service)})
	}
}
