// Package fixtures 提供请求体与上游响应样例
package fixtures

import (
	"encoding/json"

	"github.com/BaSui01/imagegate/provider"
)

// PNGBase64 是 "PNG" 三个字节的 base64
const PNGBase64 = "UE5H"

// ImageResponse 构造供应商成功结果
func ImageResponse(b64 ...string) *provider.GenerateResponse {
	resp := &provider.GenerateResponse{}
	for _, s := range b64 {
		resp.Images = append(resp.Images, provider.ImageData{B64JSON: s})
	}
	return resp
}

// GenerationBody 构造请求体，size 为空时省略
func GenerationBody(prompt, model, size string) string {
	body := map[string]string{"prompt": prompt, "model": model}
	if size != "" {
		body["size"] = size
	}
	data, _ := json.Marshal(body)
	return string(data)
}

// 上游常见错误体
const (
	OpenAIErrorBody    = `{"error":{"message":"Your request was rejected as a result of our safety system.","type":"invalid_request_error","code":"content_policy_violation"}}`
	ReplicateErrorBody = `{"detail":"Invalid version or not permitted","status":422}`
	FalErrorBody       = `{"detail":[{"loc":["body","prompt"],"msg":"field required","type":"value_error.missing"}]}`
	PlainErrorBody     = `upstream unavailable`
)
