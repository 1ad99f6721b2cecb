package gateway

import (
	"errors"

	"github.com/BaSui01/imagegate/provider"
	"github.com/BaSui01/imagegate/types"
)

// ErrNoImage is returned when a provider succeeds without any base64 payload.
var ErrNoImage = errors.New("provider returned no image")

// BuildResponse shapes a provider result. Image bytes are not touched.
func BuildResponse(resp *provider.GenerateResponse) (*types.GenerationResult, error) {
	if resp == nil {
		return nil, ErrNoImage
	}
	images := make([]types.GeneratedImage, 0, len(resp.Images))
	for _, img := range resp.Images {
		if img.B64JSON == "" {
			continue
		}
		images = append(images, types.GeneratedImage{
			URL:    types.DataURIPrefix + img.B64JSON,
			Base64: img.B64JSON,
		})
	}
	if len(images) == 0 {
		return nil, ErrNoImage
	}
	return &types.GenerationResult{ImageURL: images[0].URL, Images: images}, nil
}
