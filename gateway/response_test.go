package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/imagegate/provider"
	"github.com/BaSui01/imagegate/types"
)

func TestBuildResponse(t *testing.T) {
	got, err := BuildResponse(&provider.GenerateResponse{Images: []provider.ImageData{{B64JSON: "Zm9v"}}})
	require.NoError(t, err)
	assert.Equal(t, &types.GenerationResult{
		ImageURL: "data:image/png;base64,Zm9v",
		Images:   []types.GeneratedImage{{URL: "data:image/png;base64,Zm9v", Base64: "Zm9v"}},
	}, got)
}

func TestBuildResponse_SkipsEmptyImages(t *testing.T) {
	got, err := BuildResponse(&provider.GenerateResponse{Images: []provider.ImageData{
		{URL: "https://cdn/x.png"},
		{B64JSON: "YmFy"},
	}})
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "data:image/png;base64,YmFy", got.ImageURL)
}

func TestBuildResponse_NoImage(t *testing.T) {
	_, err := BuildResponse(nil)
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = BuildResponse(&provider.GenerateResponse{})
	assert.ErrorIs(t, err, ErrNoImage)
}
