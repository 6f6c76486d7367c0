package domain

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validRequest() GenerationRequest {
	return GenerationRequest{
		Prompt:       "A red cube on a white background",
		NumImages:    1,
		AspectRatio:  "1:1",
		Resolution:   "2K",
		OutputFormat: "png",
	}
}

func TestGenerationRequestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenerationRequest)
		field  string
	}{
		{"valid", func(*GenerationRequest) {}, ""},
		{"empty prompt", func(r *GenerationRequest) { r.Prompt = "" }, "prompt"},
		{"blank prompt", func(r *GenerationRequest) { r.Prompt = "   " }, "prompt"},
		{"zero images", func(r *GenerationRequest) { r.NumImages = 0 }, "num_images"},
		{"five images", func(r *GenerationRequest) { r.NumImages = 5 }, "num_images"},
		{"four images", func(r *GenerationRequest) { r.NumImages = 4 }, ""},
		{"unknown ratio", func(r *GenerationRequest) { r.AspectRatio = "1:2" }, "aspect_ratio"},
		{"lowercase resolution", func(r *GenerationRequest) { r.Resolution = "2k" }, "resolution"},
		{"8K resolution", func(r *GenerationRequest) { r.Resolution = "8K" }, "resolution"},
		{"jpg format", func(r *GenerationRequest) { r.OutputFormat = "jpg" }, "output_format"},
		{"webp format", func(r *GenerationRequest) { r.OutputFormat = "webp" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := req.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidationErrorNamesAcceptedSet(t *testing.T) {
	req := validRequest()
	req.AspectRatio = "7:3"
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aspect_ratio")
	assert.Contains(t, err.Error(), "21:9, 16:9")
}

func TestWithDefaults(t *testing.T) {
	req := GenerationRequest{Prompt: "x"}.WithDefaults()
	assert.Equal(t, 1, req.NumImages)
	assert.Equal(t, "1:1", req.AspectRatio)
	assert.Equal(t, "2K", req.Resolution)
	assert.Equal(t, "png", req.OutputFormat)
	require.NoError(t, req.Validate())
}

func TestValidateRejectsValuesOutsideSets(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		req := validRequest()
		switch rapid.IntRange(0, 2).Draw(t, "field") {
		case 0:
			req.AspectRatio = rapid.String().Filter(func(s string) bool {
				return !slices.Contains(AspectRatios, s)
			}).Draw(t, "aspect_ratio")
		case 1:
			req.Resolution = rapid.String().Filter(func(s string) bool {
				return !slices.Contains(Resolutions, s)
			}).Draw(t, "resolution")
		default:
			req.OutputFormat = rapid.String().Filter(func(s string) bool {
				return !slices.Contains(OutputFormats, s)
			}).Draw(t, "output_format")
		}
		if !errors.Is(req.Validate(), ErrValidation) {
			t.Fatalf("expected validation error for %+v", req)
		}
	})
}

func TestValidateImageCountBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		req := validRequest()
		req.NumImages = rapid.IntRange(-50, 50).Draw(t, "num_images")
		err := req.Validate()
		inRange := req.NumImages >= MinImages && req.NumImages <= MaxImages
		if inRange && err != nil {
			t.Fatalf("unexpected error for %d: %v", req.NumImages, err)
		}
		if !inRange && !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error for %d", req.NumImages)
		}
	})
}

func TestTransportErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&TransportError{Op: "submit", URL: "https://api.fal.ai", Err: cause})
	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")

	withStatus := &TransportError{Op: "download", StatusCode: 404, Body: "missing"}
	assert.Equal(t, "fal: download: status 404: missing", withStatus.Error())
}

func TestParseAssetKind(t *testing.T) {
	assert.Equal(t, AssetKindProduct, ParseAssetKind("Product"))
	assert.Equal(t, AssetKindSocial, ParseAssetKind(" social "))
	assert.Equal(t, AssetKindBrand, ParseAssetKind("BRAND"))
	assert.Equal(t, AssetKindCustom, ParseAssetKind(""))
	assert.Equal(t, AssetKindCustom, ParseAssetKind("video"))
}
