package domain

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

const (
	MinImages = 1
	MaxImages = 4

	DefaultAspectRatio  = "1:1"
	DefaultResolution   = "2K"
	DefaultOutputFormat = "png"
)

var (
	AspectRatios  = []string{"21:9", "16:9", "3:2", "4:3", "5:4", "1:1", "4:5", "3:4", "2:3", "9:16"}
	Resolutions   = []string{"1K", "2K", "4K"}
	OutputFormats = []string{"png", "jpeg", "webp"}
)

// GenerationRequest is the validated payload submitted to the image model.
type GenerationRequest struct {
	Prompt          string
	NumImages       int
	AspectRatio     string
	Resolution      string
	OutputFormat    string
	EnableWebSearch bool
	SyncMode        bool
}

// WithDefaults returns a copy where zero-valued generation parameters carry
// the service defaults. The prompt is never defaulted.
func (r GenerationRequest) WithDefaults() GenerationRequest {
	if r.NumImages == 0 {
		r.NumImages = 1
	}
	if r.AspectRatio == "" {
		r.AspectRatio = DefaultAspectRatio
	}
	if r.Resolution == "" {
		r.Resolution = DefaultResolution
	}
	if r.OutputFormat == "" {
		r.OutputFormat = DefaultOutputFormat
	}
	return r
}

// Validate checks every bounded or enumerated field and returns a
// *ValidationError for the first offending one.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return &ValidationError{Field: "prompt", Reason: "must be a non-empty string"}
	}
	if r.NumImages < MinImages || r.NumImages > MaxImages {
		return &ValidationError{
			Field:  "num_images",
			Value:  strconv.Itoa(r.NumImages),
			Reason: "must be between " + strconv.Itoa(MinImages) + " and " + strconv.Itoa(MaxImages),
		}
	}
	if !slices.Contains(AspectRatios, r.AspectRatio) {
		return &ValidationError{Field: "aspect_ratio", Value: r.AspectRatio, Allowed: AspectRatios}
	}
	if !slices.Contains(Resolutions, r.Resolution) {
		return &ValidationError{Field: "resolution", Value: r.Resolution, Allowed: Resolutions}
	}
	if !IsOutputFormat(r.OutputFormat) {
		return &ValidationError{Field: "output_format", Value: r.OutputFormat, Allowed: OutputFormats}
	}
	return nil
}

// IsOutputFormat reports whether format is one of the accepted output formats.
func IsOutputFormat(format string) bool {
	return slices.Contains(OutputFormats, format)
}

// Image is a single produced image as described by the provider.
type Image struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// GenerationResult is the decoded provider response. A nil Images slice means
// the response carried no images key at all.
type GenerationResult struct {
	RequestID   string          `json:"request_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Images      []Image         `json:"images"`
	Raw         json.RawMessage `json:"-"`
}

// RequestStatus describes an asynchronous request as reported by the provider.
type RequestStatus struct {
	RequestID string          `json:"request_id"`
	Status    string          `json:"status"`
	Images    []Image         `json:"images,omitempty"`
	Raw       json.RawMessage `json:"-"`
}
