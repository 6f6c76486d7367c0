package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"assetstudio/internal/domain"
	"assetstudio/internal/storage"
	"assetstudio/internal/studio"
	"assetstudio/pkg/zip"
)

const maxBodyBytes = 1 << 20

type productRequest struct {
	ProductName   string `json:"product_name"`
	Description   string `json:"description"`
	Style         string `json:"style"`
	Lighting      string `json:"lighting"`
	Background    string `json:"background"`
	NumVariations *int   `json:"num_variations"`
	Resolution    string `json:"resolution"`
	AspectRatio   string `json:"aspect_ratio"`
}

type socialRequest struct {
	Platform      string `json:"platform"`
	Topic         string `json:"topic"`
	Description   string `json:"description"`
	Style         string `json:"style"`
	Mood          string `json:"mood"`
	NumVariations *int   `json:"num_variations"`
	Resolution    string `json:"resolution"`
	AspectRatio   string `json:"aspect_ratio"`
}

type brandRequest struct {
	BrandName     string `json:"brand_name"`
	ElementType   string `json:"element_type"`
	Description   string `json:"description"`
	Style         string `json:"style"`
	Colors        string `json:"colors"`
	NumVariations *int   `json:"num_variations"`
	Resolution    string `json:"resolution"`
	AspectRatio   string `json:"aspect_ratio"`
}

type customRequest struct {
	Category        string `json:"category"`
	Name            string `json:"name"`
	Prompt          string `json:"prompt"`
	NumVariations   *int   `json:"num_variations"`
	Resolution      string `json:"resolution"`
	AspectRatio     string `json:"aspect_ratio"`
	OutputFormat    string `json:"output_format"`
	EnableWebSearch bool   `json:"enable_web_search"`
}

func (a *App) ProductPhoto(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ProductName) == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "product_name is required")
		return
	}
	res, err := a.Studio.Run(r.Context(), studio.ProductSpec{Name: req.ProductName, Input: studio.ProductPhotoInput{
		ProductName:   req.ProductName,
		Description:   req.Description,
		Style:         req.Style,
		Lighting:      req.Lighting,
		Background:    req.Background,
		NumVariations: count(req.NumVariations),
		Resolution:    req.Resolution,
		AspectRatio:   req.AspectRatio,
	}})
	a.respond(w, r, res, err)
}

func (a *App) SocialPost(w http.ResponseWriter, r *http.Request) {
	var req socialRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Platform) == "" || strings.TrimSpace(req.Topic) == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "platform and topic are required")
		return
	}
	res, err := a.Studio.Run(r.Context(), studio.SocialSpec{Name: req.Topic, Input: studio.SocialPostInput{
		Platform:      req.Platform,
		Topic:         req.Topic,
		Description:   req.Description,
		Style:         req.Style,
		Mood:          req.Mood,
		NumVariations: count(req.NumVariations),
		Resolution:    req.Resolution,
		AspectRatio:   req.AspectRatio,
	}})
	a.respond(w, r, res, err)
}

func (a *App) BrandElement(w http.ResponseWriter, r *http.Request) {
	var req brandRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.BrandName) == "" || strings.TrimSpace(req.ElementType) == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "brand_name and element_type are required")
		return
	}
	res, err := a.Studio.Run(r.Context(), studio.BrandSpec{Name: req.BrandName, Input: studio.BrandElementInput{
		BrandName:     req.BrandName,
		ElementType:   req.ElementType,
		Description:   req.Description,
		Style:         req.Style,
		Colors:        req.Colors,
		NumVariations: count(req.NumVariations),
		Resolution:    req.Resolution,
		AspectRatio:   req.AspectRatio,
	}})
	a.respond(w, r, res, err)
}

func (a *App) CustomAsset(w http.ResponseWriter, r *http.Request) {
	var req customRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Category) == "" || strings.TrimSpace(req.Name) == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "category and name are required")
		return
	}
	res, err := a.Studio.Run(r.Context(), studio.CustomSpec{Name: req.Name, Input: studio.CustomAssetInput{
		Category:        req.Category,
		Name:            req.Name,
		Prompt:          req.Prompt,
		NumVariations:   count(req.NumVariations),
		Resolution:      req.Resolution,
		AspectRatio:     req.AspectRatio,
		OutputFormat:    req.OutputFormat,
		EnableWebSearch: req.EnableWebSearch,
	}})
	a.respond(w, r, res, err)
}

// Batch accepts a JSON (or YAML) list of asset records, or an object with an
// "assets" list, and answers with one result per record in input order.
func (a *App) Batch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_request", "failed to read body")
		return
	}
	specs, err := studio.DecodeSpecs(body)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	results := a.Studio.Batch(r.Context(), specs)
	a.json(w, http.StatusOK, map[string]any{"results": results})
}

func (a *App) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.Studio.Summary()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, summary)
}

// Export streams the saved images, optionally of one category, as a zip.
func (a *App) Export(w http.ResponseWriter, r *http.Request) {
	store, err := storage.OpenFileStore(a.Studio.OutputDir())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	images, err := store.ListImages(category)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if len(images) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no images to export")
		return
	}
	files := make([]zip.File, 0, len(images))
	for _, img := range images {
		files = append(files, zip.File{Name: img.RelPath, Path: img.Path})
	}
	name := "assets.zip"
	if category != "" {
		name = category + ".zip"
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := zip.WriteArchive(w, files); err != nil {
		// Headers are already sent; the client sees a truncated archive.
		a.logger(r).Error().Err(err).Msg("handlers: export failed")
	}
}

type ledgerItem struct {
	ID         string `json:"id"`
	CallID     string `json:"call_id"`
	Kind       string `json:"kind"`
	Category   string `json:"category"`
	Identifier string `json:"identifier"`
	Path       string `json:"path"`
	SourceURL  string `json:"source_url,omitempty"`
	Index      int    `json:"index"`
	Format     string `json:"format"`
	Bytes      int64  `json:"bytes"`
	Prompt     string `json:"prompt,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// History lists the most recent ledger rows.
func (a *App) History(w http.ResponseWriter, r *http.Request) {
	if a.Ledger == nil {
		a.error(w, http.StatusServiceUnavailable, "ledger_disabled", "DATABASE_URL is not configured")
		return
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			a.error(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	assets, err := a.Ledger.ListRecent(r.Context(), limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]ledgerItem, 0, len(assets))
	for _, asset := range assets {
		items = append(items, toLedgerItem(asset))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func toLedgerItem(a domain.SavedAsset) ledgerItem {
	return ledgerItem{
		ID:         a.ID,
		CallID:     a.CallID,
		Kind:       string(a.Kind),
		Category:   a.Category,
		Identifier: a.Identifier,
		Path:       a.Path,
		SourceURL:  a.SourceURL,
		Index:      a.Index,
		Format:     a.Format,
		Bytes:      a.Bytes,
		Prompt:     a.Prompt,
		CreatedAt:  a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// count defaults an omitted num_variations to one image. An explicit value,
// zero included, is passed on for validation.
func count(n *int) int {
	if n == nil {
		return 1
	}
	return *n
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_request", "invalid payload: "+err.Error())
		return false
	}
	return true
}

func (a *App) respond(w http.ResponseWriter, r *http.Request, res *studio.Result, err error) {
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}
