package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetstudio/internal/domain"
)

func TestCollectorCountsGenerations(t *testing.T) {
	c := NewCollector("test")

	c.ObserveGeneration(domain.AssetKindProduct, "ok", 2*time.Second)
	c.ObserveGeneration(domain.AssetKindProduct, "ok", time.Second)
	c.ObserveGeneration(domain.AssetKindSocial, "error", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.generationsTotal.WithLabelValues("product", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.generationsTotal.WithLabelValues("social", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.generationDuration))
}

func TestCollectorCountsImages(t *testing.T) {
	c := NewCollector("test")

	c.AddSaved(domain.AssetKindBrand, 3)
	c.AddSaved(domain.AssetKindBrand, 1)
	c.AddSkipped(domain.AssetKindBrand, 2)

	assert.Equal(t, 4.0, testutil.ToFloat64(c.imagesSaved.WithLabelValues("brand")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.imagesSkipped.WithLabelValues("brand")))
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("")
	b := NewCollector("")

	a.AddSaved(domain.AssetKindCustom, 1)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.imagesSaved.WithLabelValues("custom")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector("")
	c.RecordHTTPRequest(http.MethodGet, "/v1/healthz", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `assetstudio_http_requests_total{method="GET",route="/v1/healthz",status="200"} 1`))
}
