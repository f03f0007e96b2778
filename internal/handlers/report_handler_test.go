package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/nuntium/internal/common"
	"github.com/ternarybob/nuntium/internal/interfaces"
	"github.com/ternarybob/nuntium/internal/models"
)

type stubPipeline struct {
	result   *interfaces.ReportResult
	err      error
	lastOpts interfaces.RequestOptions
	state    interfaces.PipelineState
}

func (s *stubPipeline) GetReport(ctx context.Context, opts interfaces.RequestOptions) (*interfaces.ReportResult, error) {
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubPipeline) State() interfaces.PipelineState {
	if s.state == "" {
		return interfaces.StateIdle
	}
	return s.state
}

type stubStorage struct {
	reports []*models.Report
}

func (s *stubStorage) SaveReport(ctx context.Context, report *models.Report) error { return nil }
func (s *stubStorage) LoadLatestReport(ctx context.Context) (*models.Report, error) {
	return nil, interfaces.ErrNoReports
}
func (s *stubStorage) ListReports(ctx context.Context, limit int) ([]*models.Report, error) {
	if limit < len(s.reports) {
		return s.reports[:limit], nil
	}
	return s.reports, nil
}
func (s *stubStorage) CountReports(ctx context.Context) (int, error) { return len(s.reports), nil }

func liveResult() *interfaces.ReportResult {
	return &interfaces.ReportResult{
		Report: &models.Report{
			ID:         "report_1",
			Date:       "2026.08.31",
			Time:       "08:00 AM",
			IsAIFilled: true,
			Slides: []models.ReportSlide{
				{Type: models.SlideTypeCover, Title: "Daily Market Briefing"},
			},
		},
		Source: interfaces.SourceLive,
	}
}

func TestGetReportHandler(t *testing.T) {
	pipeline := &stubPipeline{result: liveResult()}
	h := NewReportHandler(pipeline, &stubStorage{}, common.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	rec := httptest.NewRecorder()
	h.GetReportHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "live", rec.Header().Get(HeaderReportSource))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "report_1", report.ID)
	require.Len(t, report.Slides, 1)
	assert.Equal(t, models.SlideTypeCover, report.Slides[0].Type)
}

func TestGetReportHandlerOptions(t *testing.T) {
	pipeline := &stubPipeline{result: liveResult()}
	h := NewReportHandler(pipeline, &stubStorage{}, common.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/report?refresh=true", nil)
	req.Header.Set(HeaderProviderKey, "caller-key")
	rec := httptest.NewRecorder()
	h.GetReportHandler(rec, req)

	assert.True(t, pipeline.lastOpts.ForceRefresh)
	assert.Equal(t, "caller-key", pipeline.lastOpts.CallerAPIKey)
}

func TestGetReportHandlerSourceHeader(t *testing.T) {
	for _, source := range []interfaces.ReportSource{
		interfaces.SourceCache, interfaces.SourceHistorical, interfaces.SourceDegraded,
	} {
		result := liveResult()
		result.Source = source
		h := NewReportHandler(&stubPipeline{result: result}, &stubStorage{}, common.NewTestLogger())

		rec := httptest.NewRecorder()
		h.GetReportHandler(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
		assert.Equal(t, string(source), rec.Header().Get(HeaderReportSource))
	}
}

func TestGetReportHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no data", interfaces.ErrNoData, http.StatusNotFound, "no_data"},
		{"exhausted", interfaces.ErrUpstreamExhausted, http.StatusServiceUnavailable, "upstream_exhausted"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{"cancelled upstream, live client", context.Canceled, http.StatusGatewayTimeout, "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewReportHandler(&stubPipeline{err: tt.err}, &stubStorage{}, common.NewTestLogger())
			rec := httptest.NewRecorder()
			h.GetReportHandler(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestGetReportHandlerClientGone(t *testing.T) {
	h := NewReportHandler(&stubPipeline{err: context.Canceled}, &stubStorage{}, common.NewTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/report", nil).WithContext(ctx)

	rec := httptest.NewRecorder()
	h.GetReportHandler(rec, req)

	// The client disconnected; there is nobody to write a body for.
	assert.Empty(t, rec.Body.Bytes())
}

func TestGetReportHandlerMethodNotAllowed(t *testing.T) {
	h := NewReportHandler(&stubPipeline{result: liveResult()}, &stubStorage{}, common.NewTestLogger())
	rec := httptest.NewRecorder()
	h.GetReportHandler(rec, httptest.NewRequest(http.MethodPost, "/api/report", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestListReportsHandler(t *testing.T) {
	storage := &stubStorage{reports: []*models.Report{
		{ID: "report_2"}, {ID: "report_1"},
	}}
	h := NewReportHandler(&stubPipeline{}, storage, common.NewTestLogger())

	rec := httptest.NewRecorder()
	h.ListReportsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/reports?limit=1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count   int              `json:"count"`
		Reports []*models.Report `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "report_2", body.Reports[0].ID)
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"true", "1", "yes"} {
		assert.True(t, isTruthy(v), v)
	}
	for _, v := range []string{"", "false", "0", "no"} {
		assert.False(t, isTruthy(v), v)
	}
}
