package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/report-forge/pkg/models/api"
	"github.com/de-tools/report-forge/pkg/services/pipeline"
	"github.com/de-tools/report-forge/pkg/services/source"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Result), args.Error(1)
}

func newTestServer(t *testing.T, runner *mockRunner) *httptest.Server {
	t.Helper()
	router := ConfigureRouter(Config{
		Dependencies: Dependencies{
			Runner: runner,
			Logger: zerolog.New(zerolog.NewTestWriter(t)),
		},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postReports(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/v1/reports", "application/json", strings.NewReader(body))
	require.NoError(t, err, "Failed to send request")
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGenerateReport(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", mock.Anything, mock.MatchedBy(func(req pipeline.Request) bool {
		if req.Title != "Q1 Sales" || req.Sink == nil || req.OutputPath != "" {
			return false
		}
		// the document flows back through the request sink
		_, err := req.Sink.Write([]byte("%PDF-1.4 fake"))
		return err == nil
	})).Return(&pipeline.Result{BytesWritten: 13}, nil)

	body, err := json.Marshal(api.GenerateReportRequest{
		Title: "Q1 Sales",
		Records: []map[string]string{
			{"date": "2024-01-15", "product": "Laptop", "category": "Electronics", "amount": "50000"},
		},
	})
	require.NoError(t, err)

	srv := newTestServer(t, runner)
	resp := postReports(t, srv, string(body))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	doc, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))

	runner.AssertExpectations(t)
}

func TestGenerateReport_EmptyRecords(t *testing.T) {
	runner := new(mockRunner)
	srv := newTestServer(t, runner)

	resp := postReports(t, srv, `{"records": []}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestGenerateReport_MalformedBody(t *testing.T) {
	runner := new(mockRunner)
	srv := newTestServer(t, runner)

	resp := postReports(t, srv, `{"records": [`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestGenerateReport_RunFailures(t *testing.T) {
	body := `{"records": [{"date": "2024-01-15", "amount": "10"}]}`

	t.Run("bad request from pipeline", func(t *testing.T) {
		runner := new(mockRunner)
		runner.On("Run", mock.Anything, mock.Anything).
			Return(nil, pipeline.ErrBadRequest)
		srv := newTestServer(t, runner)

		resp := postReports(t, srv, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty source", func(t *testing.T) {
		runner := new(mockRunner)
		runner.On("Run", mock.Anything, mock.Anything).
			Return(nil, source.ErrNoRecords)
		srv := newTestServer(t, runner)

		resp := postReports(t, srv, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("internal failure", func(t *testing.T) {
		runner := new(mockRunner)
		runner.On("Run", mock.Anything, mock.Anything).
			Return(nil, assert.AnError)
		srv := newTestServer(t, runner)

		resp := postReports(t, srv, body)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}
