package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/itportal/go-portal-client/client"
	"github.com/stretchr/testify/require"
)

func TestUpdateProjectStatusSendsCamelCaseRequestID(t *testing.T) {
	var body map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /projects/update-status", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(t, server.URL)
	f.tabs.Ensure()

	err := f.client.UpdateProjectStatus(context.Background(), client.UpdateProjectStatusInput{
		RequestID: 42,
		Status:    client.StatusApproved,
	})
	require.NoError(t, err)

	// This endpoint takes camelCase, unlike the snake_case responses.
	require.Equal(t, float64(42), body["requestId"])
	require.NotContains(t, body, "request_id")
	require.Equal(t, "approved", body["status"])
}

func TestUpdateReleaseStatusSendsBodilessPut(t *testing.T) {
	var gotPath string
	var gotBody []byte

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /project-release/update-status/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = b
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(t, server.URL)
	f.tabs.Ensure()

	err := f.client.UpdateReleaseStatus(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "/project-release/update-status/7", gotPath)
	require.Empty(t, gotBody)
}

func TestProjectCompleteReportReturnsDocumentPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /project-release/complete-report/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":      true,
			"documentPath": "/uploads/final-report-7.pdf",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(t, server.URL)
	f.tabs.Ensure()

	report, err := f.client.ProjectCompleteReport(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, report.Success)
	require.Equal(t, "/uploads/final-report-7.pdf", report.DocumentPath)
}
