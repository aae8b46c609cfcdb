package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tapeshelf/internal/config"
	"tapeshelf/internal/notifications"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, <-chan capturedRequest) {
	t.Helper()
	requests := make(chan capturedRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests <- capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, requests
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyExportFailed(context.Background(), "segments", errors.New("boom")); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).TestNotification(context.Background()); err != nil {
		t.Fatalf("expected nil config to yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "export completed",
			send: func(s notifications.Service) error {
				return s.NotifyExportCompleted(context.Background(), notifications.ExportSummary{
					Policy: "segments", Pending: 3, Exported: 5, Skipped: 1, Elapsed: 90 * time.Second,
				})
			},
			expectTitle:   "tapeshelf - Export Complete",
			expectMessage: "segments: 5 exported, 1 skipped of 3 pending recordings in 1m30s",
			expectTags:    "tapeshelf,segments,completed",
		},
		{
			name: "export completed with errors",
			send: func(s notifications.Service) error {
				return s.NotifyExportCompleted(context.Background(), notifications.ExportSummary{
					Policy: "final", Exported: 2, Failed: 1, Elapsed: 2 * time.Second,
				})
			},
			expectTitle:   "tapeshelf - Export Complete (with errors)",
			expectMessage: "final: 2 exported, 0 skipped, 1 failed in 2s",
			expectTags:    "tapeshelf,final,errors",
		},
		{
			name: "export failed",
			send: func(s notifications.Service) error {
				return s.NotifyExportFailed(context.Background(), "final", errors.New("catalog parse error"))
			},
			expectTitle:    "tapeshelf - Export Failed",
			expectMessage:  "Export (final) stopped: catalog parse error",
			expectTags:     "tapeshelf,error,alert",
			expectPriority: "high",
		},
		{
			name: "catalog synced",
			send: func(s notifications.Service) error {
				return s.NotifyCatalogSynced(context.Background(), 42, "/srv/new_archives.tsv")
			},
			expectTitle:   "tapeshelf - Catalog Synced",
			expectMessage: "Archive listing rebuilt with 42 entries\nFile: /srv/new_archives.tsv",
			expectTags:    "tapeshelf,catalog,sync",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, requests := newCaptureServer(t, http.StatusOK)
			cfg := config.Default()
			cfg.Notifications.NtfyTopic = srv.URL
			svc := notifications.NewService(&cfg)

			if err := tt.send(svc); err != nil {
				t.Fatalf("send: %v", err)
			}
			got := <-requests
			if got.title != tt.expectTitle {
				t.Errorf("title = %q, want %q", got.title, tt.expectTitle)
			}
			if got.body != tt.expectMessage {
				t.Errorf("message = %q, want %q", got.body, tt.expectMessage)
			}
			if got.tags != tt.expectTags {
				t.Errorf("tags = %q, want %q", got.tags, tt.expectTags)
			}
			if got.priority != tt.expectPriority {
				t.Errorf("priority = %q, want %q", got.priority, tt.expectPriority)
			}
		})
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, requests := newCaptureServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for 403 response")
	}
	if got := <-requests; got.priority != "low" {
		t.Fatalf("expected low priority test message, got %q", got.priority)
	}
}
