package cliotools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sznchanda/arcade-ai/dispatch"
)

func TestListMattersFilters(t *testing.T) {
	adapter := &recordingAdapter{responses: []recordedResponse{{
		status: 200,
		body:   `{"data":[{"id":300,"status":"Open"}]}`,
	}}}
	call := newCall(t, adapter, dispatch.Args{
		"status":    "open",
		"client_id": json.Number("42"),
		"offset":    json.Number("100"),
	})

	out, err := listMatters(context.Background(), call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := adapter.requests[0]
	if !strings.HasSuffix(req.URL, "/matters") {
		t.Fatalf("unexpected URL %q", req.URL)
	}
	if req.Query["status"] != "Open" || req.Query["client_id"] != "42" {
		t.Fatalf("unexpected query %v", req.Query)
	}
	if req.Query["offset"] != "100" || req.Query["limit"] != "50" {
		t.Fatalf("unexpected window %v", req.Query)
	}
	result := out.(map[string]any)
	if items, ok := result["items"].([]any); !ok || len(items) != 1 {
		t.Fatalf("unexpected items %v", result["items"])
	}
}

func TestListMattersRejectsBadFilters(t *testing.T) {
	cases := []struct {
		name string
		args dispatch.Args
	}{
		{"unknown status", dispatch.Args{"status": "archived"}},
		{"non-positive client id", dispatch.Args{"client_id": json.Number("0")}},
		{"non-integer attorney id", dispatch.Args{"responsible_attorney_id": "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			adapter := &recordingAdapter{}
			call := newCall(t, adapter, tc.args)
			if _, err := listMatters(context.Background(), call); err == nil {
				t.Fatal("expected validation error")
			}
			if len(adapter.requests) != 0 {
				t.Fatal("invalid input must not reach the provider")
			}
		})
	}
}

func TestCreateMatterPayload(t *testing.T) {
	adapter := &recordingAdapter{responses: []recordedResponse{{
		status: 200,
		body:   `{"data":{"id":301,"description":"Estate planning"}}`,
	}}}
	call := newCall(t, adapter, dispatch.Args{
		"description": "Estate planning",
		"client_id":   json.Number("42"),
		"open_date":   "2026-02-01",
		"billable":    true,
	})

	if _, err := createMatter(context.Background(), call); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := adapter.requests[0]
	if req.Method != "POST" || !strings.HasSuffix(req.URL, "/matters") {
		t.Fatalf("unexpected request %s %s", req.Method, req.URL)
	}
	matter := requestBody(t, req)["matter"].(map[string]any)
	if matter["description"] != "Estate planning" {
		t.Fatalf("unexpected description %v", matter["description"])
	}
	if matter["status"] != "Open" {
		t.Fatalf("new matters must open as Open, got %v", matter["status"])
	}
	if matter["client_id"] != float64(42) {
		t.Fatalf("unexpected client_id %v", matter["client_id"])
	}
	if matter["open_date"] != "2026-02-01" || matter["billable"] != true {
		t.Fatalf("unexpected payload %v", matter)
	}
}

func TestCreateMatterRequiresDescription(t *testing.T) {
	adapter := &recordingAdapter{}
	call := newCall(t, adapter, dispatch.Args{"client_id": json.Number("42")})

	if _, err := createMatter(context.Background(), call); err == nil {
		t.Fatal("expected error for missing description")
	}
	if len(adapter.requests) != 0 {
		t.Fatal("invalid input must not reach the provider")
	}
}

func TestUpdateMatterClosedNeedsCloseDate(t *testing.T) {
	adapter := &recordingAdapter{}
	call := newCall(t, adapter, dispatch.Args{
		"matter_id": json.Number("300"),
		"status":    "closed",
	})

	if _, err := updateMatter(context.Background(), call); err == nil {
		t.Fatal("expected error closing without a close date")
	}
	if len(adapter.requests) != 0 {
		t.Fatal("invalid input must not reach the provider")
	}
}

func TestUpdateMatterClosedWithDate(t *testing.T) {
	adapter := &recordingAdapter{responses: []recordedResponse{{
		status: 200,
		body:   `{"data":{"id":300,"status":"Closed"}}`,
	}}}
	call := newCall(t, adapter, dispatch.Args{
		"matter_id":  json.Number("300"),
		"status":     "closed",
		"close_date": "2026-08-31",
	})

	if _, err := updateMatter(context.Background(), call); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := adapter.requests[0]
	if req.Method != "PATCH" || !strings.HasSuffix(req.URL, "/matters/300") {
		t.Fatalf("unexpected request %s %s", req.Method, req.URL)
	}
	matter := requestBody(t, req)["matter"].(map[string]any)
	if matter["status"] != "Closed" || matter["close_date"] != "2026-08-31" {
		t.Fatalf("unexpected payload %v", matter)
	}
}

func TestCloseMatterDefaultsCloseDate(t *testing.T) {
	adapter := &recordingAdapter{responses: []recordedResponse{{
		status: 200,
		body:   `{"data":{"id":300,"status":"Closed"}}`,
	}}}
	call := newCall(t, adapter, dispatch.Args{"matter_id": json.Number("300")})

	before := time.Now().UTC().Format("2006-01-02")
	if _, err := closeMatter(context.Background(), call); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now().UTC().Format("2006-01-02")

	matter := requestBody(t, adapter.requests[0])["matter"].(map[string]any)
	if matter["status"] != "Closed" {
		t.Fatalf("unexpected status %v", matter["status"])
	}
	closeDate, _ := matter["close_date"].(string)
	if closeDate != before && closeDate != after {
		t.Fatalf("close_date %q not defaulted to today", closeDate)
	}
}

func TestCloseMatterRejectsBadDate(t *testing.T) {
	adapter := &recordingAdapter{}
	call := newCall(t, adapter, dispatch.Args{
		"matter_id":  json.Number("300"),
		"close_date": "08/31/2026",
	})

	if _, err := closeMatter(context.Background(), call); err == nil {
		t.Fatal("expected error for non ISO date")
	}
	if len(adapter.requests) != 0 {
		t.Fatal("invalid input must not reach the provider")
	}
}
