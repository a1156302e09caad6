package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchWidgetsSendsCoordinatesAndHeaders(t *testing.T) {
	var gotPath, gotLat, gotLon, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLat = r.URL.Query().Get("lat")
		gotLon = r.URL.Query().Get("lon")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"widgets":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.FetchWidgets(context.Background(), 12.9, 77.6); err != nil {
		t.Fatalf("FetchWidgets() = %v", err)
	}
	if gotPath != "/v1/widgets" {
		t.Fatalf("path = %q, want /v1/widgets", gotPath)
	}
	if gotLat != "12.9" || gotLon != "77.6" {
		t.Fatalf("coordinates = %q/%q, want 12.9/77.6", gotLat, gotLon)
	}
	if gotRequestID == "" {
		t.Fatal("X-Request-ID header should be set")
	}
}

func TestFetchWidgetsPreservesPayloadOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"widgets":[
			{"type":"note","data":{"body":"first"}},
			{"type":"metric","data":{"label":"x","value":1}},
			{"type":"note","data":{"body":"third"}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	ws, err := c.FetchWidgets(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("FetchWidgets() = %v", err)
	}
	want := []string{"note", "metric", "note"}
	if len(ws) != len(want) {
		t.Fatalf("widget count = %d, want %d", len(ws), len(want))
	}
	for i, tag := range want {
		if ws[i].Type != tag {
			t.Fatalf("widgets[%d].Type = %q, want %q", i, ws[i].Type, tag)
		}
	}
}

func TestFetchWidgetsReportsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.FetchWidgets(context.Background(), 1, 2)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", se.Code)
	}
}

func TestHandlerServesWidgets(t *testing.T) {
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/widgets?lat=12.9&lon=77.6")
	if err != nil {
		t.Fatalf("GET widgets: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var p widgetsPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Widgets) == 0 {
		t.Fatal("expected sample widgets")
	}
}

func TestHandlerRequiresCoordinates(t *testing.T) {
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/widgets")
	if err != nil {
		t.Fatalf("GET widgets: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandlerRoundTripsThroughClient(t *testing.T) {
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	ws, err := c.FetchWidgets(context.Background(), 48.85, 2.35)
	if err != nil {
		t.Fatalf("FetchWidgets() = %v", err)
	}
	if len(ws) != 4 {
		t.Fatalf("widget count = %d, want 4", len(ws))
	}
	if ws[0].Type != "metric" || ws[3].Type != "note" {
		t.Fatalf("tags = %q...%q, want metric...note", ws[0].Type, ws[3].Type)
	}
}
