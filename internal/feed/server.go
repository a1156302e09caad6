package feed

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/arlo/localdash/internal/widget"
)

// Handler serves a development widget feed so the client can run without a
// production backend. The sample note widget echoes the requested
// coordinates, which makes round-trips visible while testing.
func Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/v1/widgets", handleWidgets).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)
	return r
}

func handleWidgets(w http.ResponseWriter, req *http.Request) {
	lat := req.URL.Query().Get("lat")
	lon := req.URL.Query().Get("lon")
	if lat == "" || lon == "" {
		http.Error(w, "lat and lon are required", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(widgetsPayload{Widgets: sampleWidgets(lat, lon)})
}

func sampleWidgets(lat, lon string) []widget.Descriptor {
	return []widget.Descriptor{
		{Type: "metric", Data: mustRaw(map[string]any{
			"label": "Air quality",
			"value": 41,
			"unit":  "AQI",
			"delta": -3,
		})},
		{Type: "chart", Data: mustRaw(map[string]any{
			"title": "Hourly temperature",
			"points": []map[string]any{
				{"label": "09:00", "value": 14.5},
				{"label": "12:00", "value": 18.0},
				{"label": "15:00", "value": 19.5},
				{"label": "18:00", "value": 16.0},
			},
		})},
		{Type: "table", Data: mustRaw(map[string]any{
			"headers": []string{"Line", "Departure", "Status"},
			"rows": [][]string{
				{"12", "09:04", "on time"},
				{"86", "09:11", "delayed"},
				{"96", "09:15", "on time"},
			},
		})},
		{Type: "note", Data: mustRaw(map[string]any{
			"title": "Feed",
			"body":  "Sample payload generated for " + lat + ", " + lon,
		})},
	}
}

func mustRaw(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
