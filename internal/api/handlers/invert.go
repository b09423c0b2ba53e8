package handlers

import (
	"net/http"
	"strconv"
	"strings"
)

// Invert swaps start and end of a trip and redirects to the form.
func Invert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	for _, key := range []string{"start_lat", "start_lon", "end_lat", "end_lon"} {
		if _, err := strconv.ParseFloat(strings.TrimSpace(q.Get(key)), 64); err != nil {
			writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": key + " must be a number", "field": key})
			return
		}
	}
	for _, key := range []string{"start_city", "end_city"} {
		if strings.TrimSpace(q.Get(key)) == "" {
			writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": key + " is required", "field": key})
			return
		}
	}

	swapped := tripQuery(
		q.Get("end_city"), q.Get("end_lat"), q.Get("end_lon"),
		q.Get("start_city"), q.Get("start_lat"), q.Get("start_lon"),
	)
	http.Redirect(w, r, "/?"+swapped.Encode(), http.StatusSeeOther)
}
