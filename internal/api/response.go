package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// Pagination bounds for list endpoints.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// fieldError writes a validation rejection naming the offending field.
func fieldError(w http.ResponseWriter, field, message string) {
	jsonResponse(w, http.StatusBadRequest, map[string]any{
		"errors": map[string]string{field: message},
	})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pageEnvelope is the standard list response shape.
type pageEnvelope struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// pageParams reads page/page_size query parameters, clamped to sane
// bounds. Unparseable values fall back to the defaults.
func pageParams(r *http.Request) (page, size int) {
	page = 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	size = defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		size = min(v, maxPageSize)
	}
	return page, size
}

// paginated builds the list envelope. results must be a non-nil slice.
func paginated(r *http.Request, total, page, size int, results any) pageEnvelope {
	env := pageEnvelope{Count: total, Results: results}
	if page*size < total {
		env.Next = pageLink(r, page+1)
	}
	if page > 1 {
		env.Previous = pageLink(r, page-1)
	}
	return env
}

// pageLink rebuilds the request URL with the page parameter replaced.
func pageLink(r *http.Request, page int) *string {
	u := *r.URL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	link := scheme + "://" + r.Host + u.Path
	if u.RawQuery != "" {
		link += "?" + u.RawQuery
	}
	return &link
}
