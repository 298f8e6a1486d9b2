package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/morskmorsk/personal-item-tracker/internal/blob"
	"github.com/morskmorsk/personal-item-tracker/internal/model"
	"github.com/morskmorsk/personal-item-tracker/internal/store"
)

// LocationsHandler handles location CRUD endpoints.
type LocationsHandler struct {
	DB    *sql.DB
	Blobs *blob.Store
}

// List handles GET /api/locations/.
func (h *LocationsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	locations, total, err := store.ListLocations(r.Context(), h.DB, size, (page-1)*size)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list locations")
		return
	}
	if locations == nil {
		locations = []model.Location{}
	}
	jsonResponse(w, http.StatusOK, paginated(r, total, page, size, locations))
}

// Create handles POST /api/locations/.
func (h *LocationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryPayload
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == nil || *req.Name == "" {
		fieldError(w, "name", "name is required")
		return
	}
	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	location, err := store.CreateLocation(r.Context(), h.DB, *req.Name, description)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create location")
		return
	}
	jsonResponse(w, http.StatusCreated, location)
}

// Get handles GET /api/locations/{id}/.
func (h *LocationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	location, err := store.GetLocation(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get location")
		return
	}
	if location == nil {
		jsonError(w, http.StatusNotFound, "location not found")
		return
	}
	jsonResponse(w, http.StatusOK, location)
}

// Update handles PUT and PATCH /api/locations/{id}/.
func (h *LocationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	existing, err := store.GetLocation(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "location not found")
		return
	}

	var req categoryPayload
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name, description := existing.Name, existing.Description
	if r.Method == http.MethodPut {
		if req.Name == nil || *req.Name == "" {
			fieldError(w, "name", "name is required")
			return
		}
		name = *req.Name
		description = ""
		if req.Description != nil {
			description = *req.Description
		}
	} else {
		if req.Name != nil {
			if *req.Name == "" {
				fieldError(w, "name", "name is required")
				return
			}
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
	}

	if err := store.UpdateLocation(r.Context(), h.DB, id, name, description); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update location")
		return
	}

	location, _ := store.GetLocation(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, location)
}

// Delete handles DELETE /api/locations/{id}/. Items at the location
// are cascade-deleted; their image blobs are released afterwards.
func (h *LocationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	existing, err := store.GetLocation(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "location not found")
		return
	}

	imageKeys, err := store.DeleteLocation(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete location")
		return
	}

	for _, key := range imageKeys {
		if err := h.Blobs.Delete(key); err != nil {
			slog.Warn("orphaned image blob after cascade delete", "key", key, "error", err)
		}
	}

	slog.Info("location deleted", "location", existing.Name, "cascaded_images", len(imageKeys))
	w.WriteHeader(http.StatusNoContent)
}
