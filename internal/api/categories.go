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

// CategoriesHandler handles category CRUD endpoints.
type CategoriesHandler struct {
	DB    *sql.DB
	Blobs *blob.Store
}

type categoryPayload struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// List handles GET /api/categories/.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	categories, total, err := store.ListCategories(r.Context(), h.DB, size, (page-1)*size)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	jsonResponse(w, http.StatusOK, paginated(r, total, page, size, categories))
}

// Create handles POST /api/categories/.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	category, err := store.CreateCategory(r.Context(), h.DB, *req.Name, description)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	jsonResponse(w, http.StatusCreated, category)
}

// Get handles GET /api/categories/{id}/.
func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	category, err := store.GetCategory(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get category")
		return
	}
	if category == nil {
		jsonError(w, http.StatusNotFound, "category not found")
		return
	}
	jsonResponse(w, http.StatusOK, category)
}

// Update handles PUT and PATCH /api/categories/{id}/. PUT replaces the
// record, PATCH merges the submitted fields.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	existing, err := store.GetCategory(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "category not found")
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

	if err := store.UpdateCategory(r.Context(), h.DB, id, name, description); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	category, _ := store.GetCategory(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, category)
}

// Delete handles DELETE /api/categories/{id}/. Items in the category
// are cascade-deleted; their image blobs are released afterwards.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	existing, err := store.GetCategory(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "category not found")
		return
	}

	imageKeys, err := store.DeleteCategory(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	for _, key := range imageKeys {
		if err := h.Blobs.Delete(key); err != nil {
			slog.Warn("orphaned image blob after cascade delete", "key", key, "error", err)
		}
	}

	slog.Info("category deleted", "category", existing.Name, "cascaded_images", len(imageKeys))
	w.WriteHeader(http.StatusNoContent)
}
