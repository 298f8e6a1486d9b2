package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/morskmorsk/personal-item-tracker/internal/blob"
	"github.com/morskmorsk/personal-item-tracker/internal/imaging"
	"github.com/morskmorsk/personal-item-tracker/internal/model"
	"github.com/morskmorsk/personal-item-tracker/internal/store"
)

// maxImageBytes limits item image uploads to 5 MB.
const maxImageBytes = 5 << 20

// ItemsHandler handles item CRUD, image, and aggregation endpoints.
type ItemsHandler struct {
	DB    *sql.DB
	Blobs *blob.Store
}

// itemPayload carries an item write request. Pointer fields distinguish
// "not submitted" from zero values so PATCH can merge correctly.
type itemPayload struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Quantity    *int             `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
	Category    *int64           `json:"category"`
	Location    *int64           `json:"location"`
	IsAvailable *bool            `json:"is_available"`
	Barcode     *string          `json:"barcode"`
}

// apply copies the submitted fields onto item, leaving the rest alone.
func (p *itemPayload) apply(item *model.Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Price != nil {
		item.Price = p.Price
	}
	if p.Category != nil {
		item.CategoryID = *p.Category
	}
	if p.Location != nil {
		item.LocationID = *p.Location
	}
	if p.IsAvailable != nil {
		item.IsAvailable = *p.IsAvailable
	}
	if p.Barcode != nil {
		item.Barcode = *p.Barcode
	}
}

func formField(form map[string][]string, name string) (string, bool) {
	vals, ok := form[name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// parseItemRequest decodes an item write request from either JSON or
// multipart form data (the latter may carry an image file). On failure
// the error response has already been written and ok is false.
func parseItemRequest(w http.ResponseWriter, r *http.Request) (p *itemPayload, img *imaging.ProcessResult, ok bool) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		p = &itemPayload{}
		if err := decodeJSON(r, p); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return nil, nil, false
		}
		return p, nil, true
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return nil, nil, false
	}

	p = &itemPayload{}
	form := r.MultipartForm.Value

	if v, set := formField(form, "name"); set {
		p.Name = &v
	}
	if v, set := formField(form, "description"); set {
		p.Description = &v
	}
	if v, set := formField(form, "quantity"); set {
		q, err := strconv.Atoi(v)
		if err != nil {
			fieldError(w, "quantity", "quantity must be an integer")
			return nil, nil, false
		}
		p.Quantity = &q
	}
	if v, set := formField(form, "price"); set && v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			fieldError(w, "price", "price must be a decimal number")
			return nil, nil, false
		}
		p.Price = &d
	}
	if v, set := formField(form, "category"); set {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fieldError(w, "category", "category must be an integer id")
			return nil, nil, false
		}
		p.Category = &id
	}
	if v, set := formField(form, "location"); set {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fieldError(w, "location", "location must be an integer id")
			return nil, nil, false
		}
		p.Location = &id
	}
	if v, set := formField(form, "is_available"); set {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fieldError(w, "is_available", "is_available must be true or false")
			return nil, nil, false
		}
		p.IsAvailable = &b
	}
	if v, set := formField(form, "barcode"); set {
		p.Barcode = &v
	}

	file, _, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return p, nil, true
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid image upload")
		return nil, nil, false
	}
	defer file.Close()

	img, perr := imaging.Process(file)
	if perr != nil {
		fieldError(w, "image", perr.Error())
		return nil, nil, false
	}
	return p, img, true
}

// validateItemWrite runs every domain validator against the candidate
// record: field constraints, name uniqueness (excluding the record
// itself on update), and referential existence of both parents. On
// rejection the response has already been written and false is
// returned; nothing has been persisted at that point.
func (h *ItemsHandler) validateItemWrite(w http.ResponseWriter, r *http.Request, item *model.Item, excludeID int64) bool {
	if verr := model.ValidateItem(item); verr != nil {
		fieldError(w, verr.Field, verr.Message)
		return false
	}

	taken, err := store.ItemNameTaken(r.Context(), h.DB, item.Name, excludeID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if taken {
		fieldError(w, "name", "an item with this name already exists")
		return false
	}

	category, err := store.GetCategory(r.Context(), h.DB, item.CategoryID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if category == nil {
		fieldError(w, "category", "category does not exist")
		return false
	}

	location, err := store.GetLocation(r.Context(), h.DB, item.LocationID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if location == nil {
		fieldError(w, "location", "location does not exist")
		return false
	}

	return true
}

// itemFilterFromQuery parses the shared list/aggregation query
// parameters. On failure the error response has been written.
func itemFilterFromQuery(w http.ResponseWriter, r *http.Request) (*store.ItemFilter, bool) {
	q := r.URL.Query()
	filter := &store.ItemFilter{Search: q.Get("search")}

	if v := q.Get("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fieldError(w, "category", "category must be an integer id")
			return nil, false
		}
		filter.CategoryID = &id
	}
	if v := q.Get("location"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fieldError(w, "location", "location must be an integer id")
			return nil, false
		}
		filter.LocationID = &id
	}
	if v := q.Get("is_available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fieldError(w, "is_available", "is_available must be true or false")
			return nil, false
		}
		filter.Available = &b
	}
	if v := q.Get("ordering"); v != "" {
		if !store.ValidOrdering(v) {
			fieldError(w, "ordering", "ordering must be name, price or date_added, optionally prefixed with -")
			return nil, false
		}
		filter.Ordering = v
	}

	return filter, true
}

// List handles GET /api/items/.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := itemFilterFromQuery(w, r)
	if !ok {
		return
	}

	page, size := pageParams(r)
	filter.Limit = size
	filter.Offset = (page - 1) * size

	items, total, err := store.ListItems(r.Context(), h.DB, filter)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, paginated(r, total, page, size, items))
}

// Create handles POST /api/items/.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, img, ok := parseItemRequest(w, r)
	if !ok {
		return
	}

	item := &model.Item{Quantity: 1, IsAvailable: true}
	payload.apply(item)

	if !h.validateItemWrite(w, r, item, 0) {
		return
	}

	if img != nil {
		key := blob.Key(item.Name, img.Ext)
		if err := h.Blobs.Save(key, img.Data); err != nil {
			slog.Error("saving image blob", "key", key, "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to save image")
			return
		}
		item.ImageKey = key
	}

	created, err := store.CreateItem(r.Context(), h.DB, item)
	if err != nil {
		if item.ImageKey != "" {
			// Roll back the orphaned blob.
			if derr := h.Blobs.Delete(item.ImageKey); derr != nil {
				slog.Warn("orphaned image blob after failed create", "key", item.ImageKey, "error", derr)
			}
		}
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/items/{id}/.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT and PATCH /api/items/{id}/. PUT replaces the
// record (name, category and location required, omitted optional
// fields reset to defaults), PATCH merges the submitted fields. When a
// new image is uploaded the old blob is deleted after the row commits;
// date_added is never touched.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	existing, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	payload, img, ok := parseItemRequest(w, r)
	if !ok {
		return
	}

	var merged model.Item
	if r.Method == http.MethodPatch {
		merged = *existing
	} else {
		merged = model.Item{
			ID:          existing.ID,
			DateAdded:   existing.DateAdded,
			ImageKey:    existing.ImageKey,
			Quantity:    1,
			IsAvailable: true,
		}
	}
	payload.apply(&merged)
	merged.ID = existing.ID

	if !h.validateItemWrite(w, r, &merged, existing.ID) {
		return
	}

	oldKey := existing.ImageKey
	if img != nil {
		newKey := blob.Key(merged.Name, img.Ext)
		if err := h.Blobs.Save(newKey, img.Data); err != nil {
			slog.Error("saving image blob", "key", newKey, "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to save image")
			return
		}
		merged.ImageKey = newKey
	}

	if err := store.UpdateItem(r.Context(), h.DB, &merged); err != nil {
		if img != nil && merged.ImageKey != oldKey {
			if derr := h.Blobs.Delete(merged.ImageKey); derr != nil {
				slog.Warn("orphaned image blob after failed update", "key", merged.ImageKey, "error", derr)
			}
		}
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	// The row now references the new blob; release the replaced one.
	if img != nil && oldKey != "" && oldKey != merged.ImageKey {
		if err := h.Blobs.Delete(oldKey); err != nil {
			slog.Warn("orphaned image blob after replacement", "key", oldKey, "error", err)
		}
	}

	item, _ := store.GetItem(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}/. The item's image blob is
// released after the row is gone.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	if item.ImageKey != "" {
		if err := h.Blobs.Delete(item.ImageKey); err != nil {
			slog.Warn("orphaned image blob after item delete", "key", item.ImageKey, "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetImage handles GET /api/items/{id}/image/.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if item == nil || item.ImageKey == "" {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	data, err := h.Blobs.Read(item.ImageKey)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	mime := "image/jpeg"
	if strings.HasSuffix(item.ImageKey, ".png") {
		mime = "image/png"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

type categoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type locationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// GroupedByCategory handles GET /api/items/grouped_by_category/. It
// honors the same filter parameters as the item list, so a filtered
// listing and its summary agree.
func (h *ItemsHandler) GroupedByCategory(w http.ResponseWriter, r *http.Request) {
	filter, ok := itemFilterFromQuery(w, r)
	if !ok {
		return
	}

	groups, err := store.CountItemsByCategory(r.Context(), h.DB, filter)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to group items")
		return
	}

	out := make([]categoryCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, categoryCount{Category: g.Name, Count: g.Count})
	}
	jsonResponse(w, http.StatusOK, out)
}

// GroupedByLocation handles GET /api/items/grouped_by_location/.
func (h *ItemsHandler) GroupedByLocation(w http.ResponseWriter, r *http.Request) {
	filter, ok := itemFilterFromQuery(w, r)
	if !ok {
		return
	}

	groups, err := store.CountItemsByLocation(r.Context(), h.DB, filter)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to group items")
		return
	}

	out := make([]locationCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, locationCount{Location: g.Name, Count: g.Count})
	}
	jsonResponse(w, http.StatusOK, out)
}
