package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pookieverse/apiserver/internal/services"
	"github.com/pookieverse/apiserver/internal/storage"
	"github.com/pookieverse/apiserver/internal/store"
	"github.com/pookieverse/apiserver/types"
)

const (
	maxMultipartMemory = 32 << 20
	maxImageBytes      = 10 << 20

	formFieldTitle = "title"
	formFieldDate  = "date"
	formFieldDesc  = "description"
	formFieldImage = "image"

	msgEntryNotFound = "Scrapbook entry not found"
)

// EntryHandler provides HTTP handlers for scrapbook entries.
type EntryHandler struct {
	entryService *services.EntryService
}

// NewEntryHandler constructs a handler with the provided service.
func NewEntryHandler(entryService *services.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

// EntryRouter registers entry routes on the given router, all behind the
// session gate.
func EntryRouter(r chi.Router, entryService *services.EntryService, gate func(http.Handler) http.Handler) {
	handler := NewEntryHandler(entryService)

	r.Use(gate)
	r.Get("/", handler.ListEntries)
	r.Post("/", handler.CreateEntry)
	r.Route("/{entryID}", func(r chi.Router) {
		r.Get("/", handler.GetEntry)
		r.Put("/", handler.UpdateEntry)
		r.Delete("/", handler.DeleteEntry)
	})
}

// EntryListResponse is the list response payload.
type EntryListResponse struct {
	Success bool          `json:"success"`
	Entries []types.Entry `json:"entries"`
}

// EntryResponse is the single-entry response payload.
type EntryResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Entry   types.Entry `json:"entry"`
}

func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entryService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching scrapbook entries")
		return
	}

	writeJSON(w, http.StatusOK, EntryListResponse{Success: true, Entries: entries})
}

func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entryService.Get(r.Context(), chi.URLParam(r, "entryID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgEntryNotFound)
			return
		}
		writeError(w, http.StatusInternalServerError, "Error fetching scrapbook entry")
		return
	}

	writeJSON(w, http.StatusOK, EntryResponse{Success: true, Entry: entry})
}

func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	form, err := parseEntryForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if form.Title == "" || form.RawDate == "" || form.Description == "" {
		writeError(w, http.StatusBadRequest, "All fields (title, date, description) are required")
		return
	}
	if form.Image == nil {
		writeError(w, http.StatusBadRequest, "Image file is required")
		return
	}

	date, err := types.ParseDate(form.RawDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date")
		return
	}

	entry, err := h.entryService.Create(r.Context(), services.CreateEntryParams{
		Title:       form.Title,
		Date:        date,
		Description: form.Description,
		Image:       *form.Image,
	})
	if err != nil {
		writeEntryError(w, err, "Error creating scrapbook entry")
		return
	}

	writeJSON(w, http.StatusCreated, EntryResponse{
		Success: true,
		Message: "Scrapbook entry created successfully",
		Entry:   entry,
	})
}

func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	form, err := parseEntryForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := services.UpdateEntryParams{
		Title:       form.Title,
		Description: form.Description,
		Image:       form.Image,
	}
	if form.RawDate != "" {
		date, err := types.ParseDate(form.RawDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date")
			return
		}
		params.Date = &date
	}

	entry, err := h.entryService.Update(r.Context(), chi.URLParam(r, "entryID"), params)
	if err != nil {
		writeEntryError(w, err, "Error updating scrapbook entry")
		return
	}

	writeJSON(w, http.StatusOK, EntryResponse{
		Success: true,
		Message: "Scrapbook entry updated successfully",
		Entry:   entry,
	})
}

func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.entryService.Delete(r.Context(), chi.URLParam(r, "entryID")); err != nil {
		writeEntryError(w, err, "Error deleting scrapbook entry")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Scrapbook entry deleted successfully",
	})
}

func writeEntryError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, msgEntryNotFound)
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "Unsupported image format")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// entryForm is the parsed multipart payload. Empty fields were simply
// not supplied; Image is nil when no file was uploaded.
type entryForm struct {
	Title       string
	RawDate     string
	Description string
	Image       *storage.File
}

func parseEntryForm(r *http.Request) (entryForm, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return entryForm{}, errors.New("invalid multipart form")
	}

	form := entryForm{
		Title:       strings.TrimSpace(r.FormValue(formFieldTitle)),
		RawDate:     strings.TrimSpace(r.FormValue(formFieldDate)),
		Description: strings.TrimSpace(r.FormValue(formFieldDesc)),
	}

	image, err := parseImageFile(r.MultipartForm)
	if err != nil {
		return entryForm{}, err
	}
	form.Image = image

	return form, nil
}

func parseImageFile(form *multipart.Form) (*storage.File, error) {
	if form == nil {
		return nil, nil
	}

	files := form.File[formFieldImage]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		return nil, errors.New("only one image file is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("failed to read image file")
	}

	data, err := readFileLimited(file, maxImageBytes)
	_ = file.Close()
	if err != nil {
		return nil, err
	}

	return &storage.File{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
