package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/schooladmin/internal/common"
	"github.com/dmitrijs2005/schooladmin/internal/logging"
	"github.com/dmitrijs2005/schooladmin/internal/models"
	"github.com/dmitrijs2005/schooladmin/internal/server/services"
)

const maxBody = 1 << 20

type resourceHandler[T models.Entity] struct {
	svc Service[T]
	log logging.Logger
}

func (h *resourceHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *resourceHandler[T]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *resourceHandler[T]) create(w http.ResponseWriter, r *http.Request) {
	v, ok := decode[T](w, r)
	if !ok {
		return
	}
	created, err := h.svc.Create(r.Context(), v)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// replace is PUT on the collection: the body carries the id.
func (h *resourceHandler[T]) replace(w http.ResponseWriter, r *http.Request) {
	v, ok := decode[T](w, r)
	if !ok {
		return
	}
	if v.EntityID() <= 0 {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	h.save(w, r, v)
}

// update is PUT on an item: the path id wins over any id in the body.
func (h *resourceHandler[T]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, ok := decodeWithID[T](w, r, id)
	if !ok {
		return
	}
	h.save(w, r, v)
}

func (h *resourceHandler[T]) save(w http.ResponseWriter, r *http.Request, v T) {
	updated, err := h.svc.Update(r.Context(), v)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *resourceHandler[T]) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *resourceHandler[T]) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

// decode reads the body into a T, rejecting unknown fields. On create the
// repositories assign the id, so one sent by the client has no effect.
func decode[T models.Entity](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return v, false
	}
	return v, true
}

// decodeWithID is decode with the id replaced by id.
func decodeWithID[T models.Entity](w http.ResponseWriter, r *http.Request, id int64) (T, bool) {
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&payload); err != nil || payload == nil {
		writeError(w, http.StatusBadRequest, "invalid payload: expected a JSON object")
		var zero T
		return zero, false
	}
	payload["id"], _ = json.Marshal(id)

	raw, _ := json.Marshal(payload)
	var v T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return v, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
