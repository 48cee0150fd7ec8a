package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/wiroon/shortlink/internal/core/domain"
	"github.com/wiroon/shortlink/internal/ports"
)

type LinkHandler struct {
	links ports.LinkService
	stats ports.StatsService
}

func NewLinkHandler(links ports.LinkService, stats ports.StatsService) *LinkHandler {
	return &LinkHandler{links: links, stats: stats}
}

type createLinkRequest struct {
	OriginalLink string `json:"original_link"`
	ExpireDays   int    `json:"expire_days,omitempty"`
}

// Redirect serves the public hot path. Deactivated and expired links
// are reported exactly like unknown keys so their existence does not
// leak. The click is recorded concurrently with the response on a
// detached context; a recording failure is logged for operators and
// never seen by the visitor.
func (h *LinkHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	res, err := h.links.Resolve(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) ||
			errors.Is(err, domain.ErrLinkDeactivated) ||
			errors.Is(err, domain.ErrLinkExpired) {
			writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Url not found"})
		} else {
			writeError(w, r, err)
		}
		return
	}

	sourceIP := clientIP(r)
	userAgent := r.UserAgent()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.links.RecordClick(ctx, res.LinkID, sourceIP, userAgent); err != nil {
			slog.Error("click recording failed", "link_id", res.LinkID, "err", err)
		}
	}()

	http.Redirect(w, r, res.OriginalURL, http.StatusFound)
}

// List returns the caller's own links.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	limit, offset := pagination(r)

	links, err := h.links.ListByOwner(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if links == nil {
		links = []domain.Link{}
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body"})
		return
	}

	link, err := h.links.Create(r.Context(), UserFromContext(r.Context()), req.OriginalLink, req.ExpireDays)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.GetByKey(r.Context(), r.PathValue("key"), UserFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.links.Status(r.Context(), r.PathValue("key"), UserFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *LinkHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	activated, err := strconv.ParseBool(r.URL.Query().Get("activated"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Query parameter 'activated' must be true or false"})
		return
	}

	link, err := h.links.SetActivation(r.Context(), r.PathValue("key"), UserFromContext(r.Context()), activated)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.StatsByKey(r.Context(), r.PathValue("key"),
		UserFromContext(r.Context()), time.Now().UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.links.Delete(r.Context(), r.PathValue("key"), UserFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
