package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/wiroon/shortlink/internal/core/domain"
	"github.com/wiroon/shortlink/internal/ports"
)

// AdminHandler mirrors the owner-scoped link surface without owner
// scoping, plus user management. Routes are mounted behind
// RequireAdmin; the per-link operations still pass the caller through
// the service's authorization check, which admins satisfy.
type AdminHandler struct {
	links ports.LinkService
	stats ports.StatsService
	auth  ports.AuthService
}

func NewAdminHandler(links ports.LinkService, stats ports.StatsService, auth ports.AuthService) *AdminHandler {
	return &AdminHandler{links: links, stats: stats, auth: auth}
}

func (h *AdminHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	links, err := h.links.ListAll(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if links == nil {
		links = []domain.Link{}
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *AdminHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	links, err := h.links.ListAll(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses(links, time.Now().UTC()))
}

// ListStats returns every link with its click windows, ranked by the
// window sum descending.
func (h *AdminHandler) ListStats(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	links, err := h.links.ListAll(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ranked, err := h.stats.TopLinks(r.Context(), links, time.Now().UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ranked == nil {
		ranked = []domain.LinkStats{}
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	user, err := h.auth.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) ListUserLinks(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	links, err := h.links.ListByOwner(r.Context(), id, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if links == nil {
		links = []domain.Link{}
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *AdminHandler) ListUserStatuses(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	links, err := h.links.ListByOwner(r.Context(), id, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses(links, time.Now().UTC()))
}

func (h *AdminHandler) ListUserStats(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	links, err := h.links.ListByOwner(r.Context(), id, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats, err := h.stats.StatsForLinks(r.Context(), links, time.Now().UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if stats == nil {
		stats = []domain.LinkStats{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) DeleteUserLinks(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	if err := h.links.DeleteByOwner(r.Context(), id, UserFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser removes the account together with its links and clicks.
// The links go through the link service first so cached resolutions
// are invalidated.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	if err := h.links.DeleteByOwner(r.Context(), id, UserFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.auth.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statuses(links []domain.Link, now time.Time) []domain.LinkStatus {
	out := make([]domain.LinkStatus, 0, len(links))
	for _, l := range links {
		out = append(out, domain.LinkStatus{
			Key:       l.Key,
			Activated: l.Activated,
			Expired:   l.Expired(now),
			ExpiresAt: l.ExpiresAt,
		})
	}
	return out
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid user ID"})
		return 0, false
	}
	return id, true
}
