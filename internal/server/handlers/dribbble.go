package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/shotlens/shotlens/internal/core"
	"github.com/shotlens/shotlens/internal/dribbble"
	apperrors "github.com/shotlens/shotlens/internal/errors"
	"github.com/shotlens/shotlens/internal/metrics"
)

// DribbbleAPI is the typed client surface the facade serves.
type DribbbleAPI interface {
	Shot(ctx context.Context, id int64) (*dribbble.Shot, error)
	ShotRebounds(ctx context.Context, id int64, page dribbble.Page) (*dribbble.ShotList, error)
	ShotComments(ctx context.Context, id int64, page dribbble.Page) (*dribbble.CommentList, error)
	Shots(ctx context.Context, list dribbble.ShotListType, page dribbble.Page) (*dribbble.ShotList, error)
	PlayerShots(ctx context.Context, player dribbble.PlayerRef, page dribbble.Page) (*dribbble.ShotList, error)
	PlayerFollowingShots(ctx context.Context, player dribbble.PlayerRef, page dribbble.Page) (*dribbble.ShotList, error)
	PlayerLikes(ctx context.Context, player dribbble.PlayerRef, page dribbble.Page) (*dribbble.ShotList, error)
	Player(ctx context.Context, player dribbble.PlayerRef) (*dribbble.Player, error)
	PlayerFollowers(ctx context.Context, player dribbble.PlayerRef, page dribbble.Page) (*dribbble.PlayerList, error)
	PlayerFollowing(ctx context.Context, player dribbble.PlayerRef, page dribbble.Page) (*dribbble.PlayerList, error)
	PlayerDraftees(ctx context.Context, player dribbble.PlayerRef, page dribbble.Page) (*dribbble.PlayerList, error)
}

// QuotaReporter exposes the gate state for the current window.
type QuotaReporter interface {
	Quota(ctx context.Context) (core.QuotaState, error)
}

// DribbbleHandler maps /v1 routes onto client calls. A call that yields no
// data (quota rejection without throw, non-200 upstream, transport failure)
// is reported as 404.
type DribbbleHandler struct {
	api   DribbbleAPI
	quota QuotaReporter
}

// NewDribbbleHandler builds the facade handlers.
func NewDribbbleHandler(api DribbbleAPI, quota QuotaReporter) *DribbbleHandler {
	return &DribbbleHandler{api: api, quota: quota}
}

// QuotaResponse is the body of GET /v1/quota.
type QuotaResponse struct {
	Window    int64 `json:"window"`
	Used      int   `json:"used"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
}

type playerListCall[T any] func(context.Context, dribbble.PlayerRef, dribbble.Page) (*T, error)

func (h *DribbbleHandler) Shot(w http.ResponseWriter, r *http.Request) {
	id, ok := shotIDParam(w, r)
	if !ok {
		return
	}
	shot, err := h.api.Shot(r.Context(), id)
	respondRecord(w, r, shot, err)
}

func (h *DribbbleHandler) ShotRebounds(w http.ResponseWriter, r *http.Request) {
	id, ok := shotIDParam(w, r)
	if !ok {
		return
	}
	page, ok := pageParams(w, r)
	if !ok {
		return
	}
	list, err := h.api.ShotRebounds(r.Context(), id, page)
	respondRecord(w, r, list, err)
}

func (h *DribbbleHandler) ShotComments(w http.ResponseWriter, r *http.Request) {
	id, ok := shotIDParam(w, r)
	if !ok {
		return
	}
	page, ok := pageParams(w, r)
	if !ok {
		return
	}
	list, err := h.api.ShotComments(r.Context(), id, page)
	respondRecord(w, r, list, err)
}

func (h *DribbbleHandler) ShotList(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParams(w, r)
	if !ok {
		return
	}
	list, err := h.api.Shots(r.Context(), dribbble.ShotListType(chi.URLParam(r, "list")), page)
	respondRecord(w, r, list, err)
}

func (h *DribbbleHandler) Player(w http.ResponseWriter, r *http.Request) {
	player, err := h.api.Player(r.Context(), playerParam(r))
	respondRecord(w, r, player, err)
}

func (h *DribbbleHandler) PlayerShots(w http.ResponseWriter, r *http.Request) {
	servePlayerList(w, r, h.api.PlayerShots)
}

func (h *DribbbleHandler) PlayerFollowingShots(w http.ResponseWriter, r *http.Request) {
	servePlayerList(w, r, h.api.PlayerFollowingShots)
}

func (h *DribbbleHandler) PlayerLikes(w http.ResponseWriter, r *http.Request) {
	servePlayerList(w, r, h.api.PlayerLikes)
}

func (h *DribbbleHandler) PlayerFollowers(w http.ResponseWriter, r *http.Request) {
	servePlayerList(w, r, h.api.PlayerFollowers)
}

func (h *DribbbleHandler) PlayerFollowing(w http.ResponseWriter, r *http.Request) {
	servePlayerList(w, r, h.api.PlayerFollowing)
}

func (h *DribbbleHandler) PlayerDraftees(w http.ResponseWriter, r *http.Request) {
	servePlayerList(w, r, h.api.PlayerDraftees)
}

// Quota reports how much of the current window is used.
func (h *DribbbleHandler) Quota(w http.ResponseWriter, r *http.Request) {
	if h.quota == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("quota reporting is not configured"))
		return
	}

	state, err := h.quota.Quota(r.Context())
	if err != nil {
		respondWithError(w, r, apperrors.Wrap(r.Context(), apperrors.CodeServiceUnavailable, err, "Rate gate unavailable"))
		return
	}
	metrics.SetQuotaRemaining(state)

	writeJSON(w, http.StatusOK, QuotaResponse{
		Window:    state.Window,
		Used:      state.Hits,
		Limit:     state.Limit,
		Remaining: state.Remaining(),
	})
}

func servePlayerList[T any](w http.ResponseWriter, r *http.Request, call playerListCall[T]) {
	page, ok := pageParams(w, r)
	if !ok {
		return
	}
	list, err := call(r.Context(), playerParam(r), page)
	respondRecord(w, r, list, err)
}

func respondRecord[T any](w http.ResponseWriter, r *http.Request, record *T, err error) {
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	if record == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("Dribbble returned no data for this request"))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func shotIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("shot id must be an integer: "+raw))
		return 0, false
	}
	return id, true
}

func playerParam(r *http.Request) dribbble.PlayerRef {
	return dribbble.ParsePlayerRef(chi.URLParam(r, "player"))
}

func pageParams(w http.ResponseWriter, r *http.Request) (dribbble.Page, bool) {
	page := dribbble.DefaultPage
	query := r.URL.Query()

	for _, param := range []struct {
		name string
		dest *int
	}{
		{"page", &page.Number},
		{"per_page", &page.PerPage},
	} {
		raw := strings.TrimSpace(query.Get(param.name))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, r, apperrors.NewInvalidInputError(param.name+" must be an integer: "+raw))
			return page, false
		}
		*param.dest = value
	}
	return page, true
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
