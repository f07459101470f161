package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shotlens/shotlens/internal/core"
	"github.com/shotlens/shotlens/internal/core/dispatch"
	"github.com/shotlens/shotlens/internal/dribbble"
)

// fakeAPI records the last call and answers from fixed values.
type fakeAPI struct {
	lastPlayer dribbble.PlayerRef
	lastPage   dribbble.Page
	lastList   dribbble.ShotListType
	shot       *dribbble.Shot
	shots      *dribbble.ShotList
	players    *dribbble.PlayerList
	err        error
}

func (f *fakeAPI) Shot(ctx context.Context, id int64) (*dribbble.Shot, error) {
	return f.shot, f.err
}

func (f *fakeAPI) ShotRebounds(ctx context.Context, id int64, page dribbble.Page) (*dribbble.ShotList, error) {
	f.lastPage = page
	return f.shots, f.err
}

func (f *fakeAPI) ShotComments(ctx context.Context, id int64, page dribbble.Page) (*dribbble.CommentList, error) {
	f.lastPage = page
	return &dribbble.CommentList{Comments: []dribbble.Comment{{ID: 1, Body: "hi"}}}, f.err
}

func (f *fakeAPI) Shots(ctx context.Context, list dribbble.ShotListType, page dribbble.Page) (*dribbble.ShotList, error) {
	f.lastList = list
	f.lastPage = page
	return f.shots, f.err
}

func (f *fakeAPI) playerShots(player dribbble.PlayerRef, page dribbble.Page) (*dribbble.ShotList, error) {
	f.lastPlayer = player
	f.lastPage = page
	return f.shots, f.err
}

func (f *fakeAPI) PlayerShots(ctx context.Context, player dribbble.PlayerRef, page dribbble.Page) (*dribbble.ShotList, error) {
	return f.playerShots(player, page)
}

func (f *fakeAPI) PlayerFollowingShots(ctx context.Context, player dribbble.PlayerRef, page dribbble.Page) (*dribbble.ShotList, error) {
	return f.playerShots(player, page)
}

func (f *fakeAPI) PlayerLikes(ctx context.Context, player dribbble.PlayerRef, page dribbble.Page) (*dribbble.ShotList, error) {
	return f.playerShots(player, page)
}

func (f *fakeAPI) Player(ctx context.Context, player dribbble.PlayerRef) (*dribbble.Player, error) {
	f.lastPlayer = player
	return &dribbble.Player{ID: 1, Username: player.String()}, f.err
}

func (f *fakeAPI) playerList(player dribbble.PlayerRef, page dribbble.Page) (*dribbble.PlayerList, error) {
	f.lastPlayer = player
	f.lastPage = page
	return f.players, f.err
}

func (f *fakeAPI) PlayerFollowers(ctx context.Context, player dribbble.PlayerRef, page dribbble.Page) (*dribbble.PlayerList, error) {
	return f.playerList(player, page)
}

func (f *fakeAPI) PlayerFollowing(ctx context.Context, player dribbble.PlayerRef, page dribbble.Page) (*dribbble.PlayerList, error) {
	return f.playerList(player, page)
}

func (f *fakeAPI) PlayerDraftees(ctx context.Context, player dribbble.PlayerRef, page dribbble.Page) (*dribbble.PlayerList, error) {
	return f.playerList(player, page)
}

func newTestRouter(api DribbbleAPI, quota QuotaReporter) http.Handler {
	h := NewDribbbleHandler(api, quota)
	r := chi.NewRouter()
	r.Get("/v1/shots/{id}", h.Shot)
	r.Get("/v1/shots/{id}/rebounds", h.ShotRebounds)
	r.Get("/v1/shots/{id}/comments", h.ShotComments)
	r.Get("/v1/lists/{list}", h.ShotList)
	r.Get("/v1/players/{player}", h.Player)
	r.Get("/v1/players/{player}/shots", h.PlayerShots)
	r.Get("/v1/players/{player}/followers", h.PlayerFollowers)
	r.Get("/v1/quota", h.Quota)
	return r
}

func serve(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestShotHandler(t *testing.T) {
	api := &fakeAPI{shot: &dribbble.Shot{ID: 7, Title: "Moon"}}
	rec := serve(t, newTestRouter(api, nil), "/v1/shots/7")

	require.Equal(t, http.StatusOK, rec.Code)
	var shot dribbble.Shot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shot))
	assert.Equal(t, "Moon", shot.Title)
}

func TestNoResultIsNotFound(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeAPI{}, nil), "/v1/shots/7")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestRateLimitedIsTooManyRequests(t *testing.T) {
	api := &fakeAPI{err: fmt.Errorf("%w: window 1", dispatch.ErrRateLimited)}
	rec := serve(t, newTestRouter(api, nil), "/v1/lists/popular")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, rec))
}

func TestBadParametersAreInvalidInput(t *testing.T) {
	router := newTestRouter(&fakeAPI{}, nil)

	for _, path := range []string{"/v1/shots/abc", "/v1/shots/1/rebounds?page=x", "/v1/players/a/shots?per_page=1.5"} {
		rec := serve(t, router, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, "INVALID_INPUT", errorCode(t, rec), path)
	}
}

func TestPagingAndPlayerParams(t *testing.T) {
	api := &fakeAPI{
		shots:   &dribbble.ShotList{Shots: []dribbble.Shot{{ID: 1}}},
		players: &dribbble.PlayerList{Players: []dribbble.Player{{ID: 2}}},
	}
	router := newTestRouter(api, nil)

	rec := serve(t, router, "/v1/players/simplebits/shots?page=3&per_page=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, api.lastPlayer.IsUsername())
	assert.Equal(t, dribbble.Page{Number: 3, PerPage: 5}, api.lastPage)

	rec = serve(t, router, "/v1/players/42/followers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, api.lastPlayer.IsUsername())
	assert.Equal(t, dribbble.DefaultPage, api.lastPage)

	rec = serve(t, router, "/v1/lists/debuts?page=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dribbble.ShotListType("debuts"), api.lastList)
	assert.Equal(t, 2, api.lastPage.Number)
}

func TestQuotaHandler(t *testing.T) {
	quota := stubQuota{state: core.QuotaState{Window: 100, Hits: 12, Limit: 60}}
	rec := serve(t, newTestRouter(&fakeAPI{}, quota), "/v1/quota")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp QuotaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, QuotaResponse{Window: 100, Used: 12, Limit: 60, Remaining: 48}, resp)

	rec = serve(t, newTestRouter(&fakeAPI{}, nil), "/v1/quota")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(t, newTestRouter(&fakeAPI{}, stubQuota{err: fmt.Errorf("redis down")}), "/v1/quota")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
