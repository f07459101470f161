// Package dribbble maps Dribbble API payloads onto typed records. Every call
// goes through a dispatcher, so the client inherits its rate gate and its
// no-result semantics: a nil record with a nil error means the API produced
// no data (rejected by quota, non-200 status, or transport failure).
package dribbble

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// ErrMalformedPayload wraps a 200 response whose body could not be decoded.
var ErrMalformedPayload = errors.New("malformed dribbble payload")

// Dispatcher is the gated raw fetch the client builds on.
type Dispatcher interface {
	Dispatch(ctx context.Context, path, query string) ([]byte, error)
}

// Client exposes the Dribbble endpoints as typed calls.
type Client struct {
	dispatcher Dispatcher
}

// NewClient returns a client that sends every request through d.
func NewClient(d Dispatcher) *Client {
	return &Client{dispatcher: d}
}

// Shot returns details for one shot.
func (c *Client) Shot(ctx context.Context, id int64) (*Shot, error) {
	if err := validShotID(id); err != nil {
		return nil, err
	}
	return fetch[Shot](ctx, c, "shots/"+strconv.FormatInt(id, 10), nil)
}

// ShotRebounds returns shots posted in response to a shot.
func (c *Client) ShotRebounds(ctx context.Context, id int64, page Page) (*ShotList, error) {
	if err := validShotID(id); err != nil {
		return nil, err
	}
	return fetch[ShotList](ctx, c, "shots/"+strconv.FormatInt(id, 10)+"/rebounds", &page)
}

// ShotComments returns the comments on a shot.
func (c *Client) ShotComments(ctx context.Context, id int64, page Page) (*CommentList, error) {
	if err := validShotID(id); err != nil {
		return nil, err
	}
	return fetch[CommentList](ctx, c, "shots/"+strconv.FormatInt(id, 10)+"/comments", &page)
}

// Shots returns one of the curated lists: debuts, everyone or popular.
func (c *Client) Shots(ctx context.Context, list ShotListType, page Page) (*ShotList, error) {
	normalized, err := ParseShotListType(string(list))
	if err != nil {
		return nil, err
	}
	return fetch[ShotList](ctx, c, "shots/"+string(normalized), &page)
}

// PlayerShots returns the player's most recent shots.
func (c *Client) PlayerShots(ctx context.Context, player PlayerRef, page Page) (*ShotList, error) {
	return playerList[ShotList](ctx, c, player, "/shots", page)
}

// PlayerFollowingShots returns recent shots by the players this player follows.
func (c *Client) PlayerFollowingShots(ctx context.Context, player PlayerRef, page Page) (*ShotList, error) {
	return playerList[ShotList](ctx, c, player, "/shots/following", page)
}

// PlayerLikes returns shots the player liked.
func (c *Client) PlayerLikes(ctx context.Context, player PlayerRef, page Page) (*ShotList, error) {
	return playerList[ShotList](ctx, c, player, "/shots/likes", page)
}

// Player returns a player's profile.
func (c *Client) Player(ctx context.Context, player PlayerRef) (*Player, error) {
	if err := player.Validate(); err != nil {
		return nil, err
	}
	return fetch[Player](ctx, c, "players/"+player.String(), nil)
}

// PlayerFollowers returns the players following this player.
func (c *Client) PlayerFollowers(ctx context.Context, player PlayerRef, page Page) (*PlayerList, error) {
	return playerList[PlayerList](ctx, c, player, "/followers", page)
}

// PlayerFollowing returns the players this player follows.
func (c *Client) PlayerFollowing(ctx context.Context, player PlayerRef, page Page) (*PlayerList, error) {
	return playerList[PlayerList](ctx, c, player, "/following", page)
}

// PlayerDraftees returns the players this player drafted.
func (c *Client) PlayerDraftees(ctx context.Context, player PlayerRef, page Page) (*PlayerList, error) {
	return playerList[PlayerList](ctx, c, player, "/draftees", page)
}

func playerList[T any](ctx context.Context, c *Client, player PlayerRef, suffix string, page Page) (*T, error) {
	if err := player.Validate(); err != nil {
		return nil, err
	}
	return fetch[T](ctx, c, "players/"+player.String()+suffix, &page)
}

func fetch[T any](ctx context.Context, c *Client, path string, page *Page) (*T, error) {
	if c == nil || c.dispatcher == nil {
		return nil, errors.New("dribbble client is not configured")
	}

	query := ""
	if page != nil {
		if err := page.Validate(); err != nil {
			return nil, err
		}
		query = page.Query()
	}

	body, err := c.dispatcher.Dispatch(ctx, path, query)
	if err != nil || body == nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedPayload, path, err)
	}
	return &out, nil
}

func validShotID(id int64) error {
	if id < 1 {
		return invalidArgument("shot ID must be greater than zero")
	}
	return nil
}
