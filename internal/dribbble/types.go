package dribbble

import (
	"bytes"
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Player is a Dribbble member profile.
type Player struct {
	ID                    int64      `json:"id" yaml:"id"`
	Name                  string     `json:"name" yaml:"name"`
	Username              string     `json:"username" yaml:"username"`
	URL                   string     `json:"url" yaml:"url"`
	AvatarURL             string     `json:"avatar_url" yaml:"avatar_url"`
	Location              string     `json:"location" yaml:"location"`
	TwitterScreenName     string     `json:"twitter_screen_name" yaml:"twitter_screen_name"`
	DraftedByPlayerID     NullableID `json:"drafted_by_player_id" yaml:"drafted_by_player_id"`
	ShotsCount            int        `json:"shots_count" yaml:"shots_count"`
	DrafteesCount         int        `json:"draftees_count" yaml:"draftees_count"`
	FollowersCount        int        `json:"followers_count" yaml:"followers_count"`
	FollowingCount        int        `json:"following_count" yaml:"following_count"`
	CommentsCount         int        `json:"comments_count" yaml:"comments_count"`
	CommentsReceivedCount int        `json:"comments_received_count" yaml:"comments_received_count"`
	LikesCount            int        `json:"likes_count" yaml:"likes_count"`
	LikesReceivedCount    int        `json:"likes_received_count" yaml:"likes_received_count"`
	ReboundsCount         int        `json:"rebounds_count" yaml:"rebounds_count"`
	ReboundsReceivedCount int        `json:"rebounds_received_count" yaml:"rebounds_received_count"`
	CreatedAt             string     `json:"created_at" yaml:"created_at"`
}

// Shot is a single posted design.
type Shot struct {
	ID              int64   `json:"id" yaml:"id"`
	Title           string  `json:"title" yaml:"title"`
	URL             string  `json:"url" yaml:"url"`
	ShortURL        string  `json:"short_url" yaml:"short_url"`
	ImageURL        string  `json:"image_url" yaml:"image_url"`
	ImageTeaserURL  string  `json:"image_teaser_url" yaml:"image_teaser_url"`
	Width           int     `json:"width" yaml:"width"`
	Height          int     `json:"height" yaml:"height"`
	ViewsCount      int     `json:"views_count" yaml:"views_count"`
	LikesCount      int     `json:"likes_count" yaml:"likes_count"`
	CommentsCount   int     `json:"comments_count" yaml:"comments_count"`
	ReboundsCount   int     `json:"rebounds_count" yaml:"rebounds_count"`
	ReboundSourceID int64   `json:"rebound_source_id" yaml:"rebound_source_id"`
	CreatedAt       string  `json:"created_at" yaml:"created_at"`
	Player          *Player `json:"player,omitempty" yaml:"player,omitempty"`
}

// Comment is a reply left on a shot.
type Comment struct {
	ID         int64   `json:"id" yaml:"id"`
	Body       string  `json:"body" yaml:"body"`
	LikesCount int     `json:"likes_count" yaml:"likes_count"`
	CreatedAt  string  `json:"created_at" yaml:"created_at"`
	Player     *Player `json:"player,omitempty" yaml:"player,omitempty"`
}

// Compare orders players by ID.
func (p Player) Compare(other Player) int { return cmp.Compare(p.ID, other.ID) }

// Equal reports whether both records describe the same player.
func (p Player) Equal(other Player) bool { return p.ID == other.ID }

// Compare orders shots by ID.
func (s Shot) Compare(other Shot) int { return cmp.Compare(s.ID, other.ID) }

// Equal reports whether both records describe the same shot.
func (s Shot) Equal(other Shot) bool { return s.ID == other.ID }

// Compare orders comments by ID.
func (c Comment) Compare(other Comment) int { return cmp.Compare(c.ID, other.ID) }

// Equal reports whether both records describe the same comment.
func (c Comment) Equal(other Comment) bool { return c.ID == other.ID }

// Paging is the envelope shared by every list response.
type Paging struct {
	Page    int   `json:"page" yaml:"page"`
	Pages   int   `json:"pages" yaml:"pages"`
	PerPage int   `json:"per_page" yaml:"per_page"`
	Total   int64 `json:"total" yaml:"total"`
}

// ShotList is one page of shots.
type ShotList struct {
	Paging `yaml:",inline"`
	Shots  []Shot `json:"shots" yaml:"shots"`
}

// PlayerList is one page of players.
type PlayerList struct {
	Paging  `yaml:",inline"`
	Players []Player `json:"players" yaml:"players"`
}

// CommentList is one page of comments.
type CommentList struct {
	Paging   `yaml:",inline"`
	Comments []Comment `json:"comments" yaml:"comments"`
}

// NullableID is an identifier the API sends as a number, a numeric string or null.
type NullableID struct {
	Value int64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = NullableID{}
		return nil
	}

	raw := string(trimmed)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*n = NullableID{}
			return nil
		}
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", raw, err)
	}
	*n = NullableID{Value: value, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n NullableID) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(n.Value, 10)), nil
}

// MarshalYAML implements yaml.Marshaler.
func (n NullableID) MarshalYAML() (any, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Value, nil
}

// String returns the id, or an empty string when absent.
func (n NullableID) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(n.Value, 10)
}
