package dribbble

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shotlens/shotlens/internal/core/dispatch"
)

const (
	DefaultPageNumber = 1
	DefaultPerPage    = 15
)

// Page selects one page of a list endpoint.
type Page struct {
	Number  int
	PerPage int
}

// DefaultPage is the page requested when the caller has no preference.
var DefaultPage = Page{Number: DefaultPageNumber, PerPage: DefaultPerPage}

// Validate rejects non-positive page numbers and sizes.
func (p Page) Validate() error {
	if p.Number < 1 {
		return invalidArgument("page number must be greater than zero")
	}
	if p.PerPage < 1 {
		return invalidArgument("per-page number must be greater than zero")
	}
	return nil
}

// Query renders the page as the API's query string.
func (p Page) Query() string {
	return "page=" + strconv.Itoa(p.Number) + "&per_page=" + strconv.Itoa(p.PerPage)
}

// ShotListType names one of the curated shot lists.
type ShotListType string

const (
	ShotListDebuts   ShotListType = "debuts"
	ShotListEveryone ShotListType = "everyone"
	ShotListPopular  ShotListType = "popular"
)

// ShotListTypes lists every supported list in display order.
var ShotListTypes = []ShotListType{ShotListDebuts, ShotListEveryone, ShotListPopular}

// ParseShotListType normalizes a list name.
func ParseShotListType(value string) (ShotListType, error) {
	normalized := ShotListType(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case ShotListDebuts, ShotListEveryone, ShotListPopular:
		return normalized, nil
	case "":
		return "", invalidArgument("shot list type cannot be empty")
	default:
		return "", invalidArgument(fmt.Sprintf("unknown shot list type %q", value))
	}
}

// Validate reports whether t is a known list.
func (t ShotListType) Validate() error {
	_, err := ParseShotListType(string(t))
	return err
}

// PlayerRef identifies a player by numeric id or by username.
type PlayerRef struct {
	id       int64
	username string
	byName   bool
}

// PlayerID references a player by id.
func PlayerID(id int64) PlayerRef {
	return PlayerRef{id: id}
}

// Username references a player by username.
func Username(name string) PlayerRef {
	return PlayerRef{username: name, byName: true}
}

// ParsePlayerRef treats an all-digit value as an id and anything else as a username.
func ParsePlayerRef(value string) PlayerRef {
	trimmed := strings.TrimSpace(value)
	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return PlayerID(id)
	}
	return Username(trimmed)
}

// IsUsername reports whether the reference is by username.
func (r PlayerRef) IsUsername() bool {
	return r.byName
}

// Validate rejects non-positive ids and blank usernames.
func (r PlayerRef) Validate() error {
	if r.byName {
		if strings.TrimSpace(r.username) == "" {
			return invalidArgument("player username cannot be empty")
		}
		return nil
	}
	if r.id < 1 {
		return invalidArgument("player ID must be greater than zero")
	}
	return nil
}

// String renders the reference as a path segment.
func (r PlayerRef) String() string {
	if r.IsUsername() {
		return url.PathEscape(strings.TrimSpace(r.username))
	}
	return strconv.FormatInt(r.id, 10)
}

func invalidArgument(message string) error {
	return fmt.Errorf("%w: %s", dispatch.ErrInvalidArgument, message)
}
