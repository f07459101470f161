package output

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shotlens/shotlens/internal/core"
	"github.com/shotlens/shotlens/internal/core/store"
	"github.com/shotlens/shotlens/internal/dribbble"
)

// ErrNoRecord is returned when asked to tabulate a nil record.
var ErrNoRecord = errors.New("no record to render")

// view is the tabular shape shared by the table and markdown renderers.
type view struct {
	title  string
	header []string
	rows   [][]string
	footer string
}

var (
	shotHeader    = []string{"ID", "Title", "Player", "Views", "Likes", "Comments", "URL"}
	playerHeader  = []string{"ID", "Username", "Name", "Shots", "Followers", "Location"}
	commentHeader = []string{"ID", "Player", "Likes", "Created", "Body"}
)

func viewOf(value any) (view, error) {
	switch v := value.(type) {
	case *dribbble.Shot:
		if v == nil {
			return view{}, ErrNoRecord
		}
		return shotDetail(v), nil
	case *dribbble.ShotList:
		if v == nil {
			return view{}, ErrNoRecord
		}
		out := shotsView("Shots", v.Shots)
		out.footer = pagingFooter(v.Paging)
		return out, nil
	case []dribbble.Shot:
		return shotsView("Archived shots", v), nil
	case *dribbble.Player:
		if v == nil {
			return view{}, ErrNoRecord
		}
		return playerDetail(v), nil
	case *dribbble.PlayerList:
		if v == nil {
			return view{}, ErrNoRecord
		}
		out := playersView("Players", v.Players)
		out.footer = pagingFooter(v.Paging)
		return out, nil
	case []dribbble.Player:
		return playersView("Archived players", v), nil
	case *dribbble.CommentList:
		if v == nil {
			return view{}, ErrNoRecord
		}
		out := commentsView(v.Comments)
		out.footer = pagingFooter(v.Paging)
		return out, nil
	case core.QuotaState:
		return view{
			title:  "Quota",
			header: []string{"Window", "Used", "Limit", "Remaining"},
			rows: [][]string{{
				strconv.FormatInt(v.Window, 10),
				strconv.Itoa(v.Hits),
				strconv.Itoa(v.Limit),
				strconv.Itoa(v.Remaining()),
			}},
		}, nil
	case store.Counts:
		return view{
			title:  "Archive",
			header: []string{"Kind", "Records"},
			rows: [][]string{
				{"shots", strconv.Itoa(v.Shots)},
				{"players", strconv.Itoa(v.Players)},
				{"comments", strconv.Itoa(v.Comments)},
			},
		}, nil
	default:
		return view{}, fmt.Errorf("no tabular rendering for %T", value)
	}
}

func shotDetail(s *dribbble.Shot) view {
	rows := [][]string{
		{"ID", strconv.FormatInt(s.ID, 10)},
		{"Title", s.Title},
		{"Player", playerName(s.Player)},
		{"Size", fmt.Sprintf("%dx%d", s.Width, s.Height)},
		{"Views", strconv.Itoa(s.ViewsCount)},
		{"Likes", strconv.Itoa(s.LikesCount)},
		{"Comments", strconv.Itoa(s.CommentsCount)},
		{"Rebounds", strconv.Itoa(s.ReboundsCount)},
		{"URL", s.URL},
		{"Image", s.ImageURL},
		{"Created", s.CreatedAt},
	}
	if s.ReboundSourceID > 0 {
		rows = append(rows, []string{"Rebound of", strconv.FormatInt(s.ReboundSourceID, 10)})
	}
	return view{title: s.Title, header: []string{"Field", "Value"}, rows: rows}
}

func playerDetail(p *dribbble.Player) view {
	rows := [][]string{
		{"ID", strconv.FormatInt(p.ID, 10)},
		{"Username", p.Username},
		{"Name", p.Name},
		{"Location", p.Location},
		{"Twitter", p.TwitterScreenName},
		{"Shots", strconv.Itoa(p.ShotsCount)},
		{"Followers", strconv.Itoa(p.FollowersCount)},
		{"Following", strconv.Itoa(p.FollowingCount)},
		{"Draftees", strconv.Itoa(p.DrafteesCount)},
		{"Likes received", strconv.Itoa(p.LikesReceivedCount)},
		{"URL", p.URL},
	}
	if p.DraftedByPlayerID.Valid {
		rows = append(rows, []string{"Drafted by", p.DraftedByPlayerID.String()})
	}
	return view{title: p.Username, header: []string{"Field", "Value"}, rows: rows}
}

func shotsView(title string, shots []dribbble.Shot) view {
	rows := make([][]string, 0, len(shots))
	for _, s := range shots {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.Title,
			playerName(s.Player),
			strconv.Itoa(s.ViewsCount),
			strconv.Itoa(s.LikesCount),
			strconv.Itoa(s.CommentsCount),
			s.URL,
		})
	}
	return view{title: title, header: shotHeader, rows: rows}
}

func playersView(title string, players []dribbble.Player) view {
	rows := make([][]string, 0, len(players))
	for _, p := range players {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Username,
			p.Name,
			strconv.Itoa(p.ShotsCount),
			strconv.Itoa(p.FollowersCount),
			p.Location,
		})
	}
	return view{title: title, header: playerHeader, rows: rows}
}

func commentsView(comments []dribbble.Comment) view {
	rows := make([][]string, 0, len(comments))
	for _, c := range comments {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			playerName(c.Player),
			strconv.Itoa(c.LikesCount),
			c.CreatedAt,
			strings.Join(strings.Fields(c.Body), " "),
		})
	}
	return view{title: "Comments", header: commentHeader, rows: rows}
}

func playerName(p *dribbble.Player) string {
	if p == nil {
		return ""
	}
	if p.Username != "" {
		return p.Username
	}
	return p.Name
}

func pagingFooter(p dribbble.Paging) string {
	if p.Pages == 0 && p.Total == 0 {
		return ""
	}
	return fmt.Sprintf("page %d/%d, %d total", p.Page, p.Pages, p.Total)
}
