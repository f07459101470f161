package dribbble

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordsCompareByID(t *testing.T) {
	shots := []Shot{{ID: 30, Title: "c"}, {ID: 10, Title: "a"}, {ID: 20, Title: "b"}}
	slices.SortFunc(shots, Shot.Compare)
	require.Equal(t, []int64{10, 20, 30}, []int64{shots[0].ID, shots[1].ID, shots[2].ID})

	require.True(t, Player{ID: 1, Name: "Dan"}.Equal(Player{ID: 1, Name: "Daniel"}))
	require.False(t, Player{ID: 1}.Equal(Player{ID: 2}))
	require.Negative(t, Player{ID: 1}.Compare(Player{ID: 2}))
	require.Zero(t, Comment{ID: 5, Body: "x"}.Compare(Comment{ID: 5}))
}
