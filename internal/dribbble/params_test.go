package dribbble

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shotlens/shotlens/internal/core/dispatch"
)

func TestPageValidate(t *testing.T) {
	require.NoError(t, DefaultPage.Validate())
	require.ErrorIs(t, Page{Number: 0, PerPage: 1}.Validate(), dispatch.ErrInvalidArgument)
	require.ErrorIs(t, Page{Number: 1, PerPage: -1}.Validate(), dispatch.ErrInvalidArgument)
	require.Equal(t, "page=1&per_page=15", DefaultPage.Query())
}

func TestParseShotListType(t *testing.T) {
	for _, value := range []string{"debuts", "EVERYONE", " popular "} {
		_, err := ParseShotListType(value)
		require.NoError(t, err, value)
	}

	_, err := ParseShotListType("")
	require.ErrorIs(t, err, dispatch.ErrInvalidArgument)
	require.Error(t, ShotListType("weekly").Validate())
}

func TestPlayerRef(t *testing.T) {
	ref := ParsePlayerRef("42")
	require.False(t, ref.IsUsername())
	require.Equal(t, "42", ref.String())
	require.NoError(t, ref.Validate())

	ref = ParsePlayerRef(" simple bits ")
	require.True(t, ref.IsUsername())
	require.Equal(t, "simple%20bits", ref.String())

	require.ErrorIs(t, ParsePlayerRef("-4").Validate(), dispatch.ErrInvalidArgument)
	require.ErrorIs(t, ParsePlayerRef("").Validate(), dispatch.ErrInvalidArgument)
	require.ErrorIs(t, PlayerRef{}.Validate(), dispatch.ErrInvalidArgument)
}

func TestNullableID(t *testing.T) {
	var player Player

	require.NoError(t, json.Unmarshal([]byte(`{"drafted_by_player_id": 12}`), &player))
	require.Equal(t, NullableID{Value: 12, Valid: true}, player.DraftedByPlayerID)

	require.NoError(t, json.Unmarshal([]byte(`{"drafted_by_player_id": "13"}`), &player))
	require.Equal(t, int64(13), player.DraftedByPlayerID.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"drafted_by_player_id": null}`), &player))
	require.False(t, player.DraftedByPlayerID.Valid)
	require.Equal(t, "", player.DraftedByPlayerID.String())

	require.Error(t, json.Unmarshal([]byte(`{"drafted_by_player_id": "abc"}`), &player))

	encoded, err := json.Marshal(NullableID{Value: 5, Valid: true})
	require.NoError(t, err)
	require.Equal(t, "5", string(encoded))

	out, err := yaml.Marshal(map[string]NullableID{"a": {}, "b": {Value: 2, Valid: true}})
	require.NoError(t, err)
	require.Equal(t, "a: null\nb: 2\n", string(out))
}
