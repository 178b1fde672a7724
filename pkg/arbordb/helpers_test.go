package arbordb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbordb/arbordb_sdk_go/pkg/arbordb"
)

type player struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Team  string  `json:"team"`
}

func seedPlayers(t *testing.T, client *arbordb.Client) {
	t.Helper()
	ctx := context.Background()
	players := map[string]player{
		"p1": {Name: "ada", Score: 70, Team: "red"},
		"p2": {Name: "bob", Score: 90, Team: "blue"},
		"p3": {Name: "cyd", Score: 50, Team: "red"},
		"p4": {Name: "dee", Score: 80, Team: "blue"},
		"p5": {Name: "eli", Score: 60, Team: "red"},
	}
	for key, p := range players {
		require.NoError(t, arbordb.Set(ctx, client, "players/"+key, p))
	}
}

func itemKeys[T any](items []arbordb.Item[T]) []string {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key)
	}
	return keys
}

func TestTopReturnsDescending(t *testing.T) {
	client, _ := newTestClient(t)
	seedPlayers(t, client)

	items, err := arbordb.Top[player](context.Background(), client, "players", 3, "score")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p4", "p1"}, itemKeys(items))
	assert.Equal(t, float64(90), items[0].Value.Score)
}

func TestTopWithFewerItemsThanRequested(t *testing.T) {
	client, _ := newTestClient(t)
	seedPlayers(t, client)

	items, err := arbordb.Top[player](context.Background(), client, "players", 10, "score")
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, "p2", items[0].Key)
	assert.Equal(t, "p3", items[4].Key)
}

func TestBottomReturnsAscending(t *testing.T) {
	client, _ := newTestClient(t)
	seedPlayers(t, client)

	items, err := arbordb.Bottom[player](context.Background(), client, "players", 2, "score")
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p5"}, itemKeys(items))
}

func TestFindByValue(t *testing.T) {
	client, _ := newTestClient(t)
	seedPlayers(t, client)

	items, err := arbordb.FindByValue[player](context.Background(), client, "players", "team", "red")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p3", "p5"}, itemKeys(items))

	none, err := arbordb.FindByValue[player](context.Background(), client, "players", "team", "green")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTopBottomRejectNonPositiveCount(t *testing.T) {
	client, _ := newTestClient(t)
	seedPlayers(t, client)

	_, err := arbordb.Top[player](context.Background(), client, "players", 0, "score")
	assert.ErrorIs(t, err, arbordb.ErrInvalidQuery)

	_, err = arbordb.Bottom[player](context.Background(), client, "players", -1, "score")
	assert.ErrorIs(t, err, arbordb.ErrInvalidQuery)
}

func TestRangeInclusiveBothEnds(t *testing.T) {
	client, _ := newTestClient(t)
	seedPlayers(t, client)

	items, err := arbordb.Range[player](context.Background(), client, "players", "score", 60, 80)
	require.NoError(t, err)
	assert.Equal(t, []string{"p5", "p1", "p4"}, itemKeys(items))
}
