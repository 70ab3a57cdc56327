package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/attrition/internal/models"
	"github.com/rohankatakam/attrition/internal/scan"
)

func entries(conv scan.Convention, keys ...models.MatchKey) []scan.Entry {
	out := make([]scan.Entry, len(keys))
	for i, k := range keys {
		name := conv.FileName(k)
		out[i] = scan.Entry{Path: "/data/" + name, Name: name, Key: k}
	}
	return out
}

var (
	identities = scan.Convention{Suffix: "_identities.csv"}
	departed   = scan.Convention{Suffix: "_identities_filtered.csv"}
	workType   = scan.Convention{Prefix: "matched_", Suffix: "_identities.csv"}
)

func TestMatch_Intersection(t *testing.T) {
	left := entries(identities, "c", "a", "b", "d")
	right := entries(departed, "b", "e", "a")

	result := Match(left, right)

	assert.Equal(t, []models.MatchKey{"a", "b"}, result.Keys())
	assert.Equal(t, []models.MatchKey{"c", "d"}, result.UnmatchedLeft)
	assert.Equal(t, []models.MatchKey{"e"}, result.UnmatchedRight)

	pair, ok := result.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "b_identities.csv", pair.Left.Name)
	assert.Equal(t, "b_identities_filtered.csv", pair.Right.Name)

	_, ok = result.Lookup("c")
	assert.False(t, ok)
}

func TestMatch_SymmetricKeySet(t *testing.T) {
	left := entries(departed, "x", "y", "z")
	right := entries(workType, "y", "z", "w")

	ab := Match(left, right)
	ba := Match(right, left)

	assert.Equal(t, ab.Keys(), ba.Keys())
	assert.Equal(t, ab.UnmatchedLeft, ba.UnmatchedRight)
	assert.Equal(t, ab.UnmatchedRight, ba.UnmatchedLeft)
}

func TestMatch_Disjoint(t *testing.T) {
	result := Match(entries(identities, "a", "b"), entries(departed, "c"))

	assert.Empty(t, result.Pairs)
	assert.Empty(t, result.Keys())
	assert.Equal(t, []models.MatchKey{"a", "b"}, result.UnmatchedLeft)
	assert.Equal(t, []models.MatchKey{"c"}, result.UnmatchedRight)
}

func TestMatch_Empty(t *testing.T) {
	result := Match(nil, entries(departed, "a"))
	assert.Empty(t, result.Pairs)
	assert.Equal(t, []models.MatchKey{"a"}, result.UnmatchedRight)
}

func TestMatch_DuplicateKeepsFirstByName(t *testing.T) {
	left := []scan.Entry{
		{Name: "b.csv", Key: "k"},
		{Name: "a.csv", Key: "k"},
	}
	result := Match(left, []scan.Entry{{Name: "k.csv", Key: "k"}})

	require.Len(t, result.Pairs, 1)
	assert.Equal(t, "a.csv", result.Pairs[0].Left.Name)
	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, Duplicate{Side: SideLeft, Key: "k", Kept: "a.csv", Dropped: "b.csv"}, result.Duplicates[0])
}
