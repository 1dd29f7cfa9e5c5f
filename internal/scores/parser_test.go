package scores_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ttstats/internal/scores"
)

func TestParse(t *testing.T) {
	t.Run("parses a full game and derives the winner", func(t *testing.T) {
		game, diags := scores.Parse("3:11 3:11 8:11 11:8")

		require.Len(t, game.Sets, 4)
		assert.Empty(t, diags)
		assert.Equal(t, 1, game.SetsWonA)
		assert.Equal(t, 3, game.SetsWonB)
		assert.Equal(t, scores.SideB, game.Winner)
		assert.False(t, game.Walkover)
	})

	t.Run("assigns set numbers by parse order", func(t *testing.T) {
		game, _ := scores.Parse("7:11 11:5 12:10")

		require.Len(t, game.Sets, 3)
		for i, set := range game.Sets {
			assert.Equal(t, i+1, set.Number)
		}
		assert.Equal(t, 7, game.Sets[0].PointsA)
		assert.Equal(t, 11, game.Sets[0].PointsB)
	})

	t.Run("treats empty input as a walkover", func(t *testing.T) {
		game, diags := scores.Parse("")

		assert.Empty(t, game.Sets)
		assert.Empty(t, diags)
		assert.Equal(t, scores.SideNone, game.Winner)
		assert.True(t, game.Walkover)
	})

	t.Run("treats whitespace only input as a walkover", func(t *testing.T) {
		game, diags := scores.Parse("   \t ")

		assert.Empty(t, game.Sets)
		assert.Empty(t, diags)
		assert.True(t, game.Walkover)
	})

	t.Run("records a level set as a diagnostic without crashing", func(t *testing.T) {
		game, diags := scores.Parse("11:11")

		require.Len(t, game.Sets, 1)
		assert.Equal(t, 0, game.SetsWonA)
		assert.Equal(t, 0, game.SetsWonB)
		assert.Equal(t, scores.SideNone, game.Winner)
		assert.False(t, game.Walkover)

		require.Len(t, diags, 1)
		assert.Equal(t, scores.ReasonLevelSet, diags[0].Reason)
		assert.Equal(t, "11:11", diags[0].Token)
		assert.Equal(t, 1, diags[0].Position)
	})

	t.Run("skips malformed tokens and keeps the rest", func(t *testing.T) {
		game, diags := scores.Parse("11:9 garbage 9:11 11:7 1:2:3 -1:5")

		require.Len(t, game.Sets, 3)
		assert.Equal(t, 2, game.SetsWonA)
		assert.Equal(t, 1, game.SetsWonB)
		assert.Equal(t, scores.SideA, game.Winner)
		assert.False(t, game.Walkover)

		require.Len(t, diags, 3)
		assert.Equal(t, scores.Diagnostic{Token: "garbage", Position: 2, Reason: scores.ReasonMalformedToken}, diags[0])
		assert.Equal(t, scores.Diagnostic{Token: "1:2:3", Position: 5, Reason: scores.ReasonMalformedToken}, diags[1])
		assert.Equal(t, scores.Diagnostic{Token: "-1:5", Position: 6, Reason: scores.ReasonMalformedToken}, diags[2])
	})

	t.Run("keeps set numbering dense when a middle token is skipped", func(t *testing.T) {
		game, _ := scores.Parse("7:11 x 11:5")

		require.Len(t, game.Sets, 2)
		assert.Equal(t, 1, game.Sets[0].Number)
		assert.Equal(t, 2, game.Sets[1].Number)
	})

	t.Run("flags a walkover when nothing parses", func(t *testing.T) {
		game, diags := scores.Parse("abc def")

		assert.Empty(t, game.Sets)
		assert.Len(t, diags, 2)
		assert.Equal(t, scores.SideNone, game.Winner)
		assert.True(t, game.Walkover)
	})

	t.Run("honors the caller supplied walkover flag", func(t *testing.T) {
		game, diags := scores.Parse("11:9 11:7", true)

		assert.Empty(t, diags)
		require.Len(t, game.Sets, 2)
		assert.Equal(t, scores.SideA, game.Winner)
		assert.True(t, game.Walkover)
	})

	t.Run("is deterministic for the same input", func(t *testing.T) {
		raw := "11:9 x 11:11 8:11 11:13"

		first, firstDiags := scores.Parse(raw)
		second, secondDiags := scores.Parse(raw)

		assert.Equal(t, first, second)
		assert.Equal(t, firstDiags, secondDiags)
	})
}

func TestParseWinner(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		winner scores.Side
	}{
		{"side a sweeps", "11:5 11:7 11:9", scores.SideA},
		{"side b sweeps", "5:11 7:11 9:11", scores.SideB},
		{"side a takes a five setter", "11:9 9:11 11:9 9:11 11:8", scores.SideA},
		{"level sets decide nothing", "11:11 10:10", scores.SideNone},
		{"no sets means no winner", "", scores.SideNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			game, _ := scores.Parse(tc.raw)
			assert.Equal(t, tc.winner, game.Winner)
			assert.Equal(t, game.Winner == scores.SideA, game.SetsWonA > game.SetsWonB)
			assert.Equal(t, game.Winner == scores.SideB, game.SetsWonB > game.SetsWonA)
		})
	}
}
