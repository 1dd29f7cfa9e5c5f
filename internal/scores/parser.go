package scores

import (
	"strconv"
	"strings"
)

// Parse converts a raw delimited score string like "11:9 8:11 11:7" into
// a Game. Tokens that do not parse as "int:int" are skipped and reported
// as diagnostics rather than aborting the rest of the input, since the
// upstream data carries trailing garbage and partial entries. A set with
// equal points stays in Sets but counts for neither side. The optional
// walkover argument lets a caller force the walkover flag when the
// source marks one explicitly; otherwise a game with zero parsed sets is
// treated as a walkover.
func Parse(raw string, walkover ...bool) (Game, []Diagnostic) {
	var (
		game  Game
		diags []Diagnostic
	)
	for i, token := range strings.Fields(raw) {
		pointsA, pointsB, ok := parseSetToken(token)
		if !ok {
			diags = append(diags, Diagnostic{Token: token, Position: i + 1, Reason: ReasonMalformedToken})
			continue
		}
		game.Sets = append(game.Sets, SetResult{
			Number:  len(game.Sets) + 1,
			PointsA: pointsA,
			PointsB: pointsB,
		})
		switch {
		case pointsA > pointsB:
			game.SetsWonA++
		case pointsB > pointsA:
			game.SetsWonB++
		default:
			diags = append(diags, Diagnostic{Token: token, Position: i + 1, Reason: ReasonLevelSet})
		}
	}

	switch {
	case game.SetsWonA > game.SetsWonB:
		game.Winner = SideA
	case game.SetsWonB > game.SetsWonA:
		game.Winner = SideB
	default:
		game.Winner = SideNone
	}

	game.Walkover = len(game.Sets) == 0
	if len(walkover) > 0 && walkover[0] {
		game.Walkover = true
	}
	return game, diags
}

// parseSetToken splits a token into its two point values. The token must
// contain exactly one ":" with a non-negative integer on each side.
func parseSetToken(token string) (int, int, bool) {
	left, right, found := strings.Cut(token, ":")
	if !found || strings.Contains(right, ":") {
		return 0, 0, false
	}
	pointsA, err := strconv.Atoi(left)
	if err != nil || pointsA < 0 {
		return 0, 0, false
	}
	pointsB, err := strconv.Atoi(right)
	if err != nil || pointsB < 0 {
		return 0, 0, false
	}
	return pointsA, pointsB, true
}
