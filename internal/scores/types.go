package scores

// Side identifies one of the two sides of a game.
type Side string

const (
	// SideA is the first-listed (home) side.
	SideA Side = "A"
	// SideB is the second-listed (away) side.
	SideB Side = "B"
	// SideNone marks a game whose winner cannot be determined.
	SideNone Side = "NONE"
)

// SetResult holds the points of one set. Number is assigned by parse
// order starting at 1, regardless of any numbering in the source text.
type SetResult struct {
	Number  int `json:"number"`
	PointsA int `json:"points_a"`
	PointsB int `json:"points_b"`
}

// Game is the parsed form of a raw score string.
type Game struct {
	Sets     []SetResult `json:"sets"`
	SetsWonA int         `json:"sets_won_a"`
	SetsWonB int         `json:"sets_won_b"`
	Winner   Side        `json:"winner"`
	Walkover bool        `json:"walkover"`
}

// DiagnosticReason classifies why a token was flagged during parsing.
type DiagnosticReason string

const (
	// ReasonMalformedToken marks a token that does not parse as "int:int".
	ReasonMalformedToken DiagnosticReason = "MALFORMED_TOKEN"
	// ReasonLevelSet marks a set recorded with equal points on both sides.
	ReasonLevelSet DiagnosticReason = "LEVEL_SET"
)

// Diagnostic describes one token the parser could not fully accept.
// Position is the 1-based position of the token in the input.
type Diagnostic struct {
	Token    string           `json:"token"`
	Position int              `json:"position"`
	Reason   DiagnosticReason `json:"reason"`
}
