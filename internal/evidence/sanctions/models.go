// Package sanctions screens names against a sanctions/PEP watchlist.
//
// Screening is fail-open: an unreachable provider yields a Screening with
// Status unavailable rather than an error, so callers can still decide on
// the remaining signals while making the gap visible.
package sanctions

import (
	"cmp"
	"slices"
	"strings"

	strutil "kycgate/pkg/string"
)

// DefaultTopK is the number of matches kept when the caller does not say.
const DefaultTopK = 5

// Query identifies the person to screen.
type Query struct {
	Name      string
	BirthDate string // YYYY-MM-DD, optional
}

// Normalized returns the query with whitespace trimmed and folded.
func (q Query) Normalized() Query {
	return Query{
		Name:      strutil.CollapseSpaces(q.Name),
		BirthDate: strings.TrimSpace(q.BirthDate),
	}
}

// Match is one watchlist hit. All fields are optional; a nil Score means the
// provider did not score the hit.
type Match struct {
	ID      *string  `json:"id"`
	Name    *string  `json:"name"`
	Country *string  `json:"country"`
	Dataset *string  `json:"dataset"`
	Schema  *string  `json:"schema"`
	Score   *float64 `json:"score"`
	Link    *string  `json:"link"`
}

// ScoreOrZero returns the match score, treating an unscored hit as 0.
func (m Match) ScoreOrZero() float64 {
	if m.Score == nil {
		return 0
	}
	return *m.Score
}

// Status reports how a screening concluded.
type Status string

const (
	StatusScreened    Status = "screened"
	StatusSkipped     Status = "skipped"
	StatusUnavailable Status = "unavailable"
)

// Screening is the outcome of screening one query.
type Screening struct {
	Status   Status
	Matches  []Match
	CacheHit bool
}

// BestScore returns the score of the top match, or 0 when there is none.
func (s Screening) BestScore() float64 {
	if len(s.Matches) == 0 {
		return 0
	}
	return s.Matches[0].ScoreOrZero()
}

// Rank orders matches by descending score and keeps at most topK of them.
// Unscored matches rank as 0 but keep their nil score. Ties keep provider order.
func Rank(matches []Match, topK int) []Match {
	ranked := slices.Clone(matches)
	slices.SortStableFunc(ranked, func(a, b Match) int {
		return cmp.Compare(b.ScoreOrZero(), a.ScoreOrZero())
	})
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	if ranked == nil {
		ranked = []Match{}
	}
	return ranked
}
