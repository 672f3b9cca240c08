package sanctions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func score(v float64) *float64 { return &v }

func TestRank(t *testing.T) {
	t.Run("unscored matches sort as zero and stay nil", func(t *testing.T) {
		in := []Match{{Score: nil}, {Score: score(0.3)}, {Score: score(-0.1)}}
		got := Rank(in, 0)

		assert.InDelta(t, 0.3, *got[0].Score, 1e-9)
		assert.Nil(t, got[1].Score)
		assert.InDelta(t, -0.1, *got[2].Score, 1e-9)
	})

	t.Run("does not reorder the input", func(t *testing.T) {
		in := []Match{{Score: score(0.1)}, {Score: score(0.9)}}
		_ = Rank(in, 1)
		assert.InDelta(t, 0.1, *in[0].Score, 1e-9)
	})

	t.Run("empty input yields empty non-nil slice", func(t *testing.T) {
		got := Rank(nil, 5)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestBestScoreUsesTopMatch(t *testing.T) {
	assert.Zero(t, Screening{}.BestScore())
	assert.Zero(t, Screening{Matches: []Match{{}}}.BestScore())
	assert.InDelta(t, 0.95, Screening{Matches: []Match{{Score: score(0.95)}, {Score: score(0.99)}}}.BestScore(), 1e-9)
}

func TestQueryNormalized(t *testing.T) {
	q := Query{Name: "  Jane \t Doe ", BirthDate: " 1980-01-02 "}.Normalized()
	assert.Equal(t, Query{Name: "Jane Doe", BirthDate: "1980-01-02"}, q)
}

func TestCacheKey(t *testing.T) {
	base := CacheKey(Query{Name: "Jane Doe", BirthDate: "1980-01-02"}, 5)

	assert.Contains(t, base, "kyc:sanctions:")
	assert.NotContains(t, base, "Jane")
	assert.Equal(t, base, CacheKey(Query{Name: "JANE DOE", BirthDate: "1980-01-02"}, 5))
	assert.NotEqual(t, base, CacheKey(Query{Name: "Jane Doe"}, 5))
	assert.NotEqual(t, base, CacheKey(Query{Name: "Jane Doe", BirthDate: "1980-01-02"}, 3))
}

func TestProviderErrorClassification(t *testing.T) {
	for category, retryable := range map[ErrorCategory]bool{
		ErrorTimeout:        true,
		ErrorOutage:         true,
		ErrorRateLimited:    true,
		ErrorBadData:        false,
		ErrorAuthentication: false,
		ErrorInternal:       false,
	} {
		err := NewProviderError(category, "p", "msg", nil)
		assert.Equal(t, retryable, IsRetryable(err), category)
		assert.Equal(t, category, CategoryOf(err))
	}
	assert.Equal(t, ErrorInternal, CategoryOf(assert.AnError))
	assert.False(t, IsRetryable(assert.AnError))
}
