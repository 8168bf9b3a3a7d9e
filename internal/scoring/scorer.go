// Package scoring ranks catalog places against normalized user interests by
// tag overlap.
package scoring

import (
	"sort"

	"github.com/gorodgid/go-route-planner/internal/textnorm"
	"github.com/gorodgid/go-route-planner/internal/types"
)

// MaxSightseeingCandidates caps the ranked sightseeing list so the greedy
// optimizer stays cheap.
const MaxSightseeingCandidates = 30

// Score adjustments. Scale-model exhibits match many queries but are rarely
// what the user meant; the mosaic tag rides along on lots of art objects and
// would otherwise dominate unrelated searches.
const (
	mockupPenalty = 0.5
	mosaicPenalty = 1.0
)

// Scorer scores places against interests using the shared normalizer, so
// interests and tags meet in the same stemmed-root space.
type Scorer struct {
	normalizer *textnorm.Normalizer

	mockupTag string
	mosaicTag string
	artRoot   string
}

// New builds a Scorer. The adjustment tags are derived through the same
// stemmer that produced the catalog tags.
func New(normalizer *textnorm.Normalizer) *Scorer {
	return &Scorer{
		normalizer: normalizer,
		mockupTag:  textnorm.Stem("макет"),
		mosaicTag:  textnorm.Stem("мозаика"),
		artRoot:    textnorm.Stem("искусство"),
	}
}

type scoredPlace struct {
	place types.Place
	score float64
}

// ScorePlaces ranks the sightseeing catalog against the interest string and
// returns at most MaxSightseeingCandidates places, best first. Ties keep
// catalog order. Empty normalized interests yield no candidates.
func (s *Scorer) ScorePlaces(interests string, places []types.Place) []types.Place {
	normalized := s.normalizer.Normalize(interests)
	if len(normalized) == 0 {
		return nil
	}

	scored := make([]scoredPlace, 0, len(places))
	for _, place := range places {
		tags := place.TagSet()
		score := float64(intersectionSize(normalized, tags))

		if _, ok := tags[s.mockupTag]; ok {
			score -= mockupPenalty
		}
		if _, ok := tags[s.mosaicTag]; ok {
			_, wantsMosaic := normalized[s.mosaicTag]
			_, wantsArt := normalized[s.artRoot]
			if !wantsMosaic && !wantsArt {
				score -= mosaicPenalty
			}
		}

		if score > 0 {
			scored = append(scored, scoredPlace{place: place, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	if len(scored) > MaxSightseeingCandidates {
		scored = scored[:MaxSightseeingCandidates]
	}
	out := make([]types.Place, len(scored))
	for i, sp := range scored {
		out[i] = sp.place
	}
	return out
}

// ScoreFoodPlaces ranks the food catalog against the interest string. An
// empty normalized interest set means "no food preference", so the whole
// catalog comes back unscored. No cap is applied.
func (s *Scorer) ScoreFoodPlaces(interests string, places []types.Place) []types.Place {
	normalized := s.normalizer.Normalize(interests)
	if len(normalized) == 0 {
		out := make([]types.Place, len(places))
		copy(out, places)
		return out
	}

	scored := make([]scoredPlace, 0, len(places))
	for _, place := range places {
		score := float64(intersectionSize(normalized, place.TagSet()))
		if score > 0 {
			scored = append(scored, scoredPlace{place: place, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	out := make([]types.Place, len(scored))
	for i, sp := range scored {
		out[i] = sp.place
	}
	return out
}

func intersectionSize(a map[string]struct{}, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
