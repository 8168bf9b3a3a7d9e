// Package catalog loads and serves the immutable place collections and the
// lookup tables prepared by the offline data pipeline. A missing or broken
// source file leaves the affected collection empty; the store itself never
// fails to construct, downstream code treats empty collections as "no
// candidates available".
package catalog

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"

	"github.com/gorodgid/go-route-planner/internal/types"
)

// Files names the JSON sources the store reads at construction.
type Files struct {
	Places            string
	FoodPlaces        string
	Synonyms          string
	FoodSynonyms      string
	CategoryTimes     string
	FoodCategoryTimes string
	FoodCategories    string
}

// Store holds the two place catalogs and the category lookup tables.
// Everything is loaded once and read-only afterwards, so concurrent readers
// need no locking.
type Store struct {
	logger *slog.Logger

	places     []types.Place
	foodPlaces []types.Place
	byID       map[int]types.Place
	foodIDs    map[int]struct{}

	synonyms       map[string]string
	foodKeywords   map[string]struct{}
	categoryTimes  map[string]int
	foodCategories map[string][]string
}

// Load reads all catalog sources. Each source is independent: one broken
// file empties only its own collection.
func Load(files Files, logger *slog.Logger) *Store {
	s := &Store{
		logger:         logger,
		byID:           make(map[int]types.Place),
		foodIDs:        make(map[int]struct{}),
		synonyms:       make(map[string]string),
		foodKeywords:   make(map[string]struct{}),
		categoryTimes:  make(map[string]int),
		foodCategories: make(map[string][]string),
	}

	loadJSON(logger, files.Places, "places", &s.places)
	loadJSON(logger, files.FoodPlaces, "food places", &s.foodPlaces)

	var synonyms map[string]string
	loadJSON(logger, files.Synonyms, "synonyms", &synonyms)
	for k, v := range synonyms {
		s.synonyms[k] = v
	}

	var foodSynonyms map[string]string
	loadJSON(logger, files.FoodSynonyms, "food synonyms", &foodSynonyms)
	for k, v := range foodSynonyms {
		s.synonyms[k] = v
		s.foodKeywords[k] = struct{}{}
	}

	var categoryTimes map[string]int
	loadJSON(logger, files.CategoryTimes, "category times", &categoryTimes)
	for k, v := range categoryTimes {
		s.categoryTimes[k] = v
	}

	var foodCategoryTimes map[string]int
	loadJSON(logger, files.FoodCategoryTimes, "food category times", &foodCategoryTimes)
	for k, v := range foodCategoryTimes {
		s.categoryTimes[k] = v
	}

	var foodCategories map[string][]string
	loadJSON(logger, files.FoodCategories, "food categories", &foodCategories)
	for k, v := range foodCategories {
		s.foodCategories[k] = v
	}

	for _, p := range s.places {
		s.byID[p.ID] = p
	}
	for _, p := range s.foodPlaces {
		s.byID[p.ID] = p
		s.foodIDs[p.ID] = struct{}{}
	}

	logger.Info("catalog loaded",
		slog.Int("places", len(s.places)),
		slog.Int("food_places", len(s.foodPlaces)),
		slog.Int("synonyms", len(s.synonyms)),
		slog.Int("food_keywords", len(s.foodKeywords)))
	return s
}

func loadJSON(logger *slog.Logger, path, name string, dst any) {
	if path == "" {
		logger.Error("catalog source not configured, collection stays empty", slog.String("source", name))
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read catalog source, collection stays empty",
			slog.String("source", name), slog.String("path", path), slog.Any("error", err))
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Error("failed to decode catalog source, collection stays empty",
			slog.String("source", name), slog.String("path", path), slog.Any("error", err))
	}
}

// Places returns a copy of the sightseeing catalog in load order. Callers
// may reorder or shrink the returned slice freely.
func (s *Store) Places() []types.Place {
	out := make([]types.Place, len(s.places))
	copy(out, s.places)
	return out
}

// FoodPlaces returns a copy of the food catalog in load order.
func (s *Store) FoodPlaces() []types.Place {
	out := make([]types.Place, len(s.foodPlaces))
	copy(out, s.foodPlaces)
	return out
}

// HasPlaces reports whether the sightseeing catalog loaded at all.
func (s *Store) HasPlaces() bool {
	return len(s.places) > 0
}

// PlaceByID looks a place up across both catalogs.
func (s *Store) PlaceByID(id int) (types.Place, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// IsFoodPlace reports whether the id belongs to the food catalog. Catalog
// membership is fixed at load time.
func (s *Store) IsFoodPlace(id int) bool {
	_, ok := s.foodIDs[id]
	return ok
}

// SightseeingView restricts place lookups to the sightseeing catalog. The
// embedding index covers sightseeing places only; resolving fallback hits
// through this view keeps food venues out of the sightseeing candidate pool,
// where the optimizer could pick them a second time from the food pool.
type SightseeingView struct {
	s *Store
}

// Sightseeing returns the lookup view over the sightseeing catalog only.
func (s *Store) Sightseeing() SightseeingView {
	return SightseeingView{s: s}
}

// PlaceByID resolves an id within the sightseeing catalog; food place ids
// report not-found.
func (v SightseeingView) PlaceByID(id int) (types.Place, bool) {
	if _, food := v.s.foodIDs[id]; food {
		return types.Place{}, false
	}
	p, ok := v.s.byID[id]
	return p, ok
}

// Synonyms returns the merged stemmed-word -> root map (sightseeing plus
// food synonyms). The caller must treat it as read-only.
func (s *Store) Synonyms() map[string]string {
	return s.synonyms
}

// FoodKeywords returns the key set of the food synonym map, used to detect
// explicit food requests in normalized interests.
func (s *Store) FoodKeywords() map[string]struct{} {
	return s.foodKeywords
}

// VisitMinutes resolves the visit duration for a place: its own estimate if
// present, the category default otherwise, def as the last resort.
func (s *Store) VisitMinutes(p types.Place, def int) int {
	if p.EstimatedVisitMinutes > 0 {
		return p.EstimatedVisitMinutes
	}
	if m, ok := s.categoryTimes[strconv.Itoa(p.CategoryID)]; ok && m > 0 {
		return m
	}
	return def
}

// FoodCategoryName returns the display name for a food category id, empty
// when the table has no entry.
func (s *Store) FoodCategoryName(categoryID int) string {
	names := s.foodCategories[strconv.Itoa(categoryID)]
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
