package domain

import "time"

type Place struct {
	ID            int64     `db:"id" json:"id"`
	GeonameID     *string   `db:"geoname_id" json:"geonameId,omitempty"`
	City          string    `db:"city" json:"city"`
	Country       string    `db:"country" json:"country"`
	AdminDivision *string   `db:"admin_division" json:"adminDivision,omitempty"`
	PhotoURL      *string   `db:"photo_url" json:"photoUrl,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// PlaceSummary is the slice of a place shown next to a user's own reviews.
type PlaceSummary struct {
	ID            int64   `db:"id" json:"id"`
	City          string  `db:"city" json:"city"`
	Country       string  `db:"country" json:"country"`
	AdminDivision *string `db:"admin_division" json:"adminDivision,omitempty"`
}

// PlaceStatistics is derived from the review set of one place and never stored.
type PlaceStatistics struct {
	ReviewCount   int     `json:"reviewCount"`
	AverageCost   float64 `json:"averageCost"`
	AverageSafety float64 `json:"averageSafety"`
	AverageFun    float64 `json:"averageFun"`
	Score         float64 `json:"score"`
}

type RankedPlace struct {
	Place
	PlaceStatistics
}

// PlaceRollup holds the raw per-place sums the statistics are computed from.
type PlaceRollup struct {
	ReviewCount int   `db:"review_count"`
	SumCost     int64 `db:"sum_cost"`
	SumSafety   int64 `db:"sum_safety"`
	SumFun      int64 `db:"sum_fun"`
}

// The popularity bonus is 0.01 per review, capped at 1.0 (100 reviews).
const popularityBonusCapReviews = 100

// Statistics averages the rollup and derives the score. Everything is done
// in integer tenths so each value is rounded exactly once, half away from
// zero, after averaging; the score uses the unrounded averages.
// ListRanked in the postgres repository orders by the same expression.
func (r PlaceRollup) Statistics() PlaceStatistics {
	if r.ReviewCount <= 0 {
		return PlaceStatistics{}
	}
	n := int64(r.ReviewCount)
	return PlaceStatistics{
		ReviewCount:   r.ReviewCount,
		AverageCost:   tenths(10*r.SumCost, n),
		AverageSafety: tenths(10*r.SumSafety, n),
		AverageFun:    tenths(10*r.SumFun, n),
		Score:         float64(r.ScoreTenths()) / 10,
	}
}

// ScoreTenths is the rounded score times ten:
// (100*total + n*min(n, 100)) / (10*n), rounded half away from zero.
func (r PlaceRollup) ScoreTenths() int64 {
	if r.ReviewCount <= 0 {
		return 0
	}
	n := int64(r.ReviewCount)
	total := r.SumCost + r.SumSafety + r.SumFun
	return roundHalfAway(100*total+n*min(n, popularityBonusCapReviews), 10*n)
}

// tenths rounds num/den to an integer count of tenths and returns it as a
// one-decimal value.
func tenths(num, den int64) float64 {
	return float64(roundHalfAway(num, den)) / 10
}

// roundHalfAway divides num by den (den > 0) rounding half away from zero.
func roundHalfAway(num, den int64) int64 {
	if num < 0 {
		return -((-2*num + den) / (2 * den))
	}
	return (2*num + den) / (2 * den)
}

// GeoLocation is what the geocoding collaborator reports for a location id.
type GeoLocation struct {
	GeonameID     string
	City          string
	Country       string
	AdminDivision string
}

type CitySuggestion struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

type PlaceInput struct {
	City          string  `json:"city" validate:"required,max=200"`
	Country       string  `json:"country" validate:"required,max=200"`
	AdminDivision *string `json:"adminDivision" validate:"omitempty,max=200"`
	PhotoURL      *string `json:"photoUrl" validate:"omitempty,url"`
}
