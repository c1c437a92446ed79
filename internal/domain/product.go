package domain

import (
	"math"
	"time"
)

// Product is a menu item. Price is in minor currency units.
//
// SeedRatingAvg and SeedRatingCount are the immutable rating baseline the
// product was catalogued with; AverageRating and ReviewCount are the displayed
// aggregates derived from the baseline plus real feedback.
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           int64     `json:"price"`
	Available       bool      `json:"available"`
	SeedRatingAvg   float64   `json:"-"`
	SeedRatingCount int       `json:"-"`
	AverageRating   float64   `json:"average_rating"`
	ReviewCount     int       `json:"review_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Round1 rounds a rating to one decimal place for display.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// BlendedRating combines the seed baseline with real feedback mass and
// returns the displayed average and count. With no mass at all it returns
// (0, 0).
func BlendedRating(seedAvg float64, seedCount int, realSum float64, realCount int) (float64, int) {
	totalCount := seedCount + realCount
	if totalCount == 0 {
		return 0, 0
	}
	avg := (seedAvg*float64(seedCount) + realSum) / float64(totalCount)
	return Round1(avg), totalCount
}
