// Package scoring implements lead qualification and 0-100 lead scoring.
package scoring

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/model"
)

// DefaultConfig returns the stock rule configuration.
func DefaultConfig() config.ScoringConfig {
	return config.ScoringConfig{
		MinRating:  4.0,
		MinReviews: 20,

		RatingPoints: 20,
		ReviewPoints: 20,

		BonusRating:       4.5,
		BonusRatingPoints: 15,

		BonusReviews:       100,
		BonusReviewsPoints: 20,

		NoWebsitePoints:  25,
		SocialOnlyPoints: 15,
	}
}

// Rule is a named scoring predicate with a point value. Rules are pure
// functions over a Business snapshot, so the rule set can be tested without
// any orchestration.
type Rule struct {
	Name   string
	Points int
	When   func(b *model.Business) bool
}

// Rules builds the rule set from configuration. Unknown rating or review
// count fails every threshold check: a business cannot earn points on
// missing data.
func Rules(cfg config.ScoringConfig) []Rule {
	return []Rule{
		{
			Name:   "base_rating",
			Points: cfg.RatingPoints,
			When: func(b *model.Business) bool {
				return b.HasRating() && b.RatingValue() >= cfg.MinRating
			},
		},
		{
			Name:   "base_reviews",
			Points: cfg.ReviewPoints,
			When: func(b *model.Business) bool {
				return b.HasReviewCount() && b.ReviewCountValue() >= cfg.MinReviews
			},
		},
		{
			Name:   "rating_bonus",
			Points: cfg.BonusRatingPoints,
			When: func(b *model.Business) bool {
				return b.HasRating() && b.RatingValue() >= cfg.BonusRating
			},
		},
		{
			Name:   "review_bonus",
			Points: cfg.BonusReviewsPoints,
			When: func(b *model.Business) bool {
				return b.HasReviewCount() && b.ReviewCountValue() >= cfg.BonusReviews
			},
		},
		{
			Name:   "no_website",
			Points: cfg.NoWebsitePoints,
			When: func(b *model.Business) bool {
				return b.WebPresence == model.WebPresenceNone
			},
		},
		{
			Name:   "social_only",
			Points: cfg.SocialOnlyPoints,
			When: func(b *model.Business) bool {
				return b.WebPresence == model.WebPresenceSocialOnly
			},
		},
	}
}

// ValidateConfig checks that a ScoringConfig is internally consistent.
func ValidateConfig(cfg config.ScoringConfig) error {
	var errs []string

	points := map[string]int{
		"rating_points":        cfg.RatingPoints,
		"review_points":        cfg.ReviewPoints,
		"bonus_rating_points":  cfg.BonusRatingPoints,
		"bonus_reviews_points": cfg.BonusReviewsPoints,
		"no_website_points":    cfg.NoWebsitePoints,
		"social_only_points":   cfg.SocialOnlyPoints,
	}
	for name, p := range points {
		if p < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	if cfg.MinRating < 0 || cfg.MinRating > 5 {
		errs = append(errs, "min_rating must be between 0 and 5")
	}
	if cfg.BonusRating < 0 || cfg.BonusRating > 5 {
		errs = append(errs, "bonus_rating must be between 0 and 5")
	}
	if cfg.MinReviews < 0 {
		errs = append(errs, "min_reviews must be >= 0")
	}
	if cfg.BonusReviews < 0 {
		errs = append(errs, "bonus_reviews must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
