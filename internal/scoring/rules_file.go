package scoring

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/prospect-cli/internal/config"
)

// fileOverrides mirrors ScoringConfig with pointer fields so a rules file
// can explicitly set a value to zero.
type fileOverrides struct {
	MinRating          *float64 `yaml:"min_rating"`
	MinReviews         *int     `yaml:"min_reviews"`
	RatingPoints       *int     `yaml:"rating_points"`
	ReviewPoints       *int     `yaml:"review_points"`
	BonusRating        *float64 `yaml:"bonus_rating"`
	BonusRatingPoints  *int     `yaml:"bonus_rating_points"`
	BonusReviews       *int     `yaml:"bonus_reviews"`
	BonusReviewsPoints *int     `yaml:"bonus_reviews_points"`
	NoWebsitePoints    *int     `yaml:"no_website_points"`
	SocialOnlyPoints   *int     `yaml:"social_only_points"`
}

// LoadOverrides reads a YAML rules file and applies its values over base.
// Keys absent from the file keep their base values. The result is validated
// before being returned.
func LoadOverrides(path string, base config.ScoringConfig) (config.ScoringConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, eris.Wrapf(err, "scoring: read rules file %s", path)
	}

	// The YAML has a top-level "scoring" key.
	var wrapper struct {
		Scoring fileOverrides `yaml:"scoring"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return base, eris.Wrap(err, "scoring: parse rules file")
	}

	o := wrapper.Scoring
	if o.MinRating != nil {
		base.MinRating = *o.MinRating
	}
	if o.MinReviews != nil {
		base.MinReviews = *o.MinReviews
	}
	if o.RatingPoints != nil {
		base.RatingPoints = *o.RatingPoints
	}
	if o.ReviewPoints != nil {
		base.ReviewPoints = *o.ReviewPoints
	}
	if o.BonusRating != nil {
		base.BonusRating = *o.BonusRating
	}
	if o.BonusRatingPoints != nil {
		base.BonusRatingPoints = *o.BonusRatingPoints
	}
	if o.BonusReviews != nil {
		base.BonusReviews = *o.BonusReviews
	}
	if o.BonusReviewsPoints != nil {
		base.BonusReviewsPoints = *o.BonusReviewsPoints
	}
	if o.NoWebsitePoints != nil {
		base.NoWebsitePoints = *o.NoWebsitePoints
	}
	if o.SocialOnlyPoints != nil {
		base.SocialOnlyPoints = *o.SocialOnlyPoints
	}

	if err := ValidateConfig(base); err != nil {
		return base, err
	}
	return base, nil
}
