package scoring

import (
	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/model"
)

// Scorer evaluates businesses against the configured rule set. Scoring is
// deterministic: the same business snapshot always produces the same score.
type Scorer struct {
	cfg   config.ScoringConfig
	rules []Rule
}

// New creates a Scorer from configuration.
func New(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg, rules: Rules(cfg)}
}

// Score sums the matching rule contributions, clamped to [0, 100], and
// evaluates the qualification gate: minimum rating AND minimum reviews AND
// no real website. Unknown rating or review count fails the gate.
func (s *Scorer) Score(b *model.Business) (score int, qualifies bool) {
	for _, r := range s.rules {
		if r.When(b) {
			score += r.Points
		}
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	qualifies = b.HasRating() && b.RatingValue() >= s.cfg.MinRating &&
		b.HasReviewCount() && b.ReviewCountValue() >= s.cfg.MinReviews &&
		b.WebPresence != model.WebPresenceHasWebsite

	return score, qualifies
}

// Apply scores b in place, setting LeadScore and Qualified.
func (s *Scorer) Apply(b *model.Business) {
	b.LeadScore, b.Qualified = s.Score(b)
}

// Rules exposes the active rule set, mainly for reporting.
func (s *Scorer) Rules() []Rule {
	return s.rules
}
