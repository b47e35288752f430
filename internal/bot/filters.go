package bot

import (
	"strings"

	"github.com/izowooi/golden-burger/internal/polymarket"
)

// sportsKeywords catches sports markets whose tags are missing or
// incomplete. Matched as substrings against the question and slug.
var sportsKeywords = []string{
	"nba", "nfl", "mlb", "nhl", "mls", "fifa", "uefa", "atp", "wta",
	"premier league", "la liga", "serie a", "bundesliga", "champions league",
	"world cup", "super bowl", "olympics",
	"basketball", "football", "soccer", "baseball", "hockey", "tennis",
	"golf", "boxing", "ufc", "mma", "cricket", "rugby", "f1", "nascar",
	"playoff", "touchdown", "home run",
}

// isExcludedMarket reports whether a market belongs to an excluded category,
// by tag match first and then by keyword containment in question and slug.
// An empty exclusion list disables the filter entirely.
func isExcludedMarket(m *polymarket.Market, excludedCategories []string) bool {
	if len(excludedCategories) == 0 {
		return false
	}

	for _, tag := range m.Tags {
		for _, cat := range excludedCategories {
			if strings.EqualFold(tag.Slug, cat) || strings.EqualFold(tag.Label, cat) {
				return true
			}
		}
	}

	text := strings.ToLower(m.Question + " " + m.Slug)
	for _, cat := range excludedCategories {
		if strings.Contains(text, strings.ToLower(cat)) {
			return true
		}
	}
	for _, kw := range sportsKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
