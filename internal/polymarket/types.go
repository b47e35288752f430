package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// StringList unmarshals fields that Gamma serves either as a JSON array or,
// in older payloads, as a JSON-encoded string containing an array
// (`"[\"0.86\", \"0.14\"]"`).
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var direct []string
	if err := json.Unmarshal(data, &direct); err == nil {
		*s = direct
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	if encoded == "" {
		*s = nil
		return nil
	}
	var nested []string
	if err := json.Unmarshal([]byte(encoded), &nested); err != nil {
		return err
	}
	*s = nested
	return nil
}

// Tag is a Gamma category tag. The API serves both object and bare-string
// forms.
type Tag struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

func (t *Tag) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		t.Slug = plain
		t.Label = plain
		return nil
	}

	type alias Tag
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = Tag(obj)
	return nil
}

// Market is the typed view of a Gamma market. Numeric fields arrive as
// strings, so they are kept as json.Number and exposed through accessors.
type Market struct {
	ConditionID   string      `json:"conditionId"`
	Slug          string      `json:"slug"`
	Question      string      `json:"question"`
	EndDate       string      `json:"endDate"`
	Liquidity     json.Number `json:"liquidity"`
	Volume24h     json.Number `json:"volume24hr"`
	Outcomes      StringList  `json:"outcomes"`
	OutcomePrices StringList  `json:"outcomePrices"`
	ClobTokenIDs  StringList  `json:"clobTokenIds"`
	Tags          []Tag       `json:"tags"`
}

// LiquidityValue returns the market liquidity, zero when absent.
func (m *Market) LiquidityValue() float64 {
	v, err := m.Liquidity.Float64()
	if err != nil {
		return 0
	}
	return v
}

// Volume24hValue returns the 24-hour volume, zero when absent.
func (m *Market) Volume24hValue() float64 {
	v, err := m.Volume24h.Float64()
	if err != nil {
		return 0
	}
	return v
}

// EndTime parses the resolution timestamp. Gamma serves either full RFC 3339
// ("2025-12-31T12:00:00Z") or a bare date. Returns nil when absent or
// unparseable.
func (m *Market) EndTime() *time.Time {
	if m.EndDate == "" {
		return nil
	}
	if strings.Contains(m.EndDate, "T") {
		if t, err := time.Parse(time.RFC3339, m.EndDate); err == nil {
			return &t
		}
		return nil
	}
	if t, err := time.Parse("2006-01-02", m.EndDate); err == nil {
		t = t.UTC()
		return &t
	}
	return nil
}

// Outcome is one tradable side of a market.
type Outcome struct {
	Label       string
	Probability float64
	TokenID     string
}

// LeadingOutcome returns the higher-probability side of a binary market. The
// second return value is false when prices or token IDs are missing.
func (m *Market) LeadingOutcome() (Outcome, bool) {
	if len(m.OutcomePrices) < 2 || len(m.ClobTokenIDs) < 2 {
		return Outcome{}, false
	}

	yesProb, err := strconv.ParseFloat(m.OutcomePrices[0], 64)
	if err != nil {
		return Outcome{}, false
	}
	noProb, err := strconv.ParseFloat(m.OutcomePrices[1], 64)
	if err != nil {
		return Outcome{}, false
	}

	idx := 0
	prob := yesProb
	if noProb > yesProb {
		idx = 1
		prob = noProb
	}

	label := "Yes"
	if idx == 1 {
		label = "No"
	}
	if idx < len(m.Outcomes) && m.Outcomes[idx] != "" {
		label = m.Outcomes[idx]
	}

	if m.ClobTokenIDs[idx] == "" {
		return Outcome{}, false
	}

	return Outcome{
		Label:       label,
		Probability: prob,
		TokenID:     m.ClobTokenIDs[idx],
	}, true
}
