// Package grounding tracks how much of a generated answer rests on retrieved data.
package grounding

import (
	"fmt"
	"math"
	"strings"
)

// Risk is the categorical hallucination risk of an answer
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Tracker accumulates data points, missing data and ungrounded claims for one
// request. Confidence and risk are recomputed after every mutation.
// A Tracker is owned by a single request and is not safe for concurrent use.
type Tracker struct {
	dataUsed         []string
	dataMissing      []string
	ungroundedClaims []string
	confidence       float64
	risk             Risk
}

// NewTracker returns an empty tracker with the neutral prior (0.5, low)
func NewTracker() *Tracker {
	t := &Tracker{}
	t.recalculate()
	return t
}

// RecordDataPoint appends "label: value". A nil value is ignored.
func (t *Tracker) RecordDataPoint(label string, value interface{}) {
	if value == nil {
		return
	}
	t.dataUsed = append(t.dataUsed, label+": "+FormatValue(value))
	t.recalculate()
}

// RecordMissing appends description unless it is already recorded verbatim
func (t *Tracker) RecordMissing(description string) {
	for _, existing := range t.dataMissing {
		if existing == description {
			return
		}
	}
	t.dataMissing = append(t.dataMissing, description)
	t.recalculate()
}

// RecordUngroundedClaim appends claim and forces the risk to high
func (t *Tracker) RecordUngroundedClaim(claim string) {
	t.ungroundedClaims = append(t.ungroundedClaims, claim)
	t.recalculate()
}

// Confidence returns the current confidence in [0, 1]
func (t *Tracker) Confidence() float64 {
	return t.confidence
}

// Risk returns the current hallucination risk
func (t *Tracker) Risk() Risk {
	return t.risk
}

// DataUsed returns a copy of the recorded data points
func (t *Tracker) DataUsed() []string {
	return append([]string(nil), t.dataUsed...)
}

// DataMissing returns a copy of the recorded missing data descriptions
func (t *Tracker) DataMissing() []string {
	return append([]string(nil), t.dataMissing...)
}

// UngroundedClaims returns a copy of the recorded claims
func (t *Tracker) UngroundedClaims() []string {
	return append([]string(nil), t.ungroundedClaims...)
}

// recalculate derives confidence and risk from the current sequences.
// An ungrounded claim pins the result to 0.2/high whatever else was recorded.
func (t *Tracker) recalculate() {
	used := len(t.dataUsed)
	missing := len(t.dataMissing)

	switch {
	case len(t.ungroundedClaims) > 0:
		t.confidence, t.risk = 0.2, RiskHigh
	case used == 0 && missing == 0:
		t.confidence, t.risk = 0.5, RiskLow
	case used == 0:
		t.confidence, t.risk = 0.0, RiskHigh
	default:
		t.confidence = math.Round(float64(used)/float64(used+missing)*100) / 100
		switch {
		case t.confidence >= 0.8:
			t.risk = RiskLow
		case t.confidence >= 0.5:
			t.risk = RiskMedium
		default:
			t.risk = RiskHigh
		}
	}
}

// Snapshot is the serializable view of a tracker
type Snapshot struct {
	DataUsed          []string `json:"data_used"`
	DataMissing       []string `json:"data_missing"`
	UngroundedClaims  []string `json:"ungrounded_claims"`
	Confidence        float64  `json:"confidence"`
	HallucinationRisk Risk     `json:"hallucination_risk"`
	DataPointsCount   int      `json:"data_points_count"`
	MissingCount      int      `json:"missing_count"`
}

// Snapshot returns the current state. Sequences are never nil so they encode as [].
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		DataUsed:          nonNil(t.dataUsed),
		DataMissing:       nonNil(t.dataMissing),
		UngroundedClaims:  nonNil(t.ungroundedClaims),
		Confidence:        t.confidence,
		HallucinationRisk: t.risk,
		DataPointsCount:   len(t.dataUsed),
		MissingCount:      len(t.dataMissing),
	}
}

func nonNil(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// FormatValue renders a data point value. Numbers above one billion are shown
// as "1.2B", above one million as "3.4M", any other number with two decimals.
func FormatValue(value interface{}) string {
	if f, ok := asFloat(value); ok {
		switch {
		case f > 1e9:
			return fmt.Sprintf("%.1fB", f/1e9)
		case f > 1e6:
			return fmt.Sprintf("%.1fM", f/1e6)
		default:
			return fmt.Sprintf("%.2f", f)
		}
	}
	if s, ok := value.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", value)
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

type questionRule struct {
	keywords    []string
	description string
}

// questionRules flag questions that ask for data an FAQ corpus cannot hold
var questionRules = []questionRule{
	{keywords: []string{"historical", "history", "historisch", "geschichte", "entwicklung"}, description: "historical data requested"},
	{keywords: []string{"forecast", "prediction", "future", "prognose", "vorhersage", "zukunft"}, description: "forecast requested (not available)"},
}

// CheckQuestion records missing data entries for questions asking for
// historical or forward-looking information.
func (t *Tracker) CheckQuestion(question string) {
	lower := strings.ToLower(question)
	for _, rule := range questionRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				t.RecordMissing(rule.description)
				break
			}
		}
	}
}
