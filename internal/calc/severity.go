package calc

import (
	"math"
	"sort"

	"github.com/alexanderramin/taskup/internal/domain"
)

// Severity is probability × impact rounded to two decimals.
func Severity(probability float64, impact int) float64 {
	return math.Round(probability*float64(impact)*100) / 100
}

// ValidateRiskInputs checks probability ∈ [0,1] and impact ∈ [1,10].
func ValidateRiskInputs(probability float64, impact int) error {
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return domain.Invalidf("probability must be between 0 and 1, got %g", probability)
	}
	if impact < domain.MinImpact || impact > domain.MaxImpact {
		return domain.Invalidf("impact must be between %d and %d, got %d", domain.MinImpact, domain.MaxImpact, impact)
	}
	return nil
}

type threshold struct {
	min   float64
	level domain.RiskLevel
}

// SeverityScale buckets a numeric severity into a qualitative level.
type SeverityScale struct {
	Name       string
	thresholds []threshold // descending by min
	floor      domain.RiskLevel
}

var (
	// DetailScale: >=7 Critical, >=5 High, >=3 Medium, else Low.
	DetailScale = SeverityScale{
		Name: "detail",
		thresholds: []threshold{
			{7, domain.RiskCritical},
			{5, domain.RiskHigh},
			{3, domain.RiskMedium},
		},
		floor: domain.RiskLow,
	}
	// EditScale: >=7 High, >=4 Medium, else Low.
	EditScale = SeverityScale{
		Name: "edit",
		thresholds: []threshold{
			{7, domain.RiskHigh},
			{4, domain.RiskMedium},
		},
		floor: domain.RiskLow,
	}
)

// DefaultScale is used when no scale is configured.
var DefaultScale = DetailScale

var scales = map[string]SeverityScale{
	DetailScale.Name: DetailScale,
	EditScale.Name:   EditScale,
}

// ScaleByName resolves a configured scale name. Empty selects DefaultScale.
func ScaleByName(name string) (SeverityScale, error) {
	if name == "" {
		return DefaultScale, nil
	}
	s, ok := scales[name]
	if !ok {
		return SeverityScale{}, domain.Invalidf("unknown severity scale %q (valid: %v)", name, ScaleNames())
	}
	return s, nil
}

func ScaleNames() []string {
	names := make([]string, 0, len(scales))
	for n := range scales {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s SeverityScale) Level(severity float64) domain.RiskLevel {
	for _, t := range s.thresholds {
		if severity >= t.min {
			return t.level
		}
	}
	return s.floor
}

// Levels lists the scale's levels from most to least severe.
func (s SeverityScale) Levels() []domain.RiskLevel {
	out := make([]domain.RiskLevel, 0, len(s.thresholds)+1)
	for _, t := range s.thresholds {
		out = append(out, t.level)
	}
	return append(out, s.floor)
}

// Assessment is the outcome of scoring one probability/impact pair.
type Assessment struct {
	Severity float64          `json:"severity"`
	Level    domain.RiskLevel `json:"level"`
	Scale    string           `json:"scale"`
}

// Assess validates the inputs and scores them on the scale.
func (s SeverityScale) Assess(probability float64, impact int) (Assessment, error) {
	if err := ValidateRiskInputs(probability, impact); err != nil {
		return Assessment{}, err
	}
	sev := Severity(probability, impact)
	return Assessment{Severity: sev, Level: s.Level(sev), Scale: s.Name}, nil
}

// LevelRank orders levels for sorting (lower = more severe).
func LevelRank(l domain.RiskLevel) int {
	switch l {
	case domain.RiskCritical:
		return 0
	case domain.RiskHigh:
		return 1
	case domain.RiskMedium:
		return 2
	default:
		return 3
	}
}

// RiskSummary counts open risks per level of one scale.
type RiskSummary struct {
	Open        int                      `json:"open"`
	ByLevel     map[domain.RiskLevel]int `json:"by_level"`
	MaxSeverity float64                  `json:"max_severity"`
}

// SummarizeRisks buckets each open risk's severity on scale. The level
// stored with a risk reflects the scale in force when it was written and is
// ignored here.
func SummarizeRisks(risks []*domain.Risk, scale SeverityScale) RiskSummary {
	sum := RiskSummary{ByLevel: map[domain.RiskLevel]int{}}
	for _, r := range risks {
		if r.Status != domain.RiskOpen {
			continue
		}
		sum.Open++
		sum.ByLevel[scale.Level(r.Severity)]++
		if r.Severity > sum.MaxSeverity {
			sum.MaxSeverity = r.Severity
		}
	}
	return sum
}
