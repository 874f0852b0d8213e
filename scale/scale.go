// Package scale classifies free-text probability and impact labels onto the
// three-level ordinal scale used by the risk matrix.
package scale

// Probability is a grid row. Rows run from the most to the least likely.
type Probability int

const (
	ProbabilityHigh Probability = iota
	ProbabilityMedium
	ProbabilityLow
)

// Impact is a grid column. Columns run from the mildest to the most severe.
type Impact int

const (
	ImpactLow Impact = iota
	ImpactMedium
	ImpactHigh
)

// ProbabilityLevels and ImpactLevels list the levels in grid order.
var (
	ProbabilityLevels = [3]Probability{ProbabilityHigh, ProbabilityMedium, ProbabilityLow}
	ImpactLevels      = [3]Impact{ImpactLow, ImpactMedium, ImpactHigh}
)

var probabilityLabels = [3]string{"Alta", "Média", "Baixa"}
var impactLabels = [3]string{"Baixo", "Médio", "Alto"}

// Index is the row index of p in the grid.
func (p Probability) Index() int { return int(p) }

// Label returns the canonical accented Portuguese label.
func (p Probability) Label() string {
	if p < ProbabilityHigh || p > ProbabilityLow {
		return probabilityLabels[ProbabilityMedium]
	}
	return probabilityLabels[p]
}

func (p Probability) String() string {
	switch p {
	case ProbabilityHigh:
		return "high"
	case ProbabilityLow:
		return "low"
	default:
		return "medium"
	}
}

// Index is the column index of i in the grid.
func (i Impact) Index() int { return int(i) }

// Label returns the canonical accented Portuguese label.
func (i Impact) Label() string {
	if i < ImpactLow || i > ImpactHigh {
		return impactLabels[ImpactMedium]
	}
	return impactLabels[i]
}

func (i Impact) String() string {
	switch i {
	case ImpactHigh:
		return "high"
	case ImpactLow:
		return "low"
	default:
		return "medium"
	}
}

// Synonym tables are keyed by folded text (see fold). Groups overlap on
// purpose: "baixo" is a low probability even though it is the masculine form.
var probabilitySynonyms = map[string]Probability{
	"alta":       ProbabilityHigh,
	"high":       ProbabilityHigh,
	"elevada":    ProbabilityHigh,
	"muito alta": ProbabilityHigh,
	"media":      ProbabilityMedium,
	"medio":      ProbabilityMedium,
	"medium":     ProbabilityMedium,
	"moderada":   ProbabilityMedium,
	"regular":    ProbabilityMedium,
	"baixa":      ProbabilityLow,
	"baixo":      ProbabilityLow,
	"low":        ProbabilityLow,
	"reduzida":   ProbabilityLow,
}

var impactSynonyms = map[string]Impact{
	"alto":     ImpactHigh,
	"alta":     ImpactHigh,
	"high":     ImpactHigh,
	"elevado":  ImpactHigh,
	"critico":  ImpactHigh,
	"grave":    ImpactHigh,
	"medio":    ImpactMedium,
	"media":    ImpactMedium,
	"medium":   ImpactMedium,
	"moderado": ImpactMedium,
	"moderada": ImpactMedium,
	"regular":  ImpactMedium,
	"baixo":    ImpactLow,
	"baixa":    ImpactLow,
	"low":      ImpactLow,
	"reduzido": ImpactLow,
	"reduzida": ImpactLow,
}

// LookupProbability reports the level raw names, if any synonym matches.
func LookupProbability(raw string) (Probability, bool) {
	p, ok := probabilitySynonyms[fold(raw)]
	return p, ok
}

// LookupImpact reports the level raw names, if any synonym matches.
func LookupImpact(raw string) (Impact, bool) {
	i, ok := impactSynonyms[fold(raw)]
	return i, ok
}

// ClassifyProbability is total: unknown or empty text is Medium.
func ClassifyProbability(raw string) Probability {
	if p, ok := LookupProbability(raw); ok {
		return p
	}
	return ProbabilityMedium
}

// ClassifyImpact is total: unknown or empty text is Medium.
func ClassifyImpact(raw string) Impact {
	if i, ok := LookupImpact(raw); ok {
		return i
	}
	return ImpactMedium
}

// FormatProbabilityLabel renders raw for display: recognised synonyms become
// the canonical label, anything else is shown capitalised as written.
func FormatProbabilityLabel(raw string) string {
	if p, ok := LookupProbability(raw); ok {
		return p.Label()
	}
	return capitalize(raw)
}

// FormatImpactLabel is FormatProbabilityLabel for the impact axis.
func FormatImpactLabel(raw string) string {
	if i, ok := LookupImpact(raw); ok {
		return i.Label()
	}
	return capitalize(raw)
}
