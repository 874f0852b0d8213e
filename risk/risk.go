// Package risk holds the risk entries fed to the matrix exporter and the
// normalization applied to the AI service payload.
package risk

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/wudi/riskmatrix/scale"
)

// Defaults applied when the AI service omits a level.
const (
	DefaultProbability = "Média"
	DefaultImpact      = "Médio"
)

var ErrMissingField = goerr.New("required risk field is empty")

// Risk is one entry of the matrix. Probability and Impact keep the text the
// producer sent; classification happens at distribution time.
type Risk struct {
	Description string `json:"risk_description"`
	Probability string `json:"probability"`
	Impact      string `json:"impact"`
	Mitigation  string `json:"mitigation_measure"`
}

// New trims every field, rejects an empty description or mitigation and
// defaults blank levels.
func New(description, probability, impact, mitigation string) (Risk, error) {
	r := Risk{
		Description: strings.TrimSpace(description),
		Probability: strings.TrimSpace(probability),
		Impact:      strings.TrimSpace(impact),
		Mitigation:  strings.TrimSpace(mitigation),
	}
	if r.Description == "" {
		return Risk{}, goerr.Wrap(ErrMissingField, "risk without description", goerr.V("field", "risk_description"))
	}
	if r.Mitigation == "" {
		return Risk{}, goerr.Wrap(ErrMissingField, "risk without mitigation", goerr.V("field", "mitigation_measure"), goerr.V("description", r.Description))
	}
	if r.Probability == "" {
		r.Probability = DefaultProbability
	}
	if r.Impact == "" {
		r.Impact = DefaultImpact
	}
	return r, nil
}

func (r Risk) ProbabilityLevel() scale.Probability { return scale.ClassifyProbability(r.Probability) }
func (r Risk) ImpactLevel() scale.Impact           { return scale.ClassifyImpact(r.Impact) }

// ProbabilityLabel and ImpactLabel are the texts shown in the listing.
func (r Risk) ProbabilityLabel() string { return scale.FormatProbabilityLabel(r.Probability) }
func (r Risk) ImpactLabel() string      { return scale.FormatImpactLabel(r.Impact) }
