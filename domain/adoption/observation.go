package adoption

import (
	"fmt"
	"math"
	"strings"
)

// Attribute names a numeric column of the dataset. The value is the source
// column header, which is the join key shared by loaders, the statistics
// engine and the presentation layer.
type Attribute string

const (
	AdoptingCompanies    Attribute = "Empresas_Adotantes"
	AdoptionRatePercent  Attribute = "Taxa_Adocao_Percent"
	InvestmentMillions   Attribute = "Investimento_Milhoes"
	TrainedProfessionals Attribute = "Profissionais_Treinados"
	AverageSatisfaction  Attribute = "Satisfacao_Media"
	ImplementationMonths Attribute = "Tempo_Implementacao_Meses"
)

// Categorical columns.
const (
	PeriodColumn     = "Periodo"
	TechnologyColumn = "Tecnologia"
)

// NumericAttributes is the fixed, ordered attribute set used for statistics.
var NumericAttributes = []Attribute{
	AdoptingCompanies,
	AdoptionRatePercent,
	InvestmentMillions,
	TrainedProfessionals,
	AverageSatisfaction,
	ImplementationMonths,
}

// integerAttributes hold counts; loaders reject fractional values for them.
var integerAttributes = map[Attribute]bool{
	AdoptingCompanies:    true,
	TrainedProfessionals: true,
}

var attributeLabels = map[Attribute]string{
	AdoptingCompanies:    "Adopting companies",
	AdoptionRatePercent:  "Adoption rate (%)",
	InvestmentMillions:   "Investment (M)",
	TrainedProfessionals: "Trained professionals",
	AverageSatisfaction:  "Average satisfaction",
	ImplementationMonths: "Implementation time (months)",
}

func (a Attribute) String() string { return string(a) }

// Label returns a human readable caption for charts and tables.
func (a Attribute) Label() string {
	if l, ok := attributeLabels[a]; ok {
		return l
	}
	return string(a)
}

// IsNumeric reports whether a belongs to NumericAttributes.
func (a Attribute) IsNumeric() bool {
	_, ok := attributeLabels[a]
	return ok
}

// IsInteger reports whether a is a count column.
func (a Attribute) IsInteger() bool {
	return integerAttributes[a]
}

// ParseAttribute resolves a column name case-insensitively.
func ParseAttribute(s string) (Attribute, error) {
	s = strings.TrimSpace(s)
	for _, a := range NumericAttributes {
		if strings.EqualFold(string(a), s) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown numeric attribute %q", s)
}

// Observation is one row of the dataset. Numeric fields are float64 so that a
// missing cell can be carried as NaN; count columns hold whole numbers.
type Observation struct {
	Period               string  `json:"period" db:"period"`
	Technology           string  `json:"technology" db:"technology"`
	AdoptingCompanies    float64 `json:"adopting_companies" db:"adopting_companies"`
	AdoptionRatePercent  float64 `json:"adoption_rate_percent" db:"adoption_rate_percent"`
	InvestmentMillions   float64 `json:"investment_millions" db:"investment_millions"`
	TrainedProfessionals float64 `json:"trained_professionals" db:"trained_professionals"`
	AverageSatisfaction  float64 `json:"average_satisfaction" db:"average_satisfaction"`
	ImplementationMonths float64 `json:"implementation_months" db:"implementation_months"`
}

// Value returns the numeric field named by attr. Unknown attributes yield NaN.
func (o Observation) Value(attr Attribute) float64 {
	switch attr {
	case AdoptingCompanies:
		return o.AdoptingCompanies
	case AdoptionRatePercent:
		return o.AdoptionRatePercent
	case InvestmentMillions:
		return o.InvestmentMillions
	case TrainedProfessionals:
		return o.TrainedProfessionals
	case AverageSatisfaction:
		return o.AverageSatisfaction
	case ImplementationMonths:
		return o.ImplementationMonths
	default:
		return math.NaN()
	}
}

// Set assigns the numeric field named by attr.
func (o *Observation) Set(attr Attribute, v float64) error {
	switch attr {
	case AdoptingCompanies:
		o.AdoptingCompanies = v
	case AdoptionRatePercent:
		o.AdoptionRatePercent = v
	case InvestmentMillions:
		o.InvestmentMillions = v
	case TrainedProfessionals:
		o.TrainedProfessionals = v
	case AverageSatisfaction:
		o.AverageSatisfaction = v
	case ImplementationMonths:
		o.ImplementationMonths = v
	default:
		return fmt.Errorf("unknown numeric attribute %q", attr)
	}
	return nil
}
