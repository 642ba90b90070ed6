package analysis

import (
	"adoptdash/domain/adoption"
	domainStats "adoptdash/domain/stats"
)

// KPIs returns the headline means of the view. Means are NaN for an empty view.
func KPIs(view adoption.View) domainStats.KPIs {
	return domainStats.KPIs{
		Rows:                     view.Len(),
		MeanAdoptionRate:         mean(view.Values(adoption.AdoptionRatePercent)),
		MeanInvestment:           mean(view.Values(adoption.InvestmentMillions)),
		MeanSatisfaction:         mean(view.Values(adoption.AverageSatisfaction)),
		MeanImplementationMonths: mean(view.Values(adoption.ImplementationMonths)),
	}
}
