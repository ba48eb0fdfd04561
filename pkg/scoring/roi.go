// Package scoring computes the deterministic financial metrics used by the
// enrichment pipeline. All functions are pure and perform no I/O.
package scoring

import (
	"sort"

	"github.com/cinesage/cinesage-engine/pkg/models"
)

// rollingWindow is the maximum number of chronologically prior releases
// considered when averaging a production company's ROI.
const rollingWindow = 10

// RollingROI returns the average return-on-investment percentage of the
// primary production company's trailing releases, or nil when the metric is
// undefined. nil means "no prior financial history" and must not be
// collapsed into zero, which would read as "broke even".
//
// The primary company is the first entry of the movie's company list. The
// window holds at most the last 10 catalog movies listing a company with the
// same name and released strictly before the target movie. Release dates are
// compared as strings; this is sound only because catalog dates are
// zero-padded ISO (YYYY-MM-DD).
func RollingROI(movie *models.Movie, catalog []*models.Movie) *float64 {
	companies, err := movie.Companies()
	if err != nil || len(companies) == 0 {
		return nil
	}
	primary := companies[0].Name

	var prior []*models.Movie
	for _, candidate := range catalog {
		if candidate.ReleaseDate >= movie.ReleaseDate {
			continue
		}
		others, err := candidate.Companies()
		if err != nil {
			continue
		}
		for _, company := range others {
			if company.Name == primary {
				prior = append(prior, candidate)
				break
			}
		}
	}

	sort.SliceStable(prior, func(i, j int) bool {
		return prior[i].ReleaseDate < prior[j].ReleaseDate
	})
	if len(prior) > rollingWindow {
		prior = prior[len(prior)-rollingWindow:]
	}

	// Movies without positive financials are excluded from the average
	// entirely, not counted as zero.
	var sum float64
	var eligible int
	for _, m := range prior {
		if m.Budget <= 0 || m.Revenue <= 0 {
			continue
		}
		sum += roiPercent(m.Budget, m.Revenue)
		eligible++
	}
	if eligible == 0 {
		return nil
	}

	avg := sum / float64(eligible)
	return &avg
}

func roiPercent(budget, revenue int64) float64 {
	return (float64(revenue) - float64(budget)) / float64(budget) * 100
}
