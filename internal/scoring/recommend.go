package scoring

import (
	"cmp"
	"slices"
)

const (
	// MinRecommendationScore is the lowest match score a recommended job may have
	MinRecommendationScore = 60
	// MaxRecommendations caps the recommendation list
	MaxRecommendations = 5
)

// CatalogJob is a job the candidate could be pointed to
type CatalogJob struct {
	JobID          string
	Title          string
	RequiredSkills []string
}

// Recommendation is a catalog job that cleared MinRecommendationScore
type Recommendation struct {
	JobID      string `json:"job_id"`
	Title      string `json:"title"`
	MatchScore int    `json:"match_score"`
}

// Recommend scores every catalog job against candidateSkills, keeps those
// scoring at least MinRecommendationScore, orders them by score descending
// (catalog order breaks ties) and returns at most MaxRecommendations.
// excludeJobID is never returned, even if the catalog still contains it.
// The result is empty, not nil, when nothing qualifies.
func Recommend(candidateSkills []string, catalog []CatalogJob, excludeJobID string) []Recommendation {
	recs := make([]Recommendation, 0, min(len(catalog), MaxRecommendations))

	for _, job := range catalog {
		if job.JobID == excludeJobID {
			continue
		}

		score := Match(candidateSkills, job.RequiredSkills)
		if score < MinRecommendationScore {
			continue
		}

		recs = append(recs, Recommendation{
			JobID:      job.JobID,
			Title:      job.Title,
			MatchScore: score,
		})
	}

	slices.SortStableFunc(recs, func(a, b Recommendation) int {
		return cmp.Compare(b.MatchScore, a.MatchScore)
	})

	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	return recs
}
