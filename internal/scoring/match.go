// Package scoring computes how well a candidate's skills cover a job's
// required skills and ranks alternative jobs for the candidate.
package scoring

import (
	"math"
	"strings"
)

// Match returns the percentage (0-100) of requiredSkills covered by
// candidateSkills. Comparison is case-insensitive and a requirement is
// covered when it contains a candidate skill or is contained by one, so
// "java" is covered by "javascript". An empty candidate skill is contained
// in every requirement. An empty requirement list scores 0.
func Match(candidateSkills, requiredSkills []string) int {
	if len(requiredSkills) == 0 {
		return 0
	}

	candidates := make([]string, len(candidateSkills))
	for i, s := range candidateSkills {
		candidates[i] = strings.ToLower(s)
	}

	covered := 0
	for _, req := range requiredSkills {
		if covers(candidates, strings.ToLower(req)) {
			covered++
		}
	}

	return int(math.Round(float64(covered) / float64(len(requiredSkills)) * 100))
}

func covers(candidates []string, requirement string) bool {
	for _, c := range candidates {
		if strings.Contains(requirement, c) || strings.Contains(c, requirement) {
			return true
		}
	}
	return false
}
