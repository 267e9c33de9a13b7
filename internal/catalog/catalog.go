// Package catalog holds the read-side helpers of the public site.
package catalog

import (
	"strings"

	"github.com/irkinnovations/portfolio/internal/domain"
)

// PreviewSize is the number of projects shown on the home page.
const PreviewSize = 6

// Preview returns the first PreviewSize projects.
func Preview(projects []domain.Project) []domain.Project {
	if len(projects) > PreviewSize {
		return projects[:PreviewSize]
	}
	return projects
}

// Search keeps the projects whose title or description contains term,
// ignoring case. Order is preserved. An empty term matches everything.
func Search(projects []domain.Project, term string) []domain.Project {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return projects
	}

	out := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out
}
