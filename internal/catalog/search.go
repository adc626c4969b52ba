package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

// Match is one search hit.
type Match struct {
	Category   string
	Descriptor models.BlockDescriptor
	Distance   int

	rank  int
	order int
}

const (
	rankLabel = iota
	rankID
	rankDescription
	rankFuzzy
)

// Search ranks catalog entries against query. Substring hits on the label
// come first, then on the ID, then on the description; remaining labels
// within a small edit distance follow. Ties keep catalog order. An empty
// query returns every block in display order.
func Search(catalog *models.CatalogMap, query string) []Match {
	if catalog == nil {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))

	matches := make([]Match, 0)
	order := 0
	for _, category := range catalog.Categories {
		for _, block := range category.Blocks {
			order++
			m := Match{Category: category.Name, Descriptor: block, order: order}
			if q == "" {
				matches = append(matches, m)
				continue
			}

			label := strings.ToLower(block.Label)
			m.Distance = levenshtein.ComputeDistance(q, label)
			switch {
			case strings.Contains(label, q):
				m.rank = rankLabel
			case strings.Contains(strings.ToLower(block.ID), q):
				m.rank = rankID
			case strings.Contains(strings.ToLower(block.Description), q):
				m.rank = rankDescription
			case closeEnough(q, label, m.Distance):
				m.rank = rankFuzzy
			default:
				continue
			}
			matches = append(matches, m)
		}
	}

	if q != "" {
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].rank != matches[j].rank {
				return matches[i].rank < matches[j].rank
			}
			if matches[i].Distance != matches[j].Distance {
				return matches[i].Distance < matches[j].Distance
			}
			return matches[i].order < matches[j].order
		})
	}
	return matches
}

func closeEnough(query, label string, dist int) bool {
	maxlen := len(query)
	if len(label) > maxlen {
		maxlen = len(label)
	}
	if maxlen == 0 {
		return false
	}
	return float64(dist)/float64(maxlen) < 0.4
}
