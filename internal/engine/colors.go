package engine

import (
	"hash/fnv"
	"strings"
)

// DefaultTagColors is the seed palette for dynamically created tags. It
// travels with the catalog rather than living in a process-wide map so
// coloring stays a pure function of its inputs
var DefaultTagColors = []string{
	"#F59E0B", "#10B981", "#3B82F6", "#8B5CF6",
	"#EC4899", "#14B8A6", "#F97316", "#6366F1",
}

// ColorFor deterministically assigns a tag name a color from the seed
// table. The same name always maps to the same color for a given table;
// case and surrounding whitespace are ignored
func ColorFor(name string, seeds []string) string {
	if len(seeds) == 0 {
		return ""
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return seeds[h.Sum32()%uint32(len(seeds))]
}
