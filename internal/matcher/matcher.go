// Package matcher detects "<task> done" utterances in free-form chat text.
// The pattern is a derived index over the task catalog: it is rebuilt from
// the current task names on every invocation, so catalog edits are picked up
// without any cache invalidation.
package matcher

import (
	"regexp"
	"sort"
	"strings"

	"github.com/example/routine-bot/internal/catalog"
)

// Match scans text for a known task name followed by the literal token
// "done", case-insensitively. Overlapping names resolve to the longest one:
// the alternation is built longest-name-first so a short name cannot
// prefix-match inside a longer one.
func Match(cat *catalog.Catalog, text string) (catalog.Task, bool) {
	pattern := buildPattern(cat)
	if pattern == nil {
		return catalog.Task{}, false
	}

	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return catalog.Task{}, false
	}

	task, ok := cat.ByName(m[1])
	if !ok {
		return catalog.Task{}, false
	}
	return task, true
}

func buildPattern(cat *catalog.Catalog) *regexp.Regexp {
	names := make([]string, 0, cat.Len())
	for _, task := range cat.Tasks() {
		if name := strings.TrimSpace(task.Name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}

	// Longer names first so "Report Draft" wins over "Report".
	sort.SliceStable(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})

	escaped := make([]string, len(names))
	for i, name := range names {
		escaped[i] = regexp.QuoteMeta(name)
	}

	pattern, err := regexp.Compile(`(?i)(` + strings.Join(escaped, "|") + `)(?:.*?)\bdone\b`)
	if err != nil {
		return nil
	}
	return pattern
}
