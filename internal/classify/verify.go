package classify

import "github.com/nao1215/linkprobe/internal/model"

// Verify computes inputs − valid − dead.
// The unresolved list keeps input order and contains each URL once even if
// the input repeats it. A nil result leaves every input unresolved.
func Verify(inputs []string, result *model.ClassificationResult) *model.ReconciliationReport {
	unresolved := make([]string, 0)
	seen := make(map[string]struct{}, len(inputs))

	for _, u := range inputs {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}

		if result != nil && result.Contains(u) {
			continue
		}
		unresolved = append(unresolved, u)
	}

	return &model.ReconciliationReport{
		AllResolved: len(unresolved) == 0,
		Unresolved:  unresolved,
	}
}
