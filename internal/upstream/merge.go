package upstream

// MergePlan is the outcome of reconciling a provider's configured models
// with the list it reports
type MergePlan struct {
	Added    []string
	Removed  []string
	Retained []string
}

// Changed reports whether applying the plan edits the model list
func (p MergePlan) Changed() bool {
	return len(p.Added) > 0 || len(p.Removed) > 0
}

// Merge adds fetched models that are new and drops configured models the
// provider no longer reports, unless inUse says a router still needs them.
// An empty fetch keeps everything.
func Merge(current, fetched []string, inUse func(model string) bool) MergePlan {
	var plan MergePlan
	if len(fetched) == 0 {
		plan.Retained = append(plan.Retained, current...)
		return plan
	}

	have := make(map[string]bool, len(current))
	for _, m := range current {
		have[m] = true
	}
	reported := make(map[string]bool, len(fetched))
	for _, m := range fetched {
		reported[m] = true
		if !have[m] {
			have[m] = true
			plan.Added = append(plan.Added, m)
		}
	}

	seen := make(map[string]bool, len(current))
	for _, m := range current {
		if seen[m] {
			continue
		}
		seen[m] = true
		if reported[m] || (inUse != nil && inUse(m)) {
			plan.Retained = append(plan.Retained, m)
			continue
		}
		plan.Removed = append(plan.Removed, m)
	}
	return plan
}
