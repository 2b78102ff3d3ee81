package models

// Filter narrows retrieval candidates by categorical tags. Zero-valued
// fields impose no constraint; present constraints are AND-combined.
// Stage/Channel/Goal match by set intersection, Level by membership in the
// unit's UserLevelFit.
type Filter struct {
	Level   string
	Stage   []string
	Channel []string
	Goal    []string
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return f.Level == "" && len(f.Stage) == 0 && len(f.Channel) == 0 && len(f.Goal) == 0
}

// Matches reports whether a knowledge unit satisfies every present
// constraint. This is the Go-side mirror of the SQL predicate built in
// repository.KnowledgeRepository.SearchSimilar.
func (f Filter) Matches(ku *KnowledgeUnit) bool {
	if f.Level != "" && !contains(ku.UserLevelFit, f.Level) {
		return false
	}
	if len(f.Stage) > 0 && !intersects(ku.Stage, f.Stage) {
		return false
	}
	if len(f.Channel) > 0 && !intersects(ku.Channel, f.Channel) {
		return false
	}
	if len(f.Goal) > 0 && !intersects(ku.Goal, f.Goal) {
		return false
	}
	return true
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
