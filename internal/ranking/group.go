package ranking

// SectionGroup collects ranked entries that share a section.
type SectionGroup struct {
	SectionID string
	Label     string
	Icon      string
	Entries   []ScoredEntry
}

// GroupBySection groups results by section in order of first appearance,
// keeping rank order inside each group.
func GroupBySection(results []ScoredEntry) []*SectionGroup {
	var groups []*SectionGroup
	index := make(map[string]*SectionGroup)
	for _, r := range results {
		g, ok := index[r.Entry.SectionID]
		if !ok {
			g = &SectionGroup{
				SectionID: r.Entry.SectionID,
				Label:     r.Entry.SectionLabel,
				Icon:      r.Entry.Icon,
			}
			index[r.Entry.SectionID] = g
			groups = append(groups, g)
		}
		g.Entries = append(g.Entries, r)
	}
	return groups
}
