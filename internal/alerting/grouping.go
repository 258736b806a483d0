package alerting

import "sort"

// OtherGroupName labels alerts whose rule no longer exists.
const OtherGroupName = "Outros"

type AlertGroup struct {
	RuleID   string   `json:"ruleId"`
	RuleName string   `json:"ruleName"`
	Count    int      `json:"count"`
	Severity Severity `json:"severity"`
	Alerts   []Alert  `json:"alerts"`
}

// GroupByRule buckets alerts by rule id in first-seen order. Alerts within a
// group are newest first and the group carries the newest alert's severity.
func GroupByRule(alerts []Alert, rules []Rule) []AlertGroup {
	names := make(map[string]string, len(rules))
	for _, r := range rules {
		names[r.ID] = r.Name
	}

	index := make(map[string]int)
	var groups []AlertGroup
	for _, a := range alerts {
		i, ok := index[a.RuleID]
		if !ok {
			name, found := names[a.RuleID]
			if !found {
				name = OtherGroupName
			}
			i = len(groups)
			index[a.RuleID] = i
			groups = append(groups, AlertGroup{RuleID: a.RuleID, RuleName: name})
		}
		groups[i].Alerts = append(groups[i].Alerts, a)
		groups[i].Count++
	}

	for i := range groups {
		g := &groups[i]
		sort.SliceStable(g.Alerts, func(x, y int) bool {
			return g.Alerts[x].Timestamp.After(g.Alerts[y].Timestamp)
		})
		g.Severity = g.Alerts[0].Severity
	}
	return groups
}

// Selection is the set of alerts picked for a bulk action.
type Selection struct {
	ids IDSet
}

func NewSelection() *Selection {
	return &Selection{ids: NewIDSet()}
}

// Toggle flips one id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	if s.ids.Has(id) {
		s.ids.Remove(id)
		return false
	}
	s.ids.Add(id)
	return true
}

// ToggleGroup selects every id unless all are already selected, in which
// case it deselects them all.
func (s *Selection) ToggleGroup(ids []string) {
	for _, id := range ids {
		if !s.ids.Has(id) {
			s.ids.Add(ids...)
			return
		}
	}
	s.ids.Remove(ids...)
}

func (s *Selection) Remove(ids ...string) {
	s.ids.Remove(ids...)
}

func (s *Selection) Clear() {
	s.ids = NewIDSet()
}

func (s *Selection) Has(id string) bool {
	return s.ids.Has(id)
}

func (s *Selection) Len() int {
	return len(s.ids)
}

func (s *Selection) IDs() []string {
	return s.ids.Sorted()
}
