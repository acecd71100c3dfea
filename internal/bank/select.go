package bank

import (
	"sort"
	"strings"
)

// RoleGeneral selects from the whole bank.
const RoleGeneral = "general"

// DefaultEffectiveness is assumed for questions without recorded performance.
const DefaultEffectiveness = 0.5

var roleTopics = map[string][]string{
	"finance":        {TopicBasicFormulas, TopicLookupFunctions, TopicScenarioBased},
	"operations":     {TopicDataAnalysis, TopicDataManipulation, TopicScenarioBased},
	"data_analytics": {TopicAdvancedFormulas, TopicDataAnalysis, TopicLookupFunctions},
}

// Roles returns the known role names, sorted, including RoleGeneral.
func Roles() []string {
	roles := []string{RoleGeneral}
	for role := range roleTopics {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// NormalizeRole lowercases role and maps unknown values to RoleGeneral.
func NormalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	role = strings.ReplaceAll(role, " ", "_")
	if _, ok := roleTopics[role]; ok {
		return role
	}
	return RoleGeneral
}

// RoleTopics returns the focus topics of role, or nil for the general role.
func RoleTopics(role string) []string {
	return roleTopics[NormalizeRole(role)]
}

// Select picks count questions for role. Questions from the role's focus
// topics are preferred and spread over difficulties (basic gets the first
// remainder slot, intermediate the second); within a difficulty the most
// effective questions win. The result is always in bank order. A count that
// is not positive or covers the whole bank returns every question.
func (b *Bank) Select(role string, count int, effectiveness map[int]float64) []Question {
	if count <= 0 || count >= len(b.questions) {
		return b.All()
	}

	focus := make(map[string]struct{})
	for _, topic := range RoleTopics(role) {
		focus[topic] = struct{}{}
	}

	var candidates, rest []Question
	for _, q := range b.questions {
		if _, ok := focus[q.Topic]; ok || len(focus) == 0 {
			candidates = append(candidates, q)
			continue
		}
		rest = append(rest, q)
	}
	if len(candidates) == 0 {
		candidates, rest = b.All(), nil
	}

	rank := func(qs []Question) {
		sort.SliceStable(qs, func(i, j int) bool {
			return score(effectiveness, qs[i].ID) > score(effectiveness, qs[j].ID)
		})
	}

	targets := []struct {
		level Difficulty
		n     int
	}{
		{DifficultyBasic, count/3 + boolInt(count%3 > 0)},
		{DifficultyIntermediate, count/3 + boolInt(count%3 > 1)},
		{DifficultyAdvanced, count / 3},
	}

	chosen := make(map[int]struct{}, count)
	selected := make([]Question, 0, count)
	take := func(q Question) {
		chosen[q.ID] = struct{}{}
		selected = append(selected, q)
	}

	for _, target := range targets {
		var pool []Question
		for _, q := range candidates {
			if q.Difficulty == target.level {
				pool = append(pool, q)
			}
		}
		rank(pool)
		for i := 0; i < len(pool) && i < target.n; i++ {
			take(pool[i])
		}
	}

	for _, group := range [][]Question{candidates, rest} {
		pool := make([]Question, 0, len(group))
		for _, q := range group {
			if _, ok := chosen[q.ID]; !ok {
				pool = append(pool, q)
			}
		}
		rank(pool)
		for _, q := range pool {
			if len(selected) == count {
				break
			}
			take(q)
		}
	}

	sort.Slice(selected, func(i, j int) bool {
		return b.index[selected[i].ID] < b.index[selected[j].ID]
	})
	return selected
}

func score(effectiveness map[int]float64, id int) float64 {
	if v, ok := effectiveness[id]; ok {
		return v
	}
	return DefaultEffectiveness
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
