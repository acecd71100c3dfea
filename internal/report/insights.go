package report

import (
	"sort"

	"github.com/spigell/mock-interviewer/internal/bank"
)

const topicCutoff = 70

// RoleInsights summarises performance per topic for the interviewed role.
type RoleInsights struct {
	Role            string             `json:"role"`
	TopicScores     map[string]float64 `json:"topic_scores"`
	Strongest       string             `json:"strongest_topic,omitempty"`
	Weakest         string             `json:"weakest_topic,omitempty"`
	Recommendations []string           `json:"recommendations"`
}

type topicAdvice struct {
	topic  string
	advice string
}

var roleAdvice = map[string][]topicAdvice{
	"finance": {
		{bank.TopicLookupFunctions, "Focus on VLOOKUP and INDEX-MATCH for financial data lookups"},
		{bank.TopicAdvancedFormulas, "Strengthen knowledge of SUMIF/COUNTIF for financial analysis"},
		{bank.TopicDataAnalysis, "Practice pivot tables for financial reporting"},
	},
	"operations": {
		{bank.TopicDataManipulation, "Improve data cleaning and manipulation skills"},
		{bank.TopicDataAnalysis, "Focus on data analysis techniques for operational insights"},
		{bank.TopicBasicFormulas, "Strengthen foundation in basic Excel formulas"},
	},
	"data_analytics": {
		{bank.TopicAdvancedFormulas, "Master advanced Excel formulas for data analysis"},
		{bank.TopicDataAnalysis, "Enhance pivot table and data analysis skills"},
		{bank.TopicLookupFunctions, "Improve lookup functions for data integration"},
	},
}

func roleInsights(role string, entries []Entry) RoleInsights {
	totals := make(map[string]int)
	counts := make(map[string]int)
	for _, e := range entries {
		topic := e.Question.Topic
		if topic == "" {
			topic = string(e.Question.Category)
		}
		totals[topic] += e.Evaluation.Score
		counts[topic]++
	}

	insights := RoleInsights{
		Role:            role,
		TopicScores:     make(map[string]float64, len(totals)),
		Recommendations: []string{},
	}

	topics := make([]string, 0, len(totals))
	for topic, total := range totals {
		insights.TopicScores[topic] = round1(float64(total) / float64(counts[topic]))
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	for _, topic := range topics {
		score := insights.TopicScores[topic]
		if insights.Strongest == "" || score > insights.TopicScores[insights.Strongest] {
			insights.Strongest = topic
		}
		if insights.Weakest == "" || score < insights.TopicScores[insights.Weakest] {
			insights.Weakest = topic
		}
	}

	for _, a := range roleAdvice[role] {
		score, assessed := insights.TopicScores[a.topic]
		if assessed && score < topicCutoff {
			insights.Recommendations = append(insights.Recommendations, a.advice)
		}
	}
	return insights
}
