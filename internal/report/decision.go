package report

import (
	"fmt"
	"math"
)

// Hiring decisions.
const (
	DecisionStrongHire      = "STRONG HIRE"
	DecisionConditionalHire = "CONDITIONAL HIRE"
	DecisionNoHireTraining  = "NO HIRE - TRAINING REQUIRED"
	DecisionReject          = "REJECT"
)

// Recommendation labels derived from the decision.
const (
	RecommendStrong         = "strong"
	RecommendConditional    = "conditional"
	RecommendNotRecommended = "not_recommended"
	RecommendReject         = "reject"
)

const (
	strongHireScore    = 85
	trainableScore     = 50
	failingTurnScore   = 30
	defaultRoleCutoff  = 70
	lowTurnScore       = 40
	financeGapCutoff   = 70
	analyticsGapCutoff = 75
	maxCriticalGaps    = 3
)

var roleThresholds = map[string]float64{
	"finance":        75,
	"operations":     70,
	"data_analytics": 80,
}

// HiringDecision is the verdict for the role.
type HiringDecision struct {
	Decision       string   `json:"decision"`
	Confidence     string   `json:"confidence"`
	Threshold      float64  `json:"threshold"`
	MeetsThreshold bool     `json:"meets_threshold"`
	Rationale      string   `json:"rationale"`
	NextSteps      []string `json:"next_steps"`
}

// Threshold returns the conditional-hire cutoff for role.
func Threshold(role string) float64 {
	if t, ok := roleThresholds[role]; ok {
		return t
	}
	return defaultRoleCutoff
}

func decide(role string, average float64, scores []int) HiringDecision {
	threshold := Threshold(role)
	d := HiringDecision{
		Threshold:      threshold,
		MeetsThreshold: average >= threshold,
	}

	failing := 0
	for _, s := range scores {
		if s < failingTurnScore {
			failing++
		}
	}

	switch {
	case failing > len(scores)/2:
		d.Decision, d.Confidence = DecisionReject, "High"
	case average >= strongHireScore:
		d.Decision, d.Confidence = DecisionStrongHire, "High"
	case average >= threshold:
		d.Decision, d.Confidence = DecisionConditionalHire, "Medium"
	case average >= trainableScore:
		d.Decision, d.Confidence = DecisionNoHireTraining, "High"
	default:
		d.Decision, d.Confidence = DecisionReject, "High"
	}

	d.Rationale = rationale(d.Decision)
	d.NextSteps = nextSteps(d.Decision)
	return d
}

func recommendation(decision string) string {
	switch decision {
	case DecisionStrongHire:
		return RecommendStrong
	case DecisionConditionalHire:
		return RecommendConditional
	case DecisionNoHireTraining:
		return RecommendNotRecommended
	default:
		return RecommendReject
	}
}

func rationale(decision string) string {
	switch decision {
	case DecisionStrongHire:
		return "Consistently high performance across all Excel skill areas. Candidate can contribute immediately."
	case DecisionConditionalHire:
		return "Solid foundation with specific gaps that can be addressed through focused training within 2-4 weeks."
	case DecisionNoHireTraining:
		return "Fundamental Excel knowledge gaps require extensive training (6-8 weeks) which may not be cost-effective."
	default:
		return "Critical deficiencies in basic Excel operations. Training unlikely to bring candidate to required proficiency level."
	}
}

func nextSteps(decision string) []string {
	switch decision {
	case DecisionStrongHire:
		return []string{
			"Proceed with job offer",
			"Assign to Excel-intensive projects immediately",
			"Consider for mentoring other team members",
		}
	case DecisionConditionalHire:
		return []string{
			"Offer position with 30-day Excel training requirement",
			"Assign Excel mentor for first month",
			"Re-evaluate after training completion",
		}
	case DecisionNoHireTraining:
		return []string{
			"Do not proceed with hiring",
			"Consider for future openings after Excel certification",
			"Recommend Excel fundamentals course to candidate",
		}
	default:
		return []string{
			"Reject application immediately",
			"Do not consider for Excel-dependent roles",
			"Focus recruitment efforts on other candidates",
		}
	}
}

func executiveSummary(decision string, average float64) string {
	score := int(math.Round(average))
	switch decision {
	case DecisionStrongHire:
		return fmt.Sprintf("**RECOMMEND FOR HIRE**: Candidate demonstrates strong Excel proficiency (Score: %d/100). "+
			"Ready for immediate deployment in Excel-dependent role.", score)
	case DecisionConditionalHire:
		return fmt.Sprintf("**CONDITIONAL HIRE**: Candidate has adequate Excel foundation (Score: %d/100) "+
			"but requires targeted training in specific areas before role assignment.", score)
	case DecisionNoHireTraining:
		return fmt.Sprintf("**NOT RECOMMENDED**: Candidate lacks essential Excel skills (Score: %d/100). "+
			"Would require extensive training program before being job-ready.", score)
	default:
		return fmt.Sprintf("**REJECT**: Candidate demonstrates insufficient Excel knowledge (Score: %d/100). "+
			"Not suitable for Excel-dependent position even with training.", score)
	}
}

func criticalGaps(role string, average float64, scores []int) []string {
	var gaps []string
	switch {
	case average < failingTurnScore:
		gaps = append(gaps, "CRITICAL: Lacks basic Excel formula knowledge")
	case average < trainableScore:
		gaps = append(gaps, "MAJOR: Cannot perform essential Excel functions")
	}

	low := 0
	for _, s := range scores {
		if s < lowTurnScore {
			low++
		}
	}
	if low > 2 {
		gaps = append(gaps, "PATTERN: Consistent poor performance across multiple areas")
	}

	switch {
	case role == "finance" && average < financeGapCutoff:
		gaps = append(gaps, "FINANCE CRITICAL: Insufficient Excel skills for financial analysis")
	case role == "data_analytics" && average < analyticsGapCutoff:
		gaps = append(gaps, "ANALYTICS CRITICAL: Cannot handle data analysis requirements")
	}

	if len(gaps) > maxCriticalGaps {
		gaps = gaps[:maxCriticalGaps]
	}
	if gaps == nil {
		gaps = []string{}
	}
	return gaps
}
