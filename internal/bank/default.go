package bank

// Topics used by the built-in bank and role focus.
const (
	TopicBasicFormulas    = "basic_formulas"
	TopicLookupFunctions  = "lookup_functions"
	TopicDataAnalysis     = "data_analysis"
	TopicAdvancedFormulas = "advanced_formulas"
	TopicDataManipulation = "data_manipulation"
	TopicScenarioBased    = "scenario_based"
)

var defaultQuestions = []Question{
	{
		ID:         1,
		Prompt:     "What Excel function would you use to sum values in range A1:A10?",
		Category:   CategoryBasics,
		Difficulty: DifficultyBasic,
		Type:       TypeFormula,
		Topic:      TopicBasicFormulas,
		Keywords:   []string{"SUM", "formula"},
	},
	{
		ID:         2,
		Prompt:     "How would you remove duplicate values from a dataset in Excel?",
		Category:   CategoryBasics,
		Difficulty: DifficultyIntermediate,
		Type:       TypeConcept,
		Topic:      TopicDataAnalysis,
		Keywords:   []string{"remove duplicates", "data", "filter"},
	},
	{
		ID:         3,
		Prompt:     "Explain how VLOOKUP works and when you'd use it.",
		Category:   CategoryAdvanced,
		Difficulty: DifficultyIntermediate,
		Type:       TypeConcept,
		Topic:      TopicLookupFunctions,
		Keywords:   []string{"VLOOKUP", "lookup", "table", "match"},
	},
	{
		ID:         4,
		Prompt:     "What's the difference between absolute and relative cell references?",
		Category:   CategoryBasics,
		Difficulty: DifficultyBasic,
		Type:       TypeConcept,
		Topic:      TopicBasicFormulas,
		Keywords:   []string{"absolute", "relative", "$"},
	},
	{
		ID:         5,
		Prompt:     "How would you create a pivot table for data analysis?",
		Category:   CategoryAdvanced,
		Difficulty: DifficultyIntermediate,
		Type:       TypeConcept,
		Topic:      TopicDataAnalysis,
		Keywords:   []string{"pivot table", "data analysis"},
	},
	{
		ID:         6,
		Prompt:     "How would you use SUMIF to calculate conditional totals?",
		Category:   CategoryAdvanced,
		Difficulty: DifficultyIntermediate,
		Type:       TypeFormula,
		Topic:      TopicAdvancedFormulas,
		Keywords:   []string{"SUMIF", "conditional"},
	},
	{
		ID:         7,
		Prompt:     "Explain the difference between VLOOKUP and INDEX-MATCH. When is INDEX-MATCH the better choice?",
		Category:   CategoryAdvanced,
		Difficulty: DifficultyAdvanced,
		Type:       TypeConcept,
		Topic:      TopicLookupFunctions,
		Keywords:   []string{"INDEX", "MATCH", "VLOOKUP", "left"},
	},
	{
		ID:         8,
		Prompt:     "Write a formula that labels a score as Pass, Merit or Distinction using nested IF statements.",
		Category:   CategoryAdvanced,
		Difficulty: DifficultyAdvanced,
		Type:       TypeFormula,
		Topic:      TopicAdvancedFormulas,
		Keywords:   []string{"IF", "nested", "condition"},
	},
	{
		ID:         9,
		Prompt:     "How would you combine first and last name columns and show a date as text like 2024-01-31?",
		Category:   CategoryBasics,
		Difficulty: DifficultyBasic,
		Type:       TypeFormula,
		Topic:      TopicDataManipulation,
		Keywords:   []string{"CONCATENATE", "TEXT", "&"},
	},
	{
		ID:         10,
		Prompt:     "Your manager asks for a monthly sales dashboard that updates when new data arrives. How would you build it?",
		Category:   CategoryScenario,
		Difficulty: DifficultyAdvanced,
		Type:       TypeScenario,
		Topic:      TopicScenarioBased,
		Keywords:   []string{"pivot table", "chart", "slicer", "refresh"},
	},
	{
		ID:         11,
		Prompt:     "You receive two invoice lists from different systems. How would you find invoices missing from one of them?",
		Category:   CategoryScenario,
		Difficulty: DifficultyIntermediate,
		Type:       TypeScenario,
		Topic:      TopicScenarioBased,
		Keywords:   []string{"COUNTIF", "lookup", "missing", "conditional formatting"},
	},
	{
		ID:         12,
		Prompt:     "An imported customer file has extra spaces, mixed case names and a full address in one column. How would you clean it?",
		Category:   CategoryScenario,
		Difficulty: DifficultyIntermediate,
		Type:       TypeScenario,
		Topic:      TopicDataManipulation,
		Keywords:   []string{"TRIM", "PROPER", "text to columns"},
	},
}

// Default returns the built-in spreadsheet skills bank.
func Default() *Bank {
	b, err := New(defaultQuestions)
	if err != nil {
		panic(err)
	}
	return b
}
