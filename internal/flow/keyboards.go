package flow

// Keyboard option labels presented to the user. Transitions match on the
// exact label text, so these constants are shared between the prompt
// builders and the transition table.
const (
	LabelYes         = "Yes"
	LabelNo          = "No"
	LabelBack        = "Back"
	LabelAddGoal     = "Add"
	LabelRemoveGoal  = "Remove"
	LabelAllGood     = "All good"
	LabelHowItWorks  = "How does it work?"
	LabelShowExample = "Show example"
	LabelWantToStart = "I want to start"
)

// Life area options offered when the user has no goals yet. "Other" accepts
// free text at the same state, so it needs no special handling.
var lifeAreas = []string{
	"Health",
	"Career",
	"Money",
	"Relationships",
	"Mind",
	"Home/Space",
	"Other",
}

// YesNoOptions returns the yes/no keyboard labels.
func YesNoOptions() []string {
	return []string{LabelYes, LabelNo}
}

// LifeAreaOptions returns the life area keyboard labels.
func LifeAreaOptions() []string {
	return append([]string(nil), lifeAreas...)
}

// SummaryOptions returns the keyboard labels for the goal summary screen.
func SummaryOptions() []string {
	return []string{LabelAddGoal, LabelRemoveGoal, LabelAllGood}
}

// BackOptions returns the single-button keyboard for the example suggestion.
func BackOptions() []string {
	return []string{LabelBack}
}

// DailyRulesOptions returns the keyboard labels for the daily rules screen.
func DailyRulesOptions() []string {
	return []string{LabelHowItWorks}
}

// ExampleOptions returns the keyboard labels for the example offer screen.
func ExampleOptions() []string {
	return []string{LabelShowExample, LabelWantToStart}
}

// GoalPickerOptions returns one keyboard label per current goal, in display
// order, for the removal picker.
func GoalPickerOptions(goals []string) []string {
	return append([]string(nil), goals...)
}
