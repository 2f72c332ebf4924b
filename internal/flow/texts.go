package flow

import (
	"fmt"
	"strings"
)

// Prompt copy for the onboarding dialogue.
const (
	msgWelcome = "Most trackers eat your time. I'm here to give it back and help you get things done. ⏳"

	msgAskGoalsToday = "Do you already have goals or plans for today?"

	msgInputGoals = "Great! Write them as a list or send a voice note and I'll save everything."

	msgAddMoreGoals = "Write an additional goal"

	msgSelectLifeArea = "I get it. Which area of life do you want to improve today?"

	msgRemovePick = "Pick what to remove:"

	msgDailyRules = "Great plan! Remember: a goal without action is just a dream. " +
		"During the day, send me voice or text updates on how it's going. ✔️"

	msgExplainLogging = "Here's how it works: during the day you send me notes. In the evening " +
		"you tap “Wrap up” and I'll give you a full report. Want an example?"

	msgExampleReport = "Example report: ..."

	msgAskReportTime = "What time should I remind you to wrap up the day?"

	msgClosing = "Awesome! I'll be waiting for your updates. Good luck! \U0001F680"
)

// suggestExampleText builds the example prompt for the chosen life area.
func suggestExampleText(area string) string {
	return fmt.Sprintf("An example action for %q: ...  Write your own specific goal or tap %q.", area, LabelBack)
}

// summaryText builds the goal summary with one bullet per goal, in
// insertion order.
func summaryText(goals []string) string {
	var sb strings.Builder
	sb.WriteString("Your plan for today:\n")
	for _, g := range goals {
		sb.WriteString("- ")
		sb.WriteString(g)
		sb.WriteString("\n")
	}
	sb.WriteString("Does that look right?")
	return sb.String()
}
