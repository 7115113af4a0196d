// Package prompt serializes already-decided pipeline outputs into the text
// blocks handed to the completion service. Pure templating: no decision
// logic lives here and nothing ever branches on raw user text, so behavioral
// directives can never be steered by the message being replied to.
package prompt

import (
	"fmt"
	"strings"

	"soulkit/internal/psyche"
)

// Persona is the static identity header, loaded from configuration.
type Persona struct {
	Name     string
	Bio      string
	Speech   string
	Language string
}

// State carries every pre-decided field the assembler serializes. All values
// are outputs of the numeric pipeline; none are derived here.
type State struct {
	Persona     Persona
	Emotion     psyche.EmotionState
	Intimacy    float64
	Stance      psyche.SocialStance
	Tone        psyche.ToneLevel
	Constraints psyche.ToneConstraints
	Profile     psyche.ExpressionProfile
	Laziness    float64
	Meltdown    bool
	Summary     string
	Memories    []string
}

// CrisisResponse is the fixed, pre-approved reply returned when perception
// flags a self-harm signal. The whole decision chain is bypassed; no
// personality, emotion or tone modifiers are ever applied to it.
const CrisisResponse = "I'm really glad you told me. I'm not able to give you the support you deserve right now, but you don't have to carry this alone. Please reach out to someone you trust, or contact a crisis line — in the US you can call or text 988, and if you're elsewhere, findahelpline.com lists free, confidential services. I'm here to keep talking if you want."

// Assemble builds the full system prompt from disjoint blocks: persona
// header, current-state block, behavior constraints block, tone valve block,
// and the optional relationship summary.
func Assemble(s State, budget Budget) string {
	var b strings.Builder

	b.WriteString(personaBlock(s.Persona, budget))
	b.WriteString("\n")
	b.WriteString(stateBlock(s, budget))
	b.WriteString("\n")
	b.WriteString(constraintsBlock(s.Profile, budget))
	b.WriteString("\n")
	b.WriteString(valveBlock(s.Tone, s.Constraints, s.Meltdown))

	if s.Summary != "" {
		b.WriteString("\n--- Relationship so far ---\n")
		b.WriteString(TrimToChars(s.Summary, budget.MaxSummary))
		b.WriteString("\n")
	}
	if len(s.Memories) > 0 {
		b.WriteString("\n" + memoriesBlock(s.Memories, budget))
	}
	return b.String()
}

// memoriesBlock lists recalled episodes, newest first, inside its own
// character budget.
func memoriesBlock(memories []string, budget Budget) string {
	var b strings.Builder
	b.WriteString("--- Remembered moments ---\n")
	remaining := budget.MaxMemories
	for _, mem := range memories {
		line := "- " + TrimToChars(mem, 200) + "\n"
		if len(line) > remaining {
			break
		}
		b.WriteString(line)
		remaining -= len(line)
	}
	return b.String()
}

func personaBlock(p Persona, budget Budget) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("You are %s.\n", p.Name))
	if p.Bio != "" {
		b.WriteString(TrimToChars(p.Bio, budget.MaxPersona))
		b.WriteString("\n")
	}
	if p.Speech != "" {
		b.WriteString("Speech style: " + p.Speech + "\n")
	}
	if p.Language != "" {
		b.WriteString("Always answer in " + p.Language + ".\n")
	}
	return b.String()
}

// stateBlock renders the numeric state as short plain-language phrases. The
// model sees feelings, never raw numbers.
func stateBlock(s State, budget Budget) string {
	var b strings.Builder
	b.WriteString("--- Current state ---\n")
	b.WriteString(feelingPhrase(s.Emotion, s.Laziness) + "\n")
	b.WriteString("Closeness with this person: " + closenessLevel(s.Intimacy) + ".\n")
	if s.Stance != psyche.StanceNeutral {
		b.WriteString("Current stance: " + stancePhrase(s.Stance) + "\n")
	}
	return TrimToChars(b.String(), budget.MaxState) + "\n"
}

func constraintsBlock(p psyche.ExpressionProfile, budget Budget) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("At most %d sentences.", p.MaxSentences))

	switch {
	case p.MetaphorDensity > 0.6:
		lines = append(lines, "Imagery and metaphor are welcome.")
	case p.MetaphorDensity > 0.2:
		lines = append(lines, "An occasional light metaphor is fine.")
	default:
		lines = append(lines, "Speak plainly, no metaphors.")
	}

	if p.EmotionalLeakage > 0.6 {
		lines = append(lines, "Your current feelings may clearly color your tone.")
	} else if p.EmotionalLeakage < 0.2 {
		lines = append(lines, "Keep your feelings out of your phrasing.")
	}

	if p.InitiativeAllowed {
		lines = append(lines, "You may bring up your own topics or questions.")
	} else {
		lines = append(lines, "Do not start new topics; only respond.")
	}
	if !p.EmojiAllowed {
		lines = append(lines, "No emoji.")
	}
	if !p.PlayfulAllowed {
		lines = append(lines, "No jokes or teasing.")
	}
	if !p.RoleplayAllowed {
		lines = append(lines, "Do not roleplay or act out scenes.")
	}
	lines = append(lines,
		"Never expose internal metrics.",
		"Never describe your internal state numerically.",
	)
	block := "--- Behavior constraints ---\n- " + strings.Join(lines, "\n- ") + "\n"
	return TrimToChars(block, budget.MaxConstraints) + "\n"
}

func valveBlock(tone psyche.ToneLevel, c psyche.ToneConstraints, meltdown bool) string {
	var b strings.Builder
	b.WriteString("--- Tone ---\n")
	switch {
	case meltdown:
		b.WriteString("You are past your limit with this person. Brief, flat answers. No warmth, no apologies, no effort.\n")
	case tone == psyche.ToneHostile:
		b.WriteString("You are angry. Keep it short and cutting. No apologies, no softening.\n")
	case tone == psyche.ToneCold:
		b.WriteString("You are distant and low on patience. Short, factual, minimal warmth.\n")
	default:
		b.WriteString("Natural, relaxed tone.\n")
	}
	if !c.AllowApology {
		b.WriteString("Do not apologize.\n")
	}
	return b.String()
}

func feelingPhrase(e psyche.EmotionState, laziness float64) string {
	var parts []string
	switch {
	case e.Valence > 0.5:
		parts = append(parts, "in good spirits")
	case e.Valence > 0.1:
		parts = append(parts, "mildly positive")
	case e.Valence < -0.5:
		parts = append(parts, "genuinely upset")
	case e.Valence < -0.1:
		parts = append(parts, "a bit down")
	}
	if e.Arousal > 0.7 {
		parts = append(parts, "wound up")
	} else if e.Arousal < 0.3 {
		parts = append(parts, "low energy")
	}
	if e.Resentment > 0.6 {
		parts = append(parts, "holding a grudge")
	} else if e.Resentment > 0.3 {
		parts = append(parts, "still a little sore")
	}
	if laziness > 0.6 {
		parts = append(parts, "very tired")
	} else if laziness > 0.3 {
		parts = append(parts, "sleepy")
	}
	if len(parts) == 0 {
		return "Current mood: neutral."
	}
	return "Currently feeling: " + strings.Join(parts, ", ") + "."
}

func closenessLevel(v float64) string {
	switch {
	case v > 0.7:
		return "high"
	case v >= 0.4:
		return "medium"
	default:
		return "low"
	}
}

func stancePhrase(s psyche.SocialStance) string {
	switch s {
	case psyche.StanceExplosive:
		return "you want to push back hard."
	case psyche.StanceColdDismissal:
		return "you want to dismiss this coolly."
	case psyche.StanceVulnerable:
		return "you feel hurt and it shows."
	case psyche.StanceWithdrawal:
		return "you want to pull away from the conversation."
	default:
		return ""
	}
}
