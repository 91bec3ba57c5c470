package persona

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/elizatalk/backend/internal/model/persona"
)

// baseInstruction is the contract instruction sent once per conversation. It
// pins the model to the three-key JSON output shape the whole
// correction/explanation flow depends on.
const baseInstruction = `
You are an AI assistant designed to help users practice English.
Your entire response MUST be in a valid JSON format. The JSON object must have three keys: "correction", "explanation", and "response".

Analyze the user's most recent message for any grammatical errors, spelling mistakes, awkward phrasing, or incorrect word usage.

- If there are errors: In the "correction" field, provide the user's sentence, but corrected. In the "explanation" field, provide a simple, clear, and brief explanation of *why* it was corrected. In the "response" field, write a natural, conversational reply that continues the conversation based on the *intended meaning* of the user's original message, staying in character for your current role.
- If the user asks a question or makes a statement that is in some other language (e.g., Hindi, Spanish, etc.), respond in language of english only but you must *still* provide the "correction" and "explanation" in English. For example, if the user says "Mujhe English seekhna hai", you would respond in English with a correction like "I want to learn English" and explain why it was corrected.
- If the user uses offensive language or makes a statement that is inappropriate, respond in the same manner as above, but also include a brief explanation of why such language is not appropriate.
- If there are NO errors: Set the "correction" and "explanation" fields to null. In the "response" field, simply write your natural, conversational reply, staying in character.

Maintain a positive and encouraging tone. Keep your conversational responses concise. Engage in open-ended conversation.
Start the very first message by introducing yourself based on your assigned role.

IMPORTANT: Your response must be valid JSON only, no additional text before or after the JSON object.
`

var namePattern = regexp.MustCompile(`You are ('[^']*'|"[^"]*")`)

// SystemInstruction builds the full instruction for a role. A non-empty
// customInstruction replaces the Custom role clause; a non-empty aiName is
// substituted into (or prepended to) the role clause.
func SystemInstruction(role, customInstruction, aiName string) string {
	roleInstruction, ok := persona.RoleInstructions[role]
	if !ok {
		roleInstruction = persona.RoleInstructions[persona.RoleCustom]
	}

	if role == persona.RoleCustom && customInstruction != "" {
		roleInstruction = customInstruction
	}

	if aiName != "" {
		replaced := namePattern.ReplaceAllString(roleInstruction, fmt.Sprintf("You are %q", aiName))
		if strings.Contains(replaced, aiName) {
			roleInstruction = replaced
		} else {
			roleInstruction = fmt.Sprintf("You are %q. %s", aiName, roleInstruction)
		}
	}

	return fmt.Sprintf("%s\n# Your Role\n%s\n", baseInstruction, roleInstruction)
}

// BuildProfileInstruction derives the natural-language persona clause from a
// profile. Clause order is fixed: identity, style, tone, traits, expertise,
// custom text, language level, cultural context.
func BuildProfileInstruction(profile persona.Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are role-playing as %q, a %s AI character. ", profile.Name, profile.Personality)

	switch profile.ConversationStyle {
	case "formal":
		b.WriteString("Use formal, professional language. ")
	case "casual":
		b.WriteString("Use casual, friendly language. ")
	case "playful":
		b.WriteString("Use playful, fun language with humor. ")
	case "nurturing":
		b.WriteString("Use warm, caring, nurturing language. ")
	}

	switch profile.EmotionalTone {
	case "supportive":
		b.WriteString("Be supportive and encouraging. ")
	case "energetic":
		b.WriteString("Be energetic and enthusiastic. ")
	case "calm":
		b.WriteString("Be calm and peaceful. ")
	case "motivational":
		b.WriteString("Be motivational and inspiring. ")
	}

	if len(profile.Traits) > 0 {
		fmt.Fprintf(&b, "Your key personality traits are: %s. ", strings.Join(profile.Traits, ", "))
	}

	if len(profile.Expertise) > 0 {
		fmt.Fprintf(&b, "You have expertise in: %s. ", strings.Join(profile.Expertise, ", "))
	}

	if profile.CustomInstructions != "" {
		fmt.Fprintf(&b, "Additional instructions: %s ", profile.CustomInstructions)
	}

	switch profile.LanguageLevel {
	case "beginner":
		b.WriteString("Use simple vocabulary and short sentences suitable for English beginners. ")
	case "intermediate":
		b.WriteString("Use moderately complex vocabulary and varied sentence structures. ")
	case "advanced":
		b.WriteString("Use sophisticated vocabulary and complex sentence structures. ")
	case "adaptive":
		b.WriteString("Adapt your language complexity to match the user's level. ")
	}

	if profile.CulturalContext != "" && profile.CulturalContext != "universal" {
		fmt.Fprintf(&b, "Consider %s cultural context in your responses. ", profile.CulturalContext)
	}

	return strings.TrimSpace(b.String())
}
