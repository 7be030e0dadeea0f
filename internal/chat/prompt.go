package chat

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/icp-profiler/internal/models"
)

const (
	// FallbackReply replaces the model reply when the service fails.
	FallbackReply = "(System) Sorry, I lost my train of thought. Please try again."

	greetingTemplate = "Hi, I'm a %s. I've got a minute. What's this solution you're talking about?"
)

// Greeting is the locally synthesized first message of every session.
func Greeting(persona models.Persona) string {
	return fmt.Sprintf(greetingTemplate, persona.Role)
}

func pitchContext(productContext string) string {
	return fmt.Sprintf(`The user is pitching this product: "%s"`, productContext)
}

// SystemInstruction seeds the chat channel with the persona to roleplay.
func SystemInstruction(persona models.Persona, productContext string) string {
	return fmt.Sprintf(`You are a roleplay character.
Character Profile:
Role: %s
Industry: %s
Bio: %s
Pain Points: %s
Hangout Spots: %s

Context: %s

Your goal is to simulate a real conversation with a founder trying to sell to you.
Be realistic. If the pitch is bad, be skeptical. If the pitch addresses your pain points, be interested.
Keep responses concise (under 3 sentences usually) and conversational.
Do NOT break character.`,
		persona.Role,
		persona.Industry,
		persona.Bio,
		strings.Join(persona.PainPoints, ", "),
		strings.Join(persona.PreferredChannels, ", "),
		pitchContext(productContext),
	)
}
