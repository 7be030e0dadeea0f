package a2a

import "github.com/BerylCAtieno/icp-profiler/internal/profiler"

type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Version            string            `json:"version"`
	URL                string            `json:"url,omitempty"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	DefaultInputModes  []string          `json:"defaultInputModes"`
	DefaultOutputModes []string          `json:"defaultOutputModes"`
	Skills             []AgentSkill      `json:"skills"`
	Endpoints          map[string]string `json:"endpoints"`
}

type AgentCapabilities struct {
	Streaming         bool `json:"streaming"`
	PushNotifications bool `json:"pushNotifications"`
}

type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Examples    []string `json:"examples"`
}

const Version = "1.0.0"

// NewAgentCard describes this agent to other A2A agents. baseURL may be empty.
func NewAgentCard(baseURL string) AgentCard {
	return AgentCard{
		Name:               "ICP Profiler",
		Description:        "Turns a product description into three Ideal Customer Profiles with a market overview and go-to-market strategy.",
		Version:            Version,
		URL:                baseURL,
		Capabilities:       AgentCapabilities{},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text", "data"},
		Skills: []AgentSkill{{
			ID:          "icp-analysis",
			Name:        "Ideal Customer Profile analysis",
			Description: "Identifies three distinct high-intent buyer personas, where they hang out, and how to pitch them.",
			Tags:        []string{"marketing", "icp", "personas", "go-to-market"},
			Examples:    profiler.ExamplePitches,
		}},
		Endpoints: map[string]string{
			"a2a": baseURL + "/a2a/profiler",
		},
	}
}
