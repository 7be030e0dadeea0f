package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/BerylCAtieno/icp-profiler/internal/a2a"
	"github.com/BerylCAtieno/icp-profiler/internal/models"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

const defaultPitch = "A B2B SaaS tool that helps remote engineering teams automate their daily standups via Slack."

type TestClient struct {
	baseURL string
	client  *http.Client
	pitch   string

	// set by the analyze test, reused by the chat test
	analysis *models.AnalysisResult
}

func NewTestClient(baseURL, pitch string) *TestClient {
	return &TestClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		pitch:   pitch,
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the profiler")
	testType := flag.String("test", "all", "Test type: all, health, agent-card, analyze, chat, a2a")
	pitch := flag.String("pitch", defaultPitch, "Product description to analyze")
	flag.Parse()

	client := NewTestClient(*baseURL, *pitch)

	printHeader("ICP Profiler - Smoke Tests")
	fmt.Printf("%sBase URL: %s%s\n\n", colorCyan, client.baseURL, colorReset)

	tests := map[string]func() bool{
		"health":     client.testHealthCheck,
		"agent-card": client.testAgentCard,
		"analyze":    client.testAnalyze,
		"chat":       client.testChat,
		"a2a":        client.testA2A,
	}

	if *testType == "all" {
		client.runAllTests()
		return
	}
	fn, ok := tests[*testType]
	if !ok {
		printError(fmt.Sprintf("Unknown test type: %s", *testType))
		fmt.Println("\nAvailable tests: all, health, agent-card, analyze, chat, a2a")
		os.Exit(1)
	}
	if !fn() {
		os.Exit(1)
	}
}

func (tc *TestClient) runAllTests() {
	tests := []struct {
		name string
		fn   func() bool
	}{
		{"Health Check", tc.testHealthCheck},
		{"Agent Card", tc.testAgentCard},
		{"Analyze", tc.testAnalyze},
		{"Persona Chat", tc.testChat},
		{"A2A Profiler", tc.testA2A},
	}

	passed := 0
	failed := 0

	for _, test := range tests {
		if test.fn() {
			passed++
		} else {
			failed++
		}
		fmt.Println()
	}

	printHeader("Test Summary")
	fmt.Printf("%sPassed: %d%s\n", colorGreen, passed, colorReset)
	fmt.Printf("%sFailed: %d%s\n", colorRed, failed, colorReset)
	fmt.Printf("Total: %d\n", passed+failed)

	if failed > 0 {
		os.Exit(1)
	}
}

// call sends a request and decodes a JSON response into out when out is non-nil.
func (tc *TestClient) call(method, path string, in, out any, wantStatus int) bool {
	url := tc.baseURL + path
	fmt.Printf("%s %s\n", method, url)

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			printError(fmt.Sprintf("Encoding request failed: %v", err))
			return false
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		printError(fmt.Sprintf("Building request failed: %v", err))
		return false
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		printError(fmt.Sprintf("Expected status %d, got %d", wantStatus, resp.StatusCode))
		fmt.Printf("Response: %s\n", string(data))
		return false
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			printError(fmt.Sprintf("Invalid JSON response: %v", err))
			return false
		}
	}
	return true
}

func (tc *TestClient) testHealthCheck() bool {
	printTestHeader("Testing Health Check Endpoint")

	resp, err := tc.client.Get(tc.baseURL + "/health")
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "OK" {
		printError(fmt.Sprintf("Expected 200 'OK', got %d '%s'", resp.StatusCode, string(body)))
		return false
	}

	printSuccess("Health check passed")
	return true
}

func (tc *TestClient) testAgentCard() bool {
	printTestHeader("Testing Agent Card Endpoint")

	var card a2a.AgentCard
	if !tc.call(http.MethodGet, "/.well-known/agent.json", nil, &card, http.StatusOK) {
		return false
	}
	if card.Name == "" || len(card.Skills) == 0 || card.Endpoints["a2a"] == "" {
		printError("Agent card is missing name, skills or endpoints")
		return false
	}

	printSuccess(fmt.Sprintf("Agent card is valid: %s v%s", card.Name, card.Version))
	return true
}

func (tc *TestClient) testAnalyze() bool {
	printTestHeader("Testing Product Analysis")
	fmt.Printf("%sPitch:%s %s\n\n", colorCyan, colorReset, tc.pitch)

	var result models.AnalysisResult
	req := map[string]string{"productDescription": tc.pitch}
	if !tc.call(http.MethodPost, "/api/analyze", req, &result, http.StatusOK) {
		return false
	}
	if len(result.Personas) != models.PersonasPerAnalysis {
		printError(fmt.Sprintf("Expected %d personas, got %d", models.PersonasPerAnalysis, len(result.Personas)))
		return false
	}

	printSuccess("Analysis completed")
	fmt.Printf("\n%sMarket overview:%s %s\n", colorYellow, colorReset, result.MarketOverview)
	for _, p := range result.Personas {
		fmt.Printf("  - %s (%s) %.0f/100: %s\n", p.Role, p.Industry, p.CompatibilityScore, p.MarketingHook)
	}

	tc.analysis = &result
	return true
}

func (tc *TestClient) testChat() bool {
	printTestHeader("Testing Persona Chat")

	if tc.analysis == nil && !tc.testAnalyze() {
		return false
	}
	persona := tc.analysis.Personas[0]

	var snap models.SessionSnapshot
	open := map[string]any{"persona": persona, "productContext": tc.pitch}
	if !tc.call(http.MethodPost, "/api/chats", open, &snap, http.StatusCreated) {
		return false
	}
	fmt.Printf("%s%s:%s %s\n", colorYellow, persona.Role, colorReset, snap.Messages[0].Text)

	var sent struct {
		Reply   models.ChatMessage     `json:"reply"`
		Session models.SessionSnapshot `json:"session"`
	}
	msg := map[string]string{"text": "It cuts your standup to zero minutes. Would you try it?"}
	if !tc.call(http.MethodPost, "/api/chats/"+snap.ID+"/messages", msg, &sent, http.StatusOK) {
		return false
	}
	fmt.Printf("%s%s:%s %s\n", colorYellow, persona.Role, colorReset, sent.Reply.Text)

	var reset models.SessionSnapshot
	if !tc.call(http.MethodPost, "/api/chats/"+snap.ID+"/reset", nil, &reset, http.StatusOK) {
		return false
	}
	if len(reset.Messages) != 1 {
		printError(fmt.Sprintf("Expected only the greeting after reset, got %d messages", len(reset.Messages)))
		return false
	}

	if !tc.call(http.MethodDelete, "/api/chats/"+snap.ID, nil, nil, http.StatusNoContent) {
		return false
	}

	printSuccess("Chat opened, answered, reset and closed")
	return true
}

func (tc *TestClient) testA2A() bool {
	printTestHeader("Testing A2A Profiler")

	request := map[string]any{
		"jsonrpc": "2.0",
		"id":      fmt.Sprintf("smoke-%d", time.Now().Unix()),
		"method":  "message/send",
		"params": a2a.MessageParams{
			Message: a2a.Message{
				Kind:  "message",
				Role:  a2a.RoleUser,
				Parts: []a2a.MessagePart{a2a.TextPart(tc.pitch)},
			},
			Configuration: a2a.MessageConfiguration{
				Blocking:            true,
				AcceptedOutputModes: []string{"text", "data"},
			},
		},
	}

	var resp struct {
		Result *a2a.TaskResult   `json:"result"`
		Error  *a2a.JSONRPCError `json:"error"`
	}
	if !tc.call(http.MethodPost, "/a2a/profiler", request, &resp, http.StatusOK) {
		return false
	}
	if resp.Error != nil {
		printError(fmt.Sprintf("RPC error %d: %s", resp.Error.Code, resp.Error.Message))
		return false
	}
	if resp.Result == nil || resp.Result.Status.State != a2a.StateCompleted {
		printError("Expected a completed task")
		return false
	}

	printSuccess("A2A analysis completed")
	if msg := resp.Result.Status.Message; msg != nil && len(msg.Parts) > 0 {
		fmt.Println(strings.Repeat("=", 80))
		fmt.Println(msg.Parts[0].Text)
		fmt.Println(strings.Repeat("=", 80))
	}
	return true
}

func printHeader(text string) {
	fmt.Printf("\n%s%s%s\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
	fmt.Printf("%s= %s =%s\n", colorBlue, text, colorReset)
	fmt.Printf("%s%s%s\n\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
}

func printTestHeader(text string) {
	fmt.Printf("%s[TEST] %s%s\n", colorCyan, text, colorReset)
	fmt.Println(strings.Repeat("-", 80))
}

func printSuccess(text string) {
	fmt.Printf("%s✓ %s%s\n", colorGreen, text, colorReset)
}

func printError(text string) {
	fmt.Printf("%s✗ %s%s\n", colorRed, text, colorReset)
}
