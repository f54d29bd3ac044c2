package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"civicvoice/internal/domain/entity"
	"civicvoice/pkg/logger"
)

// TextGenerator is a single-turn call into the hosted language model.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const adminSuggestionsFallback = "Unable to generate suggestions at this time."

// AIGateway builds prompts for the three AI features and falls back to
// static text whenever the model call or parsing fails. None of its methods
// return an error.
type AIGateway struct {
	generator TextGenerator
}

func NewAIGateway(generator TextGenerator) *AIGateway {
	return &AIGateway{generator: generator}
}

func (g *AIGateway) AnalyzeGrievance(ctx context.Context, title, description, category, address string) entity.GrievanceAnalysis {
	prompt := fmt.Sprintf(`
Analyze this grievance:
Title: %s
Description: %s
Category: %s
Address: %s

Provide a JSON response with:
1. "priority": "High", "Medium", or "Low" based on urgency and location context.
2. "summary": A one-sentence summary including the location.
3. "tags": Array of 3 keywords.
4. "cause": The likely root cause of the problem (e.g., "Infrastructure Failure", "Lack of Maintenance", "Weather Damage", "Human Error", "Traffic Congestion").
`, title, description, category, address)

	fallback := entity.GrievanceAnalysis{
		Priority: entity.PriorityMedium,
		Summary:  truncate(description, 50) + "...",
		Tags:     []string{category},
		Cause:    "Unknown",
	}

	text, err := g.generate(ctx, prompt)
	if err != nil {
		logger.Warn("AI analysis failed, using fallback: %v", err)
		return fallback
	}

	var analysis entity.GrievanceAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &analysis); err != nil {
		logger.Warn("AI analysis returned unparseable JSON, using fallback: %v", err)
		return fallback
	}

	analysis.Priority = entity.NormalizePriority(analysis.Priority)
	if strings.TrimSpace(analysis.Summary) == "" {
		analysis.Summary = "No summary available"
	}
	if analysis.Tags == nil {
		analysis.Tags = []string{}
	}
	if strings.TrimSpace(analysis.Cause) == "" {
		analysis.Cause = "Pending Analysis"
	}
	return analysis
}

// SocialPostInput carries only what may be published. Address must already
// be the public address.
type SocialPostInput struct {
	Title        string
	Description  string
	Cause        string
	Municipality string
	Address      string
}

func (g *AIGateway) GenerateSocialPost(ctx context.Context, in SocialPostInput) string {
	cause := in.Cause
	if cause == "" {
		cause = "Under Investigation"
	}

	prompt := fmt.Sprintf(`
You are a community journalist reporting on local issues. Write a short, engaging social media post (like a Tweet or Facebook post) about this unresolved community issue to raise awareness.

Start the post by clearly stating the classification of the problem (e.g., "🚨 Infrastructure Alert", "⚠️ Maintenance Issue").
Focus on the specific details of the grievance, the likely cause, and the impact on the community.
Use emojis.

Issue: %s
Details: %s
Likely Cause: %s
Location: %s
Specific Address: %s
`, in.Title, in.Description, cause, in.Municipality, in.Address)

	text, err := g.generate(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			logger.Warn("social post generation failed, using fallback: %v", err)
		}
		return fmt.Sprintf("📢 Attention %s: %s at %s needs attention!", in.Municipality, in.Title, in.Address)
	}
	return strings.TrimSpace(text)
}

func (g *AIGateway) GenerateAdminSuggestions(ctx context.Context, grievances []*entity.Grievance) string {
	lines := make([]string, 0, len(grievances))
	for _, gr := range grievances {
		lines = append(lines, fmt.Sprintf("- %s: %s (%s)", gr.Category, gr.Title, gr.Status))
	}

	prompt := fmt.Sprintf(`
You are a government senior data analyst. Based on these grievances provided highlight those issues and mention what are the problems that people are facing.give a suitable timeline to resolve these issues and how to manage the time for every issue effectively. make it easy to read and small.
Grievances:
%s
`, strings.Join(lines, "\n"))

	text, err := g.generate(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			logger.Warn("admin suggestions failed, using fallback: %v", err)
		}
		return adminSuggestionsFallback
	}
	return text
}

func (g *AIGateway) generate(ctx context.Context, prompt string) (string, error) {
	if g.generator == nil {
		return "", fmt.Errorf("no language model configured")
	}
	return g.generator.Generate(ctx, prompt)
}

// stripCodeFence removes ```json / ``` wrappers models like to add.
func stripCodeFence(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
