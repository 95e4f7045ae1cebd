// Package llm asks a hosted language model to read a CV and return the
// candidate's skills, experience and education as structured data.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Provider names accepted in configuration
const (
	ProviderGateway = "gateway"
	ProviderGemini  = "gemini"
)

var (
	// ErrModelRequest means the provider rejected or failed the call
	ErrModelRequest = errors.New("AI analysis request failed")
	// ErrModelResponse means the provider answered with content we cannot use
	ErrModelResponse = errors.New("AI analysis returned an invalid response")
)

// SystemPrompt frames the model as a recruiter
const SystemPrompt = "You are a professional recruiter analyzing CVs. Extract structured information and calculate match scores."

// Analysis is the structured reading of one CV
type Analysis struct {
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years"`
	Education       string   `json:"education"`
	MatchScore      int      `json:"match_score"`
}

// Analyzer extracts an Analysis from CV text for a job's required skills
type Analyzer interface {
	Analyze(ctx context.Context, requiredSkills []string, cvText string) (*Analysis, error)
}

// completer sends one system+user exchange and returns the raw reply text
type completer interface {
	complete(ctx context.Context, system, user string) (string, error)
	name() string
}

// Config selects and configures a provider
type Config struct {
	Provider   string
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
}

// ModelAnalyzer turns completer replies into Analysis values
type ModelAnalyzer struct {
	backend completer
	logger  *slog.Logger
}

// New builds the analyzer for cfg.Provider
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (*ModelAnalyzer, error) {
	var (
		backend completer
		err     error
	)

	switch cfg.Provider {
	case ProviderGateway, "":
		backend, err = newGateway(cfg)
	case ProviderGemini:
		backend, err = newGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return newModelAnalyzer(backend, logger), nil
}

func newModelAnalyzer(backend completer, logger *slog.Logger) *ModelAnalyzer {
	return &ModelAnalyzer{backend: backend, logger: logger}
}

// Analyze implements Analyzer
func (a *ModelAnalyzer) Analyze(ctx context.Context, requiredSkills []string, cvText string) (*Analysis, error) {
	reply, err := a.backend.complete(ctx, SystemPrompt, BuildPrompt(requiredSkills, cvText))
	if err != nil {
		a.logger.Error("AI analysis call failed",
			slog.String("provider", a.backend.name()),
			slog.Any("error", err),
		)
		return nil, err
	}

	analysis, err := ParseAnalysis(reply)
	if err != nil {
		a.logger.Error("AI analysis reply could not be parsed",
			slog.String("provider", a.backend.name()),
			slog.String("reply", truncateForLog(reply, 500)),
			slog.Any("error", err),
		)
		return nil, err
	}

	a.logger.Info("AI analysis complete",
		slog.String("provider", a.backend.name()),
		slog.Int("skills", len(analysis.Skills)),
		slog.Int("model_match_score", analysis.MatchScore),
	)
	return analysis, nil
}

// BuildPrompt renders the user message sent with SystemPrompt
func BuildPrompt(requiredSkills []string, cvText string) string {
	var sb strings.Builder
	sb.WriteString("Analyze this CV and provide a JSON response with the following structure:\n")
	sb.WriteString("{\n")
	sb.WriteString(`  "skills": ["skill1", "skill2", ...],` + "\n")
	sb.WriteString(`  "experience_years": number,` + "\n")
	sb.WriteString(`  "education": "string",` + "\n")
	sb.WriteString(`  "match_score": number (0-100 based on required skills)` + "\n")
	sb.WriteString("}\n\n")
	sb.WriteString("Required skills for the job: ")
	sb.WriteString(strings.Join(requiredSkills, ", "))
	sb.WriteString("\n\nCV Text: ")
	sb.WriteString(cvText)
	sb.WriteString("\n\nList only skills the CV supports. Assign match score based on skill overlap.")
	return sb.String()
}

func truncateForLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
