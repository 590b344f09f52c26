package timedquiz

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// GenerationRequest represents a request to generate questions for the bank
type GenerationRequest struct {
	Topic          string `json:"topic"`
	NumQuestions   int    `json:"num_questions"`
	SourceMaterial string `json:"source_material,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`
}

// CandidateStatus represents the state of a generated question in the pipeline
type CandidateStatus string

const (
	StatusTentative CandidateStatus = "tentative"
	StatusAccepted  CandidateStatus = "accepted"
	StatusRejected  CandidateStatus = "rejected"
	StatusRevised   CandidateStatus = "revised"
)

// Candidate is a generated question awaiting review
type Candidate struct {
	Question
	Topic         string
	Status        CandidateStatus
	RevisionCount int
}

// ValidationAction represents what the reviewer decided to do
type ValidationAction string

const (
	ActionAccept ValidationAction = "accept"
	ActionReject ValidationAction = "reject"
	ActionRevise ValidationAction = "revise"
)

// ValidationResult represents the result of checking a candidate
type ValidationResult struct {
	QuestionID string
	Action     ValidationAction
	Reason     string
	Revised    *Candidate
}

// maxGenerationRounds bounds the generate/review loop
const maxGenerationRounds = 20

// Generator produces reviewed questions for the bank
type Generator struct {
	maker   *QuestionMaker
	checker *QuestionChecker
	pool    *QuestionPool
}

// NewOpenAIClient builds a client for cfg; BaseURL points it at a compatible endpoint
func NewOpenAIClient(cfg OpenAIConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// NewGenerator creates a generator using client and model for both steps
func NewGenerator(client *openai.Client, model string) *Generator {
	if model == "" {
		model = openai.GPT4o
	}
	return &Generator{
		maker:   NewQuestionMaker(client, model),
		checker: NewQuestionChecker(client, model),
		pool:    NewQuestionPool(),
	}
}

// Generate returns req.NumQuestions accepted questions. Questions whose text
// matches one in existing, or one already accepted, are dropped.
func (g *Generator) Generate(ctx context.Context, req GenerationRequest, existing []Question) ([]Question, error) {
	log.Printf("Starting question generation for topic: %s, target questions: %d", req.Topic, req.NumQuestions)

	seen := make(map[string]bool, len(existing))
	for _, q := range existing {
		seen[normalizeText(q.Text)] = true
	}

	accepted := make([]Question, 0, req.NumQuestions)
	batchSize := 5

	for round := 0; len(accepted) < req.NumQuestions; round++ {
		if round >= maxGenerationRounds {
			return accepted, fmt.Errorf("gave up after %d rounds with %d of %d questions", round, len(accepted), req.NumQuestions)
		}

		if g.pool.IsEmpty() {
			VerboseLog("Pool is empty, generating new batch of %d questions", batchSize)
			candidates, err := g.maker.GenerateQuestions(ctx, req, batchSize)
			if err != nil {
				return accepted, fmt.Errorf("failed to generate questions: %w", err)
			}
			for _, c := range candidates {
				g.pool.Add(c)
			}
		}

		processed := g.processPool(ctx)
		for _, c := range processed.accepted {
			key := normalizeText(c.Text)
			if seen[key] {
				VerboseLog("Dropping duplicate question %s", c.ID)
				continue
			}
			seen[key] = true
			accepted = append(accepted, c.Question)
			if len(accepted) == req.NumQuestions {
				break
			}
		}

		log.Printf("Processed %d questions: %d accepted, %d rejected, %d revised",
			len(processed.accepted)+len(processed.rejected)+len(processed.revised),
			len(processed.accepted), len(processed.rejected), len(processed.revised))

		// If we're not making progress, increase batch size
		if len(processed.accepted) == 0 && len(processed.rejected) > 0 {
			batchSize = min(batchSize+2, 10)
			VerboseLog("No questions accepted, increasing batch size to %d", batchSize)
		}
	}

	log.Printf("Question generation complete: %d questions for topic '%s'", len(accepted), req.Topic)
	return accepted, nil
}

// processResult holds the results of processing candidates from the pool
type processResult struct {
	accepted []*Candidate
	rejected []*Candidate
	revised  []*Candidate
}

// processPool reviews every candidate currently in the pool. Revisions go back
// into the pool for the next round.
func (g *Generator) processPool(ctx context.Context) processResult {
	result := processResult{}
	var retry []*Candidate

	for !g.pool.IsEmpty() {
		c := g.pool.Get()
		if c == nil {
			break
		}

		validation, err := g.checker.CheckQuestion(ctx, c)
		if err != nil {
			log.Printf("Error checking question %s: %v", c.ID, err)
			retry = append(retry, c)
			continue
		}

		switch validation.Action {
		case ActionAccept:
			c.Status = StatusAccepted
			result.accepted = append(result.accepted, c)
		case ActionRevise:
			if validation.Revised != nil {
				retry = append(retry, validation.Revised)
				result.revised = append(result.revised, validation.Revised)
				continue
			}
			c.Status = StatusRejected
			result.rejected = append(result.rejected, c)
		default:
			c.Status = StatusRejected
			result.rejected = append(result.rejected, c)
		}
	}

	for _, c := range retry {
		g.pool.Add(c)
	}
	return result
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
