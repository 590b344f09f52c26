package timedquiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	evaluateQuestionTool = "evaluate_question"
	maxRevisions         = 3
)

// QuestionChecker reviews and possibly revises candidates with a chat model
type QuestionChecker struct {
	client *openai.Client
	model  string
}

// NewQuestionChecker creates a new question checker
func NewQuestionChecker(client *openai.Client, model string) *QuestionChecker {
	return &QuestionChecker{client: client, model: model}
}

// CheckQuestion reviews a single candidate
func (qc *QuestionChecker) CheckQuestion(ctx context.Context, c *Candidate) (*ValidationResult, error) {
	VerboseLog("Checking question: %s (revision count: %d)", c.ID, c.RevisionCount)

	if c.RevisionCount >= maxRevisions {
		return &ValidationResult{
			QuestionID: c.ID,
			Action:     ActionReject,
			Reason:     fmt.Sprintf("rejected after %d revisions", c.RevisionCount),
		}, nil
	}

	resp, err := qc.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: qc.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert exam question reviewer. Evaluate questions for correctness, clarity, and fairness.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: qc.buildPrompt(c),
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        evaluateQuestionTool,
						Description: "Evaluate an exam question and decide whether to accept, reject, or revise it",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"reason": map[string]interface{}{
									"type":        "string",
									"description": "Explanation for the decision",
								},
								"action": map[string]interface{}{
									"type":        "string",
									"enum":        []string{"accept", "reject", "revise"},
									"description": "What to do with this question",
								},
								"revised_question": questionSchema,
							},
							"required": []string{"reason", "action"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type:     openai.ToolTypeFunction,
				Function: openai.ToolFunction{Name: evaluateQuestionTool},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to check question: %w", err)
	}

	args, err := toolArguments(resp, evaluateQuestionTool)
	if err != nil {
		return nil, err
	}

	var toolArgs struct {
		Reason          string        `json:"reason"`
		Action          string        `json:"action"`
		RevisedQuestion *toolQuestion `json:"revised_question,omitempty"`
	}
	if err := json.Unmarshal([]byte(args), &toolArgs); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}

	result := &ValidationResult{
		QuestionID: c.ID,
		Action:     ValidationAction(toolArgs.Action),
		Reason:     toolArgs.Reason,
	}

	if result.Action == ActionRevise && toolArgs.RevisedQuestion != nil {
		q, err := toolArgs.RevisedQuestion.toQuestion(c.ID)
		if err != nil {
			result.Action = ActionReject
			result.Reason = fmt.Sprintf("unusable revision: %v", err)
		} else {
			result.Revised = &Candidate{
				Question:      q,
				Topic:         c.Topic,
				Status:        StatusRevised,
				RevisionCount: c.RevisionCount + 1,
			}
		}
	}

	VerboseLog("Question %s: %s - %s", c.ID, result.Action, result.Reason)
	return result, nil
}

func (qc *QuestionChecker) buildPrompt(c *Candidate) string {
	var sb strings.Builder

	sb.WriteString("Evaluate the following exam question:\n\n")
	sb.WriteString(fmt.Sprintf("Topic: %s\n\n", c.Topic))
	sb.WriteString(fmt.Sprintf("Question: %s\n\n", c.Text))

	sb.WriteString("Options:\n")
	for i, option := range c.Options {
		marker := " "
		if option == c.Answer {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s%d. %s\n", marker, i+1, option))
	}

	sb.WriteString(fmt.Sprintf("\nCorrect Answer: %s\n", c.Answer))
	sb.WriteString(fmt.Sprintf("Explanation: %s\n\n", c.Explanation))

	sb.WriteString("Reject the question if the answer appears in the question text, if the text gives the answer away, or if it is off topic.\n")
	sb.WriteString("Otherwise check that:\n")
	sb.WriteString("1. The question is clear and unambiguous\n")
	sb.WriteString("2. The marked answer is actually correct and the only correct option\n")
	sb.WriteString("3. The incorrect options are plausible but clearly wrong\n")
	sb.WriteString("4. The explanation says why the answer is correct\n\n")

	sb.WriteString("Decision guidelines:\n")
	sb.WriteString("- REJECT: fundamental problems\n")
	sb.WriteString("- REVISE: the question has potential but needs improvements; provide the complete revised question\n")
	sb.WriteString("- ACCEPT: the question is good as-is; a basic explanation is acceptable\n")

	return sb.String()
}
