package timedquiz

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

const submitQuestionsTool = "submit_questions"

// questionSchema describes one question in tool arguments. The model answers
// with an index; it is converted to the option text on the way in.
var questionSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"text": map[string]interface{}{
			"type":        "string",
			"description": "The question text",
		},
		"options": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "string",
			},
			"description": "Array of 4 multiple choice options",
		},
		"correct_answer": map[string]interface{}{
			"type":        "integer",
			"description": "0-based index of the correct answer",
		},
		"explanation": map[string]interface{}{
			"type":        "string",
			"description": "Brief explanation of why the answer is correct",
		},
	},
	"required": []string{"text", "options", "correct_answer", "explanation"},
}

// toolQuestion is a question as the model returns it
type toolQuestion struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

func (tq toolQuestion) toQuestion(id string) (Question, error) {
	if tq.CorrectAnswer < 0 || tq.CorrectAnswer >= len(tq.Options) {
		return Question{}, fmt.Errorf("%w: correct answer index %d with %d options", ErrInvalidQuestion, tq.CorrectAnswer, len(tq.Options))
	}
	q := Question{
		ID:          id,
		Text:        tq.Text,
		Options:     tq.Options,
		Answer:      tq.Options[tq.CorrectAnswer],
		Explanation: tq.Explanation,
	}
	if err := ValidateQuestion(&q); err != nil {
		return Question{}, err
	}
	return q, nil
}

// QuestionMaker generates candidate questions with a chat model
type QuestionMaker struct {
	client *openai.Client
	model  string
}

// NewQuestionMaker creates a new question maker
func NewQuestionMaker(client *openai.Client, model string) *QuestionMaker {
	return &QuestionMaker{client: client, model: model}
}

// GenerateQuestions generates a batch of candidates for the given topic
func (qm *QuestionMaker) GenerateQuestions(ctx context.Context, req GenerationRequest, batchSize int) ([]*Candidate, error) {
	VerboseLog("Generating %d questions for topic: %s", batchSize, req.Topic)

	resp, err := qm.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: qm.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert exam question writer. Write multiple choice questions with exactly 4 options each.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: qm.buildPrompt(req, batchSize),
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        submitQuestionsTool,
						Description: "Submit generated exam questions",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"questions": map[string]interface{}{
									"type":  "array",
									"items": questionSchema,
								},
							},
							"required": []string{"questions"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type:     openai.ToolTypeFunction,
				Function: openai.ToolFunction{Name: submitQuestionsTool},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	args, err := toolArguments(resp, submitQuestionsTool)
	if err != nil {
		return nil, err
	}

	var toolArgs struct {
		Questions []toolQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(args), &toolArgs); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}

	candidates := make([]*Candidate, 0, len(toolArgs.Questions))
	for _, tq := range toolArgs.Questions {
		q, err := tq.toQuestion(uuid.NewString())
		if err != nil {
			log.Printf("Skipping generated question %q: %v", tq.Text, err)
			continue
		}
		candidates = append(candidates, &Candidate{
			Question: q,
			Topic:    req.Topic,
			Status:   StatusTentative,
		})
	}

	VerboseLog("Generated %d questions", len(candidates))
	return candidates, nil
}

// toolArguments returns the arguments of the first tool call, which must be tool
func toolArguments(resp openai.ChatCompletionResponse, tool string) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}
	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return "", fmt.Errorf("no tool calls in response")
	}
	call := choice.Message.ToolCalls[0]
	if call.Function.Name != tool {
		return "", fmt.Errorf("unexpected tool call: %s", call.Function.Name)
	}
	return call.Function.Arguments, nil
}

func (qm *QuestionMaker) buildPrompt(req GenerationRequest, batchSize int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Generate %d multiple choice questions about: %s\n\n", batchSize, req.Topic))

	if req.SourceMaterial != "" {
		sb.WriteString("Use the following source material as reference:\n")
		sb.WriteString(req.SourceMaterial)
		sb.WriteString("\n\n")
	}

	if req.Difficulty != "" {
		sb.WriteString(fmt.Sprintf("Difficulty level: %s\n\n", req.Difficulty))
	}

	sb.WriteString("Requirements:\n")
	sb.WriteString("- Each question must have exactly 4 distinct options\n")
	sb.WriteString("- Exactly one option is correct\n")
	sb.WriteString("- Incorrect options should be plausible but clearly wrong\n")
	sb.WriteString("- Avoid questions where the answer is given away in the question text\n")
	sb.WriteString("- Provide a short explanation of why the correct answer is right; it is shown after the exam\n")
	sb.WriteString("- Use the submit_questions tool to return your questions\n")

	return sb.String()
}
