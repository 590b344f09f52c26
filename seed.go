package timedquiz

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// LoadQuestionsFile reads a JSON array of questions using the fields
// question, options, answer and answerDesc
func LoadQuestionsFile(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questions file: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse questions file: %w", err)
	}
	return questions, nil
}

// SeedQuestions stores every question, skipping those whose text is already in
// the bank. It stops at the first invalid question and returns how many were
// created before it.
func SeedQuestions(ctx context.Context, store QuestionStore, questions []Question) (int, error) {
	bank, err := store.ListQuestions(ctx)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(bank))
	for _, q := range bank {
		seen[normalizeText(q.Text)] = true
	}

	created := 0
	for i := range questions {
		q := questions[i]
		key := normalizeText(q.Text)
		if seen[key] {
			VerboseLog("Skipping question already in bank: %s", q.Text)
			continue
		}
		if err := store.CreateQuestion(ctx, &q); err != nil {
			return created, fmt.Errorf("question %d: %w", i+1, err)
		}
		seen[key] = true
		created++
	}
	return created, nil
}
