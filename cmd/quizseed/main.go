package main

import (
	"context"
	"flag"
	"log"
	"time"

	"timedquiz"
)

func main() {
	var (
		configPath     = flag.String("config", "", "Path to YAML config file")
		questionsFile  = flag.String("file", "", "JSON file of questions to import")
		topic          = flag.String("topic", "", "Generate questions about this topic")
		numQuestions   = flag.Int("questions", 10, "Number of questions to generate")
		sourceMaterial = flag.String("source", "", "Source material to base generated questions on")
		difficulty     = flag.String("difficulty", "medium", "Difficulty level (easy, medium, hard)")
		verbose        = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	if *questionsFile == "" && *topic == "" {
		log.Fatal("Nothing to do. Use -file to import questions and/or -topic to generate them.")
	}

	cfg, err := timedquiz.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	timedquiz.SetVerbose(*verbose || cfg.Verbose)

	store, err := timedquiz.OpenStore(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if *questionsFile != "" {
		questions, err := timedquiz.LoadQuestionsFile(*questionsFile)
		if err != nil {
			log.Fatalf("Failed to load questions: %v", err)
		}
		created, err := timedquiz.SeedQuestions(ctx, store, questions)
		if err != nil {
			log.Fatalf("Failed to import questions after %d: %v", created, err)
		}
		log.Printf("Imported %d of %d questions from %s", created, len(questions), *questionsFile)
	}

	if *topic != "" {
		if cfg.OpenAI.APIKey == "" {
			log.Fatal("OpenAI API key is required to generate questions. Set OPENAI_API_KEY.")
		}

		existing, err := store.ListQuestions(ctx)
		if err != nil {
			log.Fatalf("Failed to load question bank: %v", err)
		}

		generator := timedquiz.NewGenerator(timedquiz.NewOpenAIClient(cfg.OpenAI), cfg.OpenAI.Model)
		questions, err := generator.Generate(ctx, timedquiz.GenerationRequest{
			Topic:          *topic,
			NumQuestions:   *numQuestions,
			SourceMaterial: *sourceMaterial,
			Difficulty:     *difficulty,
		}, existing)
		if err != nil {
			// Keep whatever was accepted before the failure.
			log.Printf("Question generation stopped early: %v", err)
		}

		created, err := timedquiz.SeedQuestions(ctx, store, questions)
		if err != nil {
			log.Fatalf("Failed to store generated questions after %d: %v", created, err)
		}
		log.Printf("Stored %d generated questions about %q", created, *topic)
	}
}
