package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"timedquiz"
)

func main() {
	var (
		configPath   = flag.String("config", "", "Path to YAML config file")
		progressFile = flag.String("progress", "quiz-progress.json", "File the in-progress session is saved to")
	)
	flag.Parse()

	cfg, err := timedquiz.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	timedquiz.SetVerbose(cfg.Verbose)

	store, err := timedquiz.OpenStore(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	session, err := timedquiz.Start(context.Background(), cfg.Quiz.Options(), store, store, timedquiz.NewFileDescriptorStore(*progressFile))
	if errors.Is(err, timedquiz.ErrEmptyBank) {
		log.Fatal("The question bank is empty. Seed it with quizseed first.")
	}
	if err != nil {
		log.Fatalf("Failed to start quiz: %v", err)
	}

	if session.Resumed() {
		fmt.Println("Resuming your saved quiz.")
	}
	runSession(session, os.Stdin)
	printResults(session)
}

// runSession plays from in while the timer runs. It returns only after the
// timer has stopped, so a timed-out submission is never cut off by the store
// closing.
func runSession(session *timedquiz.Session, in io.Reader) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.RunTimer(ctx)
	}()

	play(session, bufio.NewScanner(in))
	cancel()
	<-done
}

// play reads commands until the session finishes or input ends. The timer may
// finish the session while waiting for input; the next command notices.
func play(session *timedquiz.Session, scanner *bufio.Scanner) {
	for !session.Finished() {
		q := session.CurrentQuestion()
		fmt.Printf("\nTime remaining: %s\n", timedquiz.FormatRemaining(session.Remaining()))
		fmt.Printf("Question %d of %d\n%s\n\n", session.CurrentIndex()+1, session.Total(), q.Text)

		selected, _ := session.Answer(q.ID)
		for i, option := range q.Options {
			marker := " "
			if option == selected {
				marker = "*"
			}
			fmt.Printf("%s %d) %s\n", marker, i+1, option)
		}
		fmt.Print("\nAnswer number, (n)ext, (b)ack or (q)uit: ")

		if !scanner.Scan() {
			return
		}
		input := strings.ToLower(strings.TrimSpace(scanner.Text()))

		var err error
		switch input {
		case "n", "next":
			err = session.Next()
		case "b", "back":
			err = session.Previous()
		case "q", "quit":
			fmt.Println("Progress saved. Run again to resume.")
			return
		default:
			n, convErr := strconv.Atoi(input)
			if convErr != nil || n < 1 || n > len(q.Options) {
				fmt.Printf("Please enter a number between 1 and %d\n", len(q.Options))
				continue
			}
			err = session.SelectAnswer(q.Options[n-1])
		}

		switch {
		case err == nil, errors.Is(err, timedquiz.ErrFinished):
		case errors.Is(err, timedquiz.ErrUnanswered):
			fmt.Println("Answer the question before moving on.")
		default:
			log.Printf("Failed to update quiz: %v", err)
		}
	}
}

func printResults(session *timedquiz.Session) {
	if !session.Finished() {
		return
	}

	fmt.Println()
	fmt.Println(strings.Repeat("─", 50))
	if session.FinishReason() == timedquiz.FinishTimedOut {
		fmt.Println("Time is up!")
	}
	fmt.Printf("Score: %d / %d\n", session.Score(), session.Total())
	fmt.Printf("Time remaining: %s\n", timedquiz.FormatRemaining(session.Remaining()))
	if session.Passed() {
		fmt.Println("PASS")
	} else {
		fmt.Printf("FAIL (pass mark %d)\n", session.PassMark())
	}
	if err := session.SubmissionErr(); err != nil {
		fmt.Printf("Your result could not be saved (%v); it will be retried next time.\n", err)
	}
	fmt.Println()

	for _, r := range session.Review() {
		fmt.Printf("%d. %s\n", r.Number, r.Question)
		answer := r.Answer
		if !r.Answered {
			answer = "No answer"
		}
		fmt.Printf("   Your answer: %s\n", answer)
		if !r.Correct {
			fmt.Printf("   Correct answer: %s\n", r.CorrectAnswer)
		}
		if r.Explanation != "" {
			fmt.Printf("   %s\n", r.Explanation)
		}
	}
}
