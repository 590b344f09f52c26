package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"timedquiz"

	"github.com/gorilla/sessions"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
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

	if cfg.Server.UsesDefaultSecret() {
		log.Printf("WARNING: session cookies are signed with the default secret. Set SESSION_SECRET before exposing this server.")
	}

	server := NewServer(store, newSessionStore(cfg.Server), cfg.Quiz)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Starting server on port %s (%d questions, %s, pass ratio %.2f)",
		cfg.Server.Port, cfg.Quiz.QuestionCount, cfg.Quiz.Duration, cfg.Quiz.PassRatio)
	log.Fatal(httpServer.ListenAndServe())
}

// newSessionStore keeps descriptors either entirely in the cookie or on disk
// with only the session id in the cookie. Large banks need the filesystem
// store because cookies are capped at 4KB.
func newSessionStore(cfg timedquiz.ServerConfig) sessions.Store {
	opts := sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if cfg.SessionStore == "cookie" {
		store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
		store.Options = &opts
		return store
	}

	store := sessions.NewFilesystemStore(cfg.SessionDir, []byte(cfg.SessionSecret))
	store.MaxLength(0)
	store.Options = &opts
	return store
}
