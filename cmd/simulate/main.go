// Command simulate runs a call against the dialogue engine on the console.
// Type caller utterances line by line; an empty line hangs up. The finished
// call record is printed as JSON, the same shape the API persists.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"callintake_backend/internal/calls/repository"
	"callintake_backend/internal/calls/service"
	"callintake_backend/internal/dialogue"
	"callintake_backend/internal/events"
	"callintake_backend/internal/speech"
	"callintake_backend/platform/config"
	"callintake_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	engine, err := dialogue.NewEngine(dialogue.Options{
		BusinessName:  cfg.GetBusinessName(),
		TemplatesPath: cfg.GetTemplatesPath(),
	})
	if err != nil {
		log.Error("failed to initialize dialogue engine", "error", err)
		panic("failed to initialize dialogue engine: " + err.Error())
	}

	recognizer := speech.NewConsoleRecognizer(os.Stdin)
	synthesizer := speech.NewConsoleSynthesizer(os.Stdout)
	defer recognizer.Stop()
	defer synthesizer.Stop()

	startedAt := time.Now()

	speak := func(text string) {
		_ = synthesizer.Speak("[assistant] "+text, nil, func(err error) {
			log.Error("failed to deliver reply", "error", err)
		})
	}

	speak(engine.Greeting())

	err = recognizer.Start(func(text string) {
		speak(engine.ProcessInput(text))
	}, func(err error) {
		log.Error("recognition error", "error", err)
	})
	if err != nil {
		log.Error("failed to start recognition", "error", err)
		panic("failed to start recognition: " + err.Error())
	}

	<-recognizer.Done()

	// Record the call the way the API does on session end, but against an
	// in-memory store so the simulation never needs infrastructure.
	calls := service.New(repository.NewMemoryStore(), events.NewInMemoryBus(log), log)
	record, err := calls.Finalize(context.Background(), engine.Snapshot(), engine.EmergencySummary(), startedAt, time.Now())
	if err != nil {
		log.Error("failed to finalize call", "error", err)
		panic("failed to finalize call: " + err.Error())
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		panic("failed to encode call record: " + err.Error())
	}

	fmt.Println()
	fmt.Println(string(out))
}
