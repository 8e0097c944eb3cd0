package speech

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ConsoleRecognizer reads caller utterances line by line from a reader,
// usually stdin. An empty line or EOF ends recognition.
type ConsoleRecognizer struct {
	in   io.Reader
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewConsoleRecognizer creates a recognizer over the given reader.
func NewConsoleRecognizer(in io.Reader) *ConsoleRecognizer {
	return &ConsoleRecognizer{
		in:   in,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start reads lines until EOF, an empty line, or Stop.
func (r *ConsoleRecognizer) Start(onText func(text string), onErr func(err error)) error {
	go func() {
		defer close(r.done)
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case <-r.stop:
				return
			default:
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				return
			}
			onText(line)
		}
		if err := scanner.Err(); err != nil && onErr != nil {
			onErr(err)
		}
	}()
	return nil
}

// Stop ends recognition.
func (r *ConsoleRecognizer) Stop() {
	r.once.Do(func() { close(r.stop) })
}

// Done is closed when the read loop exits, whether through EOF, an empty
// line, or Stop.
func (r *ConsoleRecognizer) Done() <-chan struct{} {
	return r.done
}

// ConsoleSynthesizer writes assistant replies to a writer, usually stdout.
type ConsoleSynthesizer struct {
	out io.Writer
}

// NewConsoleSynthesizer creates a synthesizer over the given writer.
func NewConsoleSynthesizer(out io.Writer) *ConsoleSynthesizer {
	return &ConsoleSynthesizer{out: out}
}

// Speak writes the text as a single line.
func (s *ConsoleSynthesizer) Speak(text string, onDone func(), onErr func(err error)) error {
	if _, err := fmt.Fprintln(s.out, text); err != nil {
		if onErr != nil {
			onErr(err)
		}
		return err
	}
	if onDone != nil {
		onDone()
	}
	return nil
}

// Stop is a no-op for console output.
func (s *ConsoleSynthesizer) Stop() {}

// Compile-time checks.
var (
	_ Recognizer  = (*ConsoleRecognizer)(nil)
	_ Synthesizer = (*ConsoleSynthesizer)(nil)
)
