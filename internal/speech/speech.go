// Package speech abstracts the audio boundary of a call. The engine only
// sees text; recognizers produce caller utterances and synthesizers deliver
// assistant replies. Production deployments plug in a telephony provider,
// the console adapters make local simulation work.
package speech

// Recognizer produces caller utterances as text.
type Recognizer interface {
	// Start begins recognition. Each recognized utterance is passed to
	// onText; failures go to onErr. Start returns immediately.
	Start(onText func(text string), onErr func(err error)) error
	// Stop ends recognition. Safe to call more than once.
	Stop()
}

// Synthesizer delivers assistant replies as speech.
type Synthesizer interface {
	// Speak delivers the text. onDone fires after delivery, onErr on
	// failure. Speak returns immediately.
	Speak(text string, onDone func(), onErr func(err error)) error
	// Stop cancels any in-flight speech. Safe to call more than once.
	Stop()
}
