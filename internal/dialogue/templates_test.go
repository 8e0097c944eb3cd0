package dialogue

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadTemplatesDefaults(t *testing.T) {
	ts, err := loadTemplates("", "Acme Roofing")
	if err != nil {
		t.Fatalf("loadTemplates: %v", err)
	}
	if len(ts.Greeting) == 0 || len(ts.Scheduling) == 0 || len(ts.FinalReassurance) == 0 {
		t.Fatalf("default banks incomplete: %+v", ts)
	}
	for _, greeting := range ts.Greeting {
		if !strings.Contains(greeting, "Acme Roofing") {
			t.Errorf("greeting %q missing business name", greeting)
		}
	}
}

func TestLoadTemplatesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	content := []byte("greeting:\n  - \"You reached {business}, how can we help?\"\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write templates: %v", err)
	}

	ts, err := loadTemplates(path, "Acme Roofing")
	if err != nil {
		t.Fatalf("loadTemplates: %v", err)
	}

	if len(ts.Greeting) != 1 {
		t.Fatalf("greeting bank = %v, want single override entry", ts.Greeting)
	}
	if ts.Greeting[0] != "You reached Acme Roofing, how can we help?" {
		t.Errorf("greeting = %q, placeholder not substituted", ts.Greeting[0])
	}

	// Banks absent from the file keep their defaults.
	if len(ts.Scheduling) == 0 {
		t.Errorf("scheduling bank lost its defaults on override")
	}
}

func TestLoadTemplatesBadFile(t *testing.T) {
	if _, err := loadTemplates(filepath.Join(t.TempDir(), "missing.yaml"), "Acme"); err == nil {
		t.Errorf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("greeting: {not: [valid"), 0o600); err != nil {
		t.Fatalf("write templates: %v", err)
	}
	if _, err := loadTemplates(path, "Acme"); err == nil {
		t.Errorf("expected error for malformed yaml")
	}
}

func TestSafetyQuestionReplyFallback(t *testing.T) {
	ts := defaultTemplates("Acme")
	rng := rand.New(rand.NewSource(1))

	if got := ts.safetyQuestionReply(rng, 1); got == "" {
		t.Errorf("safety question 1 empty")
	}
	got := ts.safetyQuestionReply(rng, 7)
	if !strings.Contains(got, "one more detail") {
		t.Errorf("safety question fallback = %q, want generic follow-up", got)
	}
}
