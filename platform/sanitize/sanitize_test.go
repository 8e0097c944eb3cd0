package sanitize

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "my roof is leaking", "my roof is leaking"},
		{"tags removed", "<b>urgent</b> leak", "urgent leak"},
		{"script removed", `<script>alert("x")</script>water coming in`, `alert("x")water coming in`},
		{"encoded tag caught after decode", "&lt;img src=x&gt;hail damage", "hail damage"},
		{"entities decoded", "Tom &amp; Sons &quot;roofing&quot;", `Tom & Sons "roofing"`},
		{"whitespace trimmed", "  456 Oak Avenue  ", "456 Oak Avenue"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextPtr(t *testing.T) {
	if got := TextPtr(nil); got != nil {
		t.Errorf("TextPtr(nil) = %v, want nil", got)
	}

	input := "<p>call me back</p>"
	got := TextPtr(&input)
	if got == nil || *got != "call me back" {
		t.Errorf("TextPtr(%q) = %v, want sanitized value", input, got)
	}
}
