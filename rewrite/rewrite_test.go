package rewrite

import (
	"regexp"
	"testing"
)

func TestLiteralRule(t *testing.T) {
	tests := []struct {
		name      string
		old       string
		new       string
		src       string
		want      string
		wantCount int
	}{
		{
			name:      "single occurrence",
			old:       "Type.OBJECT",
			new:       `"object"`,
			src:       "type: Type.OBJECT,",
			want:      `type: "object",`,
			wantCount: 1,
		},
		{
			name:      "multiple occurrences",
			old:       "a",
			new:       "b",
			src:       "banana",
			want:      "bbnbnb",
			wantCount: 3,
		},
		{
			name:      "no match",
			old:       "Type.OBJECT",
			new:       `"object"`,
			src:       "nothing to see",
			want:      "nothing to see",
			wantCount: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := LiteralRule{RuleName: "test", Old: tt.old, New: tt.new}
			got, n := rule.Apply(tt.src)
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
			if n != tt.wantCount {
				t.Errorf("Apply() count = %d, want %d", n, tt.wantCount)
			}
		})
	}
}

func TestRegexRule(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		replace   string
		src       string
		want      string
		wantCount int
	}{
		{
			name:      "capture group expansion",
			pattern:   `(?m)^([ \t]*)old$`,
			replace:   "${1}new",
			src:       "  old\n\told\n",
			want:      "  new\n\tnew\n",
			wantCount: 2,
		},
		{
			name:      "delete match",
			pattern:   `,\s*unused: true`,
			replace:   "",
			src:       "{ keep: 1, unused: true }",
			want:      "{ keep: 1 }",
			wantCount: 1,
		},
		{
			name:      "no match",
			pattern:   `never`,
			replace:   "x",
			src:       "plain text",
			want:      "plain text",
			wantCount: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := RegexRule{RuleName: "test", Pattern: regexp.MustCompile(tt.pattern), Replace: tt.replace}
			got, n := rule.Apply(tt.src)
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
			if n != tt.wantCount {
				t.Errorf("Apply() count = %d, want %d", n, tt.wantCount)
			}
		})
	}
}

func TestPipelineOrder(t *testing.T) {
	// The second rule must see the first rule's output.
	p := NewPipeline(
		LiteralRule{RuleName: "first", Old: "a", New: "b"},
		LiteralRule{RuleName: "second", Old: "b", New: "c"},
	)
	res := p.Run("a")
	if res.Text != "c" {
		t.Errorf("Run() text = %q, want %q", res.Text, "c")
	}
	if res.Total != 2 {
		t.Errorf("Run() total = %d, want 2", res.Total)
	}
	if len(res.Counts) != 2 {
		t.Fatalf("Run() counts len = %d, want 2", len(res.Counts))
	}
	if res.Counts[0].Rule != "first" || res.Counts[0].Count != 1 {
		t.Errorf("counts[0] = %+v, want {first 1}", res.Counts[0])
	}
	if res.Counts[1].Rule != "second" || res.Counts[1].Count != 1 {
		t.Errorf("counts[1] = %+v, want {second 1}", res.Counts[1])
	}
}

func TestPipelineNoMatch(t *testing.T) {
	p := NewPipeline(
		LiteralRule{RuleName: "lit", Old: "missing", New: "x"},
		RegexRule{RuleName: "re", Pattern: regexp.MustCompile(`also missing`), Replace: "y"},
	)
	const src = "export const untouched = 1;\n"
	res := p.Run(src)
	if res.Text != src {
		t.Errorf("Run() modified text without matches: %q", res.Text)
	}
	if res.Changed {
		t.Error("Run() changed = true, want false")
	}
	if res.Total != 0 {
		t.Errorf("Run() total = %d, want 0", res.Total)
	}
	for _, rc := range res.Counts {
		if rc.Count != 0 {
			t.Errorf("rule %s count = %d, want 0", rc.Rule, rc.Count)
		}
	}
}

func TestPipelineEmpty(t *testing.T) {
	res := NewPipeline().Run("anything")
	if res.Text != "anything" || res.Changed || res.Total != 0 {
		t.Errorf("empty pipeline Run() = %+v, want unchanged input", res)
	}
}
