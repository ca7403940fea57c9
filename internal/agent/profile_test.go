package agent

import (
	"strings"
	"testing"
)

func TestRenderBindsAgentID(t *testing.T) {
	p := ForStyle("critical")

	one := Render(p, 1)
	two := Render(p, 2)

	if !strings.Contains(one, "You are Agent 1,") {
		t.Errorf("expected Agent 1 binding, got: %.80s", one)
	}
	if !strings.Contains(two, "You are Agent 2,") {
		t.Errorf("expected Agent 2 binding, got: %.80s", two)
	}
	if strings.Contains(one, "{agent_id}") {
		t.Error("placeholder left unbound")
	}
}

func TestRenderDoesNotMutateProfile(t *testing.T) {
	p := ForStyle("creative")
	before := p.SystemPrompt

	Render(p, 7)

	if p.SystemPrompt != before {
		t.Error("Render mutated the profile template")
	}
}

func TestForStyleFallsBackToDefault(t *testing.T) {
	p := ForStyle("no-such-style")
	if p == nil {
		t.Fatal("nil profile for unknown style")
	}
	d := ForStyle(DefaultStyle)
	if p != d {
		t.Errorf("unknown style resolved to %q, want default", p.Name)
	}
}

func TestProfileSampling(t *testing.T) {
	cases := []struct {
		style string
		temp  float64
		topK  int
	}{
		{"critical", 0.4, 40},
		{"analytical", 0.5, 40},
		{"creative", 0.9, 60},
		{"practical", 0.65, 50},
	}
	for _, tc := range cases {
		p, ok := Lookup(tc.style)
		if !ok {
			t.Fatalf("missing style %q", tc.style)
		}
		if p.Sampling.Temperature != tc.temp {
			t.Errorf("%s: temperature = %v, want %v", tc.style, p.Sampling.Temperature, tc.temp)
		}
		if p.Sampling.TopK != tc.topK {
			t.Errorf("%s: top_k = %d, want %d", tc.style, p.Sampling.TopK, tc.topK)
		}
	}
}

func TestPodcastProfile(t *testing.T) {
	if Podcast.Sampling.NumPredict != 1024 {
		t.Errorf("podcast num_predict = %d, want 1024", Podcast.Sampling.NumPredict)
	}
	if !strings.Contains(Podcast.SystemPrompt, "Agent 1") {
		t.Error("podcast prompt should carry speaker labels")
	}
}
