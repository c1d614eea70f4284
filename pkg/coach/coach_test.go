package coach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/menta2k/boulder-beta/pkg/heuristic"
	"github.com/menta2k/boulder-beta/pkg/types"
)

// fakeLLM returns a canned answer and records the prompt
type fakeLLM struct {
	answer string
	err    error
	prompt string
	image  string
	model  string
}

func (f *fakeLLM) SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	f.model, f.prompt, f.image = model, prompt, imgB64
	return f.answer, f.err
}

func testRequest() types.BetaRequest {
	return types.BetaRequest{
		Holds: []types.Hold{
			{X: 300, Y: 200, Order: 1, HoldType: types.HoldTop},
			{X: 100, Y: 1000, Order: 1, HoldType: types.HoldStart},
			{X: 150, Y: 700, Order: 1, HoldType: types.HoldMiddle},
		},
		ImageWidth:  800,
		ImageHeight: 1000,
	}
}

const goodAnswer = "Here is the beta:\n```json\n" + `{
  "moves": [
    {"holdIndex": 1, "label": "Start", "icon": "🚀", "shortTip": null, "isCrux": false, "arrow": null},
    {"holdIndex": 2, "label": "1", "arrow": {"fromX": 0, "fromY": 0, "toX": 0, "toY": 0, "direction": "up"}, "shortTip": " Heel hook! ", "isCrux": true},
    // the finish
    {"holdIndex": 3, "label": "Top", "icon": "🏁", "isCrux": false,},
    {"holdIndex": 9, "label": "ghost"}
  ],
  "summary": {"difficulty": "V3", "keyPoints": ["Heel hook", "heel hook", " ", "Stay low", "Trust feet", "Commit", "Extra"], "totalMoves": 7}
}` + "\n```"

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(testRequest())

	for _, want := range []string{
		"Hold 1 (start): (100, 1000)",
		"Hold 2 (middle): (150, 700)",
		"Hold 3 (top): (300, 200)",
		"Hold 1 -> 2: up-right, about 121.7cm",
		`"totalMoves": 3`,
		"800x1000",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}
}

func TestSanitizeModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Sure! {\"a\":1} hope this helps", `{"a":1}`},
		{"trailing comma", `{"a":[1,2,],}`, `{"a":[1,2]}`},
		{"block comment", `{"a":/* one */1}`, `{"a":1}`},
		{"url survives", `{"u":"http://x"}`, `{"u":"http://x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeModelJSON(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseResponse(t *testing.T) {
	if _, err := ParseResponse("I cannot help with that"); !errors.Is(err, ErrUnusableResponse) {
		t.Errorf("Expected unusable for prose, got %v", err)
	}
	if _, err := ParseResponse(`{"moves": "nope"}`); !errors.Is(err, ErrUnusableResponse) {
		t.Errorf("Expected unusable for bad shape, got %v", err)
	}
	resp, err := ParseResponse(goodAnswer)
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	if len(resp.Moves) != 4 {
		t.Errorf("Expected 4 raw moves, got %d", len(resp.Moves))
	}
}

func TestAnalyzeAdjustsModelOutput(t *testing.T) {
	llm := &fakeLLM{answer: goodAnswer}
	c := NewCoach(llm, "qwen2.5")

	resp, err := c.AnalyzeWithImage(context.Background(), testRequest(), "aW1n")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if llm.model != "qwen2.5" || llm.image != "aW1n" {
		t.Errorf("Unexpected query model=%q image=%q", llm.model, llm.image)
	}

	if len(resp.Moves) != 3 {
		t.Fatalf("Out of range moves should be dropped, got %d", len(resp.Moves))
	}
	if resp.Summary.TotalMoves != 3 {
		t.Errorf("Total moves should be recounted, got %d", resp.Summary.TotalMoves)
	}

	start := resp.Moves[0]
	if start.X != 100 || start.Y != 1000 || start.Arrow != nil {
		t.Errorf("Start coordinates should come from the holds, got %+v", start)
	}

	m := resp.Moves[1]
	if m.X != 150 || m.Y != 700 || m.ShortTip != "Heel hook!" || !m.IsCrux {
		t.Errorf("Unexpected middle move %+v", m)
	}
	if m.Arrow == nil || m.Arrow.FromX != 100 || m.Arrow.FromY != 1000 || m.Arrow.ToX != 150 || m.Arrow.Direction != "up" {
		t.Errorf("Empty arrow should be filled from the holds, got %+v", m.Arrow)
	}

	want := []string{"Heel hook", "Stay low", "Trust feet", "Commit"}
	if strings.Join(resp.Summary.KeyPoints, "|") != strings.Join(want, "|") {
		t.Errorf("Unexpected key points %q", resp.Summary.KeyPoints)
	}
}

func TestAnalyzeFallsBack(t *testing.T) {
	req := testRequest()
	expected := heuristic.Build(req.Holds, req.ImageHeight)

	for _, answer := range []string{"no json here", `{"moves": []}`, `{"moves": [{"holdIndex": 42}]}`} {
		c := NewCoach(&fakeLLM{answer: answer}, "m")
		resp, err := c.Analyze(context.Background(), req)
		if err != nil {
			t.Fatalf("Fallback should not fail: %v", err)
		}
		if resp.Summary.Difficulty != expected.Summary.Difficulty || len(resp.Moves) != len(expected.Moves) {
			t.Errorf("answer %q: expected the heuristic beta, got %+v", answer, resp.Summary)
		}
	}

	c := NewCoach(&fakeLLM{answer: "no json"}, "m")
	c.SetFallback(nil)
	if _, err := c.Analyze(context.Background(), req); !errors.Is(err, ErrUnusableResponse) {
		t.Errorf("Expected unusable without fallback, got %v", err)
	}
}

func TestAnalyzeTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	c := NewCoach(&fakeLLM{err: boom}, "m")
	if _, err := c.Analyze(context.Background(), testRequest()); !errors.Is(err, boom) {
		t.Errorf("Expected wrapped transport error, got %v", err)
	}

	c.FallbackOnError = true
	resp, err := c.Analyze(context.Background(), testRequest())
	if err != nil || len(resp.Moves) != 3 {
		t.Errorf("Expected heuristic fallback, got %v %v", resp, err)
	}
}

func TestAnalyzeValidatesFirst(t *testing.T) {
	llm := &fakeLLM{answer: goodAnswer}
	c := NewCoach(llm, "m")
	_, err := c.Analyze(context.Background(), types.BetaRequest{ImageHeight: 100})
	if !errors.Is(err, heuristic.ErrNoHolds) {
		t.Errorf("Expected ErrNoHolds, got %v", err)
	}
	if llm.prompt != "" {
		t.Error("Invalid requests must not reach the model")
	}
}
