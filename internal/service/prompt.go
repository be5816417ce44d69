package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/tidwall/gjson"
)

func buildClassifyPrompt(logs []LogInput, categories []model.KpiCategory, examples []FewShot) string {
	var names []string
	for _, c := range categories {
		names = append(names, c.Name)
	}

	var sb strings.Builder
	sb.WriteString("You are a KPI assistant for an HR time-tracking system.\n")
	sb.WriteString("Assign each work log entry below to exactly one of these KPI categories:\n")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString("\nIf no category fits, use \"Uncategorized\".\n")

	if len(examples) > 0 {
		sb.WriteString("\nExamples of already-categorized entries:\n")
		for _, ex := range examples {
			fmt.Fprintf(&sb, "- %q => %s\n", ex.Description, ex.Category)
		}
	}

	sb.WriteString(`
Return your answer STRICTLY in JSON format with this schema:
{"results": [{"category": "<category name>", "confidence": <float 0-1>}]}
The results array must have one entry per log entry, in the same order.

Log entries:
`)
	for i, l := range logs {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, l.Description)
	}
	return sb.String()
}

func buildScorePrompt(year, month int, breakdown model.Breakdown) string {
	data, _ := json.Marshal(breakdown)

	return fmt.Sprintf(`You are a KPI assistant scoring an employee's monthly performance.
The breakdown below maps KPI category id to logged hours, planned hours and
a deterministic rule score for %d-%02d.

Return your answer STRICTLY in JSON format with this schema:
{"scores": {"<category id>": <float 0-10>}}
Score every category id present in the breakdown and no others.

Breakdown:
%s
`, year, month, string(data))
}

// parseSuggestions pulls the results array out of a model response. Model
// output is frequently wrapped in markdown fences, so the JSON is located
// by gjson rather than strict unmarshalling.
func parseSuggestions(text string, want int) ([]Suggestion, error) {
	results := gjson.Get(cleanJSON(text), "results")
	if !results.Exists() || !results.IsArray() {
		return nil, fmt.Errorf("no results array in model output")
	}
	var out []Suggestion
	results.ForEach(func(_, item gjson.Result) bool {
		s := Suggestion{
			Category:   item.Get("category").String(),
			Confidence: item.Get("confidence").Float(),
		}
		if s.Category == "" {
			s.Category = "Uncategorized"
		}
		out = append(out, s)
		return true
	})
	if len(out) != want {
		return nil, fmt.Errorf("expected %d suggestions, got %d", want, len(out))
	}
	return out, nil
}

func parseScores(text string) (map[uint]float64, error) {
	scores := gjson.Get(cleanJSON(text), "scores")
	if !scores.Exists() {
		return nil, fmt.Errorf("no scores object in model output")
	}
	out := map[uint]float64{}
	scores.ForEach(func(key, value gjson.Result) bool {
		id := key.Uint()
		out[uint(id)] = value.Float()
		return true
	})
	return out, nil
}

// cleanJSON strips markdown code fences and leading prose around the
// outermost JSON object.
func cleanJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		content = content[start : end+1]
	}
	return strings.TrimSpace(content)
}
