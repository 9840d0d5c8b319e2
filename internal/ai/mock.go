package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// deferralPhrases mark content the author promised to supply later.
var deferralPhrases = []string{"後で送ります", "後ほど", "別途連絡", "別途ご連絡", "追って連絡"}

// MockGenerator is a deterministic offline backend for local runs.
// It rejects any payload containing a deferral phrase and approves
// everything else, wrapping the verdict in a fenced block the way
// real models tend to.
type MockGenerator struct {
	ModelVersion string
}

func (m MockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var found []string
	for _, p := range deferralPhrases {
		if strings.Contains(prompt, p) {
			found = append(found, fmt.Sprintf("「%s」は曖昧な表現です。具体的な内容を記載してください", p))
		}
	}

	verdict := map[string]any{"status": "OK", "feedback": []string{}}
	if len(found) > 0 {
		verdict = map[string]any{"status": "NG", "feedback": found}
	} else {
		verdict["summary"] = fmt.Sprintf("%s (%s)", titleOf(prompt), m.ModelVersion)
	}
	b, _ := json.MarshalIndent(verdict, "", "  ")
	return "判定結果:\n```json\n" + string(b) + "\n```", nil
}

func titleOf(prompt string) string {
	lines := strings.Split(prompt, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) == "## タイトル" && i+1 < len(lines) {
			return strings.TrimSpace(lines[i+1])
		}
	}
	return "指示内容"
}
