package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ticketgate/backend/internal/checklist"
)

const systemPreamble = "あなたは厳格なLINE/MEO構築専門のエンジニアです。渡された指示書を見て、作業内容が100%明確か判定してください。"

const judgingRules = `## 判定ルール
- 上記のチェックリスト項目が指示書に含まれていない、または曖昧な場合は **NG** と判定してください。
- すべての項目が明確に記載されている場合は **OK** と判定してください。
- 「後で送ります」「別途連絡」などの曖昧な表現はNGとしてください。

## 出力形式（必ずこの形式で回答してください）
JSONのみで回答してください。他のテキストは不要です。

### NGの場合:
` + "```json" + `
{
  "status": "NG",
  "feedback": [
    "具体的な不足点1",
    "具体的な不足点2"
  ]
}
` + "```" + `

### OKの場合:
` + "```json" + `
{
  "status": "OK",
  "feedback": [],
  "summary": "指示内容の要約"
}
` + "```"

// BuildSystemInstruction renders the reviewer persona, the numbered
// checklist for category and the output contract. Unknown categories
// get an empty checklist.
func BuildSystemInstruction(category checklist.Category) string {
	var sb strings.Builder
	sb.WriteString(systemPreamble)
	sb.WriteString("\n\n## 判定基準\n以下のチェックリストに基づいて、指示書の完全性を評価してください：\n\n")
	for i, item := range checklist.ChecklistFor(category) {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, item)
	}
	sb.WriteString("\n\n")
	sb.WriteString(judgingRules)
	return sb.String()
}

// BuildUserPayload renders the ticket as the user turn. Metadata keys
// listed in keyOrder come first, the rest follow lexically. Entries with
// blank values are dropped, and the 追加情報 section is omitted when
// nothing is left.
func BuildUserPayload(title, content string, metadata map[string]string, keyOrder []string) string {
	var sb strings.Builder
	sb.WriteString("## タイトル\n")
	sb.WriteString(title)
	sb.WriteString("\n\n## 指示内容\n")
	sb.WriteString(content)

	keys := orderedKeys(metadata, keyOrder)
	if len(keys) == 0 {
		return sb.String()
	}
	sb.WriteString("\n\n## 追加情報\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "- %s: %s\n", k, metadata[k])
	}
	return sb.String()
}

func orderedKeys(metadata map[string]string, keyOrder []string) []string {
	keep := func(k string) bool {
		v, ok := metadata[k]
		return ok && strings.TrimSpace(v) != ""
	}

	out := make([]string, 0, len(metadata))
	seen := make(map[string]bool, len(metadata))
	for _, k := range keyOrder {
		if keep(k) && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}

	var rest []string
	for k := range metadata {
		if keep(k) && !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
