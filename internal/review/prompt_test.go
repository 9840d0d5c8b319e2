package review

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketgate/backend/internal/checklist"
)

func TestBuildSystemInstructionNumbersChecklist(t *testing.T) {
	got := BuildSystemInstruction(checklist.LineRichMenu)
	assert.Contains(t, got, "1. 修正対象のリッチメニュー名またはスクリーンショット")
	assert.Contains(t, got, "5. 反映希望日時")
	assert.NotContains(t, got, "6. ")
	assert.Contains(t, got, "「後で送ります」「別途連絡」")
	assert.Contains(t, got, `"status": "NG"`)
	assert.Equal(t, got, BuildSystemInstruction(checklist.LineRichMenu))
}

func TestBuildSystemInstructionEmbedsEveryItemInOrder(t *testing.T) {
	for _, c := range checklist.Categories() {
		t.Run(string(c), func(t *testing.T) {
			items := checklist.ChecklistFor(c)
			require.NotEmpty(t, items)
			got := BuildSystemInstruction(c)
			last := -1
			for i, item := range items {
				line := fmt.Sprintf("%d. %s", i+1, item)
				idx := strings.Index(got, line)
				require.GreaterOrEqual(t, idx, 0, "missing %q", line)
				assert.Greater(t, idx, last, "%q out of order", line)
				last = idx
			}
		})
	}
}

func TestBuildSystemInstructionUnknownCategory(t *testing.T) {
	got := BuildSystemInstruction("nonexistent")
	assert.NotContains(t, got, "1. ")
	assert.Contains(t, got, "## 判定ルール")
}

func TestBuildUserPayloadWithoutMetadata(t *testing.T) {
	got := BuildUserPayload("タイトル", "本文", nil, nil)
	assert.Equal(t, "## タイトル\nタイトル\n\n## 指示内容\n本文", got)
}

func TestBuildUserPayloadOmitsSectionWhenAllValuesEmpty(t *testing.T) {
	got := BuildUserPayload("t", "c", map[string]string{"a": "", "b": "  "}, nil)
	assert.NotContains(t, got, "## 追加情報")
}

func TestBuildUserPayloadOrdersMetadata(t *testing.T) {
	md := map[string]string{
		"zeta":        "z",
		"alpha":       "a",
		"deadline":    "2024-05-01",
		"target_menu": "メインメニュー",
		"image_url":   "",
	}
	got := BuildUserPayload("t", "c", md, []string{"target_menu", "image_url", "deadline"})
	want := "## タイトル\nt\n\n## 指示内容\nc\n\n## 追加情報\n" +
		"- target_menu: メインメニュー\n" +
		"- deadline: 2024-05-01\n" +
		"- alpha: a\n" +
		"- zeta: z\n"
	assert.Equal(t, want, got)
	assert.False(t, strings.Contains(got, "image_url"))
}
