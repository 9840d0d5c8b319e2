package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryCategoryHasChecklistAndFields(t *testing.T) {
	require.Len(t, Categories(), 8)
	for _, c := range Categories() {
		assert.True(t, Valid(c), c)
		assert.NotEmpty(t, ChecklistFor(c), "checklist for %s", c)
		assert.NotEmpty(t, TemplateFieldsFor(c), "template fields for %s", c)
		assert.NotEqual(t, string(c), Label(c))
	}
}

func TestUnknownCategoryDegradesToEmpty(t *testing.T) {
	unknown := Category("line_legacy")
	assert.False(t, Valid(unknown))
	assert.NotNil(t, ChecklistFor(unknown))
	assert.Empty(t, ChecklistFor(unknown))
	assert.Empty(t, TemplateFieldsFor(unknown))
	assert.Equal(t, "line_legacy", Label(unknown))
	assert.Equal(t, Service(""), ServiceOf(unknown))
}

func TestFieldNamesUniqueWithinCategory(t *testing.T) {
	for _, c := range Categories() {
		seen := map[string]bool{}
		for _, f := range TemplateFieldsFor(c) {
			assert.False(t, seen[f.Name], "duplicate field %s in %s", f.Name, c)
			seen[f.Name] = true
		}
	}
}

func TestLookupsReturnCopies(t *testing.T) {
	items := ChecklistFor(LineRichMenu)
	items[0] = "mutated"
	assert.NotEqual(t, "mutated", ChecklistFor(LineRichMenu)[0])

	fields := TemplateFieldsFor(LineRichMenu)
	fields[0].Required = false
	assert.True(t, TemplateFieldsFor(LineRichMenu)[0].Required)
}

func TestRichMenuChecklistEndsWithDeadline(t *testing.T) {
	items := ChecklistFor(LineRichMenu)
	require.Len(t, items, 5)
	assert.Equal(t, "反映希望日時", items[4])
	assert.Equal(t, ServiceLINE, ServiceOf(LineRichMenu))
	assert.Equal(t, ServiceMEO, ServiceOf(MEOReviewReply))
}
