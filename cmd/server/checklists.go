package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ticketgate/backend/internal/checklist"
)

var checklistsCmd = &cobra.Command{
	Use:   "checklists",
	Short: "Print the category checklists and form fields as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(catalogue())
	},
}

type categoryDoc struct {
	Category       checklist.Category        `yaml:"category"`
	Label          string                    `yaml:"label"`
	Service        checklist.Service         `yaml:"service"`
	Checklist      []string                  `yaml:"checklist"`
	TemplateFields []checklist.TemplateField `yaml:"template_fields"`
}

func catalogue() []categoryDoc {
	out := make([]categoryDoc, 0, len(checklist.Categories()))
	for _, c := range checklist.Categories() {
		out = append(out, categoryDoc{
			Category:       c,
			Label:          checklist.Label(c),
			Service:        checklist.ServiceOf(c),
			Checklist:      checklist.ChecklistFor(c),
			TemplateFields: checklist.TemplateFieldsFor(c),
		})
	}
	return out
}
