package edits

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// Chunk is one changed span of a preview
type Chunk struct {
	Type string `json:"type"` // "added" or "removed"
	Text string `json:"text"`
}

// Preview shows how an edit changes its field
type Preview struct {
	Field  models.FieldType `json:"field_type"`
	Inline string           `json:"inline"`
	Chunks []Chunk          `json:"chunks"`
}

// PreviewEdit diffs the old and new values. Inline marks removals as
// [-text-] and additions as {+text+}.
func PreviewEdit(e *models.EditRecord) Preview {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(e.OldValue, e.NewValue, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	chunks := make([]Chunk, 0)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
			chunks = append(chunks, Chunk{Type: "removed", Text: d.Text})
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
			chunks = append(chunks, Chunk{Type: "added", Text: d.Text})
		}
	}

	return Preview{Field: e.FieldType, Inline: b.String(), Chunks: chunks}
}
