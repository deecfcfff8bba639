package report

import (
	"linkguard/internal/models"
	"linkguard/pkg/formatter"
)

// Transform rewrites the text of a field before classification. An empty
// result suppresses the row.
type Transform func(raw string, opts Options) string

// Field maps one detail path to a labeled row.
type Field struct {
	Label     string
	Path      string
	Link      bool
	Transform Transform
}

type Row struct {
	Label string          `json:"label" yaml:"label"`
	Value formatter.Token `json:"value" yaml:"value"`
}

// Card is a titled group of rows. The zero value of Collapsed is expanded.
type Card struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Icon      string `json:"icon" yaml:"icon"`
	Rows      []Row  `json:"rows" yaml:"rows"`
	Collapsed bool   `json:"collapsed" yaml:"collapsed"`
}

// Toggle flips the expand/collapse state of this card only.
func (c *Card) Toggle() {
	c.Collapsed = !c.Collapsed
}

// Group declares a card. RequirePath, when set, names a sub-object that must
// be present for the card to be emitted at all.
type Group struct {
	ID          string
	Title       string
	Icon        string
	Fields      []Field
	RequirePath string
}

// Build resolves every field against d. It returns nil when RequirePath is
// set and missing; otherwise a card, possibly with no rows.
func (g Group) Build(d models.Details, opts Options) *Card {
	if g.RequirePath != "" {
		if _, ok := d.Lookup(g.RequirePath); !ok {
			return nil
		}
	}

	card := &Card{ID: g.ID, Title: g.Title, Icon: g.Icon, Rows: []Row{}}
	for _, f := range g.Fields {
		if row, ok := f.resolve(d, opts); ok {
			card.Rows = append(card.Rows, row)
		}
	}
	return card
}

func (f Field) resolve(d models.Details, opts Options) (Row, bool) {
	if f.Transform != nil {
		text := f.Transform(d.String(f.Path), opts)
		if text == "" {
			return Row{}, false
		}
		return Row{Label: f.Label, Value: formatter.Classify(text, f.Link)}, true
	}

	v, ok := d.Value(f.Path)
	if !ok {
		return Row{}, false
	}
	return Row{Label: f.Label, Value: formatter.Classify(v, f.Link)}, true
}

func dateTransform(raw string, opts Options) string {
	return formatter.FormatDate(raw, opts.dateLayout())
}

func percentTransform(raw string, _ Options) string {
	return formatter.Percent(raw)
}
