package views

import "github.com/leapstack-labs/ageview/pkg/core"

// Placeholders shown for blank values.
const (
	HeadlinePlaceholder  = "Empty"
	AttributePlaceholder = "-"
)

// headlineFields is how many leading fields the drawer highlights.
const headlineFields = 3

// hiddenField is never shown in the drawer.
const hiddenField = "id"

// DrawerField is one rendered field.
type DrawerField struct {
	Key   string
	Value string
	// Raw is the unformatted value, used for copying.
	Raw   any
	Blank bool
}

// Drawer is the projection of one selected record.
type Drawer struct {
	Headline   []DrawerField
	Attributes []DrawerField
}

// NewDrawer splits r into the first three shown fields and the rest, in the
// record's key order.
func NewDrawer(r core.Record) Drawer {
	var d Drawer
	for _, f := range r.Fields() {
		if f.Key == hiddenField {
			continue
		}

		field := DrawerField{Key: f.Key, Raw: f.Value, Blank: IsBlank(f.Value)}
		if len(d.Headline) < headlineFields {
			field.Value = placeholder(f.Value, HeadlinePlaceholder)
			d.Headline = append(d.Headline, field)
			continue
		}
		field.Value = placeholder(f.Value, AttributePlaceholder)
		d.Attributes = append(d.Attributes, field)
	}
	return d
}

// Fields returns headline and attribute fields together.
func (d Drawer) Fields() []DrawerField {
	out := make([]DrawerField, 0, len(d.Headline)+len(d.Attributes))
	out = append(out, d.Headline...)
	return append(out, d.Attributes...)
}

func placeholder(v any, empty string) string {
	if IsBlank(v) {
		return empty
	}
	return FormatValue(v)
}
