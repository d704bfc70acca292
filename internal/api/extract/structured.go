package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Section is one rendered block of a structured reply.
type Section struct {
	Title     string  `json:"title"`
	Fields    []Field `json:"fields,omitempty"`
	Paragraph string  `json:"paragraph,omitempty"`
}

// Formatted is an assistant reply after cleanup. Sections is empty when the
// reply was not JSON.
type Formatted struct {
	Text     string    `json:"text"`
	Sections []Section `json:"sections,omitempty"`
}

var (
	fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

	leadingFields   = []string{"type", "price", "description"}
	paragraphFields = map[string]bool{"summary": true, "recommendations": true}
)

// Structure strips noise from an assistant reply and, when what is left is
// JSON, turns it into titled sections. Other text is returned cleaned but
// otherwise unchanged.
func Structure(text string) Formatted {
	cleaned := StripNoise(text)
	candidate, ok := jsonCandidate(cleaned)
	if !ok {
		return Formatted{Text: cleaned}
	}

	doc := gjson.Parse(candidate)
	var sections []Section
	switch {
	case doc.IsArray():
		sections = arraySections(doc)
	case doc.IsObject():
		sections = objectSections(doc)
	default:
		return Formatted{Text: cleaned}
	}
	if len(sections) == 0 {
		return Formatted{Text: cleaned}
	}

	f := Formatted{Sections: sections}
	f.Text = f.Markdown()
	return f
}

// Markdown renders the sections as headed blocks.
func (f Formatted) Markdown() string {
	if len(f.Sections) == 0 {
		return f.Text
	}
	blocks := make([]string, 0, len(f.Sections))
	for _, s := range f.Sections {
		var b strings.Builder
		fmt.Fprintf(&b, "### %s", s.Title)
		for _, field := range s.Fields {
			fmt.Fprintf(&b, "\n**%s**: %s", field.Label, field.Value)
		}
		if s.Paragraph != "" {
			b.WriteString("\n")
			b.WriteString(s.Paragraph)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func jsonCandidate(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}
	if looksLikeJSON(trimmed) && gjson.Valid(trimmed) {
		return trimmed, true
	}
	if m := fencedBlock.FindStringSubmatch(trimmed); m != nil {
		inner := strings.TrimSpace(m[1])
		if looksLikeJSON(inner) && gjson.Valid(inner) {
			return inner, true
		}
	}
	if looksLikeJSON(trimmed) {
		closer := "}"
		if trimmed[0] == '[' {
			closer = "]"
		}
		if end := strings.LastIndex(trimmed, closer); end > 0 {
			sliced := trimmed[:end+1]
			if gjson.Valid(sliced) {
				return sliced, true
			}
		}
	}
	return "", false
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

func arraySections(arr gjson.Result) []Section {
	var sections []Section
	for i, el := range arr.Array() {
		if !el.IsObject() {
			sections = append(sections, Section{
				Title:     fmt.Sprintf("Option %d", i+1),
				Paragraph: renderValue(el),
			})
			continue
		}

		title := el.Get("name").String()
		if title == "" {
			title = fmt.Sprintf("Option %d", i+1)
		}
		s := Section{Title: title}
		for _, key := range leadingFields {
			if v := el.Get(key); v.Exists() {
				s.Fields = append(s.Fields, Field{Label: label(key), Value: renderValue(v)})
			}
		}
		el.ForEach(func(key, value gjson.Result) bool {
			k := key.String()
			if k == "name" || lo.Contains(leadingFields, k) {
				return true
			}
			s.Fields = append(s.Fields, Field{Label: label(k), Value: renderValue(value)})
			return true
		})
		sections = append(sections, s)
	}
	return sections
}

func objectSections(obj gjson.Result) []Section {
	var sections []Section
	obj.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		lower := strings.ToLower(k)
		switch {
		case lower == "options" && value.IsArray():
			sections = append(sections, arraySections(value)...)
		case paragraphFields[lower]:
			sections = append(sections, Section{Title: label(k), Paragraph: renderValue(value)})
		case value.IsObject():
			s := Section{Title: label(k)}
			value.ForEach(func(fk, fv gjson.Result) bool {
				s.Fields = append(s.Fields, Field{Label: label(fk.String()), Value: renderValue(fv)})
				return true
			})
			sections = append(sections, s)
		case value.IsArray() && allObjects(value):
			sections = append(sections, Section{Title: label(k)})
			sections = append(sections, arraySections(value)...)
		case value.IsArray():
			items := make([]string, 0, len(value.Array()))
			for _, item := range value.Array() {
				items = append(items, "- "+renderValue(item))
			}
			sections = append(sections, Section{Title: label(k), Paragraph: strings.Join(items, "\n")})
		default:
			sections = append(sections, Section{Title: label(k), Paragraph: value.String()})
		}
		return true
	})
	return sections
}

func allObjects(arr gjson.Result) bool {
	elems := arr.Array()
	if len(elems) == 0 {
		return false
	}
	for _, el := range elems {
		if !el.IsObject() {
			return false
		}
	}
	return true
}

func renderValue(v gjson.Result) string {
	switch {
	case v.IsArray():
		parts := make([]string, 0, len(v.Array()))
		for _, el := range v.Array() {
			parts = append(parts, renderValue(el))
		}
		return strings.Join(parts, ", ")
	case v.IsObject():
		var parts []string
		v.ForEach(func(k, val gjson.Result) bool {
			parts = append(parts, fmt.Sprintf("%s: %s", label(k.String()), renderValue(val)))
			return true
		})
		return strings.Join(parts, ", ")
	default:
		return v.String()
	}
}

// label turns a JSON key into a display label: estimated_cost -> Estimated Cost.
func label(key string) string {
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	// a Caser keeps state, so one per call
	return cases.Title(language.English).String(strings.TrimSpace(key))
}
