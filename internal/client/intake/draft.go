package intake

import (
	"fmt"
	"sort"

	"auraweb-intake/internal/domain/submissions"

	"gopkg.in/yaml.v3"
)

// Draft is the in-progress intake. UpdateField addresses its fields by
// their wire names.
type Draft struct {
	PackageID      string
	BusinessName   string
	BusinessType   string
	Phone          string
	Email          string
	Address        string
	GoogleMapsLink string
	AboutUs        string
	Services       []string
	WorkingHours   string
	SocialLinks    map[string]string
	Language       string
	PrimaryColor   string
	ThemeStyle     string
	SpecialNotes   string
}

// NewDraft is what a fresh form starts from.
func NewDraft() Draft {
	return Draft{
		PackageID:    submissions.PackageBusiness,
		BusinessType: DefaultBusinessType,
		Services:     []string{""},
		SocialLinks:  map[string]string{},
		Language:     FallbackLanguage,
		PrimaryColor: DefaultColor,
		ThemeStyle:   FallbackTheme,
	}
}

func (d Draft) clone() Draft {
	c := d
	c.Services = append([]string(nil), d.Services...)
	c.SocialLinks = make(map[string]string, len(d.SocialLinks))
	for k, v := range d.SocialLinks {
		c.SocialLinks[k] = v
	}
	return c
}

type setter func(d *Draft, v any) error

func stringField(get func(*Draft) *string) setter {
	return func(d *Draft, v any) error {
		switch s := v.(type) {
		case string:
			*get(d) = s
		case int, int64, float64, bool:
			*get(d) = fmt.Sprint(s)
		default:
			return fmt.Errorf("%w: want string, got %T", ErrFieldType, v)
		}
		return nil
	}
}

var fieldSetters = map[string]setter{
	"packageId":      stringField(func(d *Draft) *string { return &d.PackageID }),
	"businessName":   stringField(func(d *Draft) *string { return &d.BusinessName }),
	"businessType":   stringField(func(d *Draft) *string { return &d.BusinessType }),
	"phone":          stringField(func(d *Draft) *string { return &d.Phone }),
	"email":          stringField(func(d *Draft) *string { return &d.Email }),
	"address":        stringField(func(d *Draft) *string { return &d.Address }),
	"googleMapsLink": stringField(func(d *Draft) *string { return &d.GoogleMapsLink }),
	"aboutUs":        stringField(func(d *Draft) *string { return &d.AboutUs }),
	"workingHours":   stringField(func(d *Draft) *string { return &d.WorkingHours }),
	"language":       stringField(func(d *Draft) *string { return &d.Language }),
	"primaryColor":   stringField(func(d *Draft) *string { return &d.PrimaryColor }),
	"themeStyle":     stringField(func(d *Draft) *string { return &d.ThemeStyle }),
	"specialNotes":   stringField(func(d *Draft) *string { return &d.SpecialNotes }),

	"services": func(d *Draft, v any) error {
		switch list := v.(type) {
		case []string:
			d.Services = append([]string(nil), list...)
		case []any:
			out := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return fmt.Errorf("%w: services entries must be strings, got %T", ErrFieldType, item)
				}
				out = append(out, s)
			}
			d.Services = out
		default:
			return fmt.Errorf("%w: want list of strings, got %T", ErrFieldType, v)
		}
		return nil
	},

	"socialLinks": func(d *Draft, v any) error {
		out := map[string]string{}
		switch m := v.(type) {
		case map[string]string:
			for k, s := range m {
				out[k] = s
			}
		case map[string]any:
			for k, item := range m {
				s, ok := item.(string)
				if !ok {
					return fmt.Errorf("%w: socialLinks.%s must be a string, got %T", ErrFieldType, k, item)
				}
				out[k] = s
			}
		default:
			return fmt.Errorf("%w: want map of strings, got %T", ErrFieldType, v)
		}
		d.SocialLinks = out
		return nil
	},
}

// ApplyYAML merges a hand-written draft file (a mapping of wire field
// names) into the form, field by field. Scalars keep their literal text,
// so an unquoted phone number like 0911222333 keeps its leading zero.
func (f *Form) ApplyYAML(data []byte) error {
	var fields map[string]yaml.Node
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("parse draft: %w", err)
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		node := fields[name]
		v, err := nodeValue(&node)
		if err != nil {
			return fmt.Errorf("parse draft field %s: %w", name, err)
		}
		if v == nil {
			continue
		}
		if err := f.UpdateField(name, v); err != nil {
			return err
		}
	}
	return nil
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return nil, nil
		}
		return n.Value, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := nodeValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = v
		}
		return out, nil
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	}
	return nil, fmt.Errorf("%w: unsupported yaml node at line %d", ErrFieldType, n.Line)
}
