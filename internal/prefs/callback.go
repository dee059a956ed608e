package prefs

import (
	"fmt"
	"strings"

	md2watch "github.com/alnah/go-md2watch"
)

// Callback data sent by the inline keyboards. Device keyboards send the
// catalog key itself.
const (
	CallbackFontSmall  = "font_small"
	CallbackFontMedium = "font_medium"
	CallbackFontLarge  = "font_large"

	callbackTheme    = "theme_"
	callbackLayout   = "layout_"
	callbackTemplate = "template_"
)

// Kind identifies which preference a callback changes.
type Kind string

// Callback kinds.
const (
	KindDevice   Kind = "device"
	KindFontSize Kind = "fontsize"
	KindTheme    Kind = "theme"
	KindLayout   Kind = "layout"
	KindTemplate Kind = "template"
)

// Setting is a parsed callback: one preference change and the
// confirmation shown to the user.
type Setting struct {
	Kind    Kind
	Message string
	apply   func(*Preferences)
}

// Apply returns p with the setting applied.
func (s Setting) Apply(p Preferences) Preferences {
	if s.apply != nil {
		s.apply(&p)
	}
	return p
}

// ThemeCallback returns the keyboard data selecting t.
func ThemeCallback(t md2watch.Theme) string { return callbackTheme + string(t) }

// LayoutCallback returns the keyboard data selecting l.
func LayoutCallback(l md2watch.Layout) string { return callbackLayout + string(l) }

// TemplateCallback returns the keyboard data selecting t.
func TemplateCallback(t md2watch.Template) string { return callbackTemplate + string(t) }

// ParseCallback parses inline keyboard data.
func ParseCallback(data string) (Setting, error) {
	switch {
	case strings.HasPrefix(data, "font_"):
		return parseFontSize(data)
	case strings.HasPrefix(data, callbackTheme):
		theme, err := md2watch.ParseTheme(strings.TrimPrefix(data, callbackTheme))
		if err != nil {
			return Setting{}, fmt.Errorf("%w: %w", ErrUnknownCallback, err)
		}
		return Setting{
			Kind:    KindTheme,
			Message: "Theme set to " + title(string(theme)),
			apply:   func(p *Preferences) { p.Theme = theme },
		}, nil
	case strings.HasPrefix(data, callbackLayout):
		layout, err := md2watch.ParseLayout(strings.TrimPrefix(data, callbackLayout))
		if err != nil {
			return Setting{}, fmt.Errorf("%w: %w", ErrUnknownCallback, err)
		}
		return Setting{
			Kind:    KindLayout,
			Message: "Layout set to " + title(string(layout)),
			apply:   func(p *Preferences) { p.Layout = layout },
		}, nil
	case strings.HasPrefix(data, callbackTemplate):
		tmpl, err := md2watch.ParseTemplate(strings.TrimPrefix(data, callbackTemplate))
		if err != nil {
			return Setting{}, fmt.Errorf("%w: %w", ErrUnknownCallback, err)
		}
		return Setting{
			Kind:    KindTemplate,
			Message: "Template set to " + title(string(tmpl)),
			apply:   func(p *Preferences) { p.Template = tmpl },
		}, nil
	}

	device, err := md2watch.LookupDevice(data)
	if err != nil {
		return Setting{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}
	return Setting{
		Kind:    KindDevice,
		Message: "Model selected: " + device.Name,
		apply:   func(p *Preferences) { p.Device = device.Key },
	}, nil
}

func parseFontSize(data string) (Setting, error) {
	var scale float64
	switch data {
	case CallbackFontSmall:
		scale = md2watch.FontScaleSmall
	case CallbackFontMedium:
		scale = md2watch.FontScaleMedium
	case CallbackFontLarge:
		scale = md2watch.FontScaleLarge
	default:
		return Setting{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}
	return Setting{
		Kind:    KindFontSize,
		Message: "Font size set to " + FontScaleName(scale),
		apply:   func(p *Preferences) { p.FontScale = scale },
	}, nil
}
