// Package prefs holds per-user rendering preferences and their stores.
//
// Preferences are plain values: a handler loads them from a Store, changes
// or reads them, and passes them on explicitly. Nothing is shared between
// requests except the Store itself.
package prefs

import (
	"errors"
	"fmt"
	"strings"

	md2watch "github.com/alnah/go-md2watch"
)

// Sentinel errors.
var (
	ErrNoDevice        = errors.New("no watch model selected")
	ErrUnknownCallback = errors.New("unknown callback data")
	ErrUnknownSlot     = errors.New("unknown font slot")
	ErrStore           = errors.New("preference store failure")
)

// MaxPadding bounds /padding so every catalog device keeps a content area.
const MaxPadding = 150

// Preferences are one user's rendering settings.
type Preferences struct {
	Device    string // catalog key; empty until the user picks a model
	Theme     md2watch.Theme
	FontScale float64
	Padding   int
	Layout    md2watch.Layout
	Template  md2watch.Template
	Fonts     md2watch.Fonts
}

// Defaults returns the preferences of a user who has set nothing.
func Defaults() Preferences {
	return Preferences{
		Theme:     md2watch.DefaultTheme,
		FontScale: md2watch.DefaultFontScale,
		Padding:   md2watch.DefaultPadding,
		Layout:    md2watch.DefaultLayout,
		Template:  md2watch.DefaultTemplate,
	}
}

// DeviceSelected reports whether the user has picked a watch model.
func (p Preferences) DeviceSelected() bool {
	return p.Device != ""
}

// Request builds the render request for markdown. It fails with
// ErrNoDevice until a model has been selected.
func (p Preferences) Request(markdown string) (md2watch.Request, error) {
	if !p.DeviceSelected() {
		return md2watch.Request{}, ErrNoDevice
	}
	device, err := md2watch.LookupDevice(p.Device)
	if err != nil {
		return md2watch.Request{}, err
	}

	req := md2watch.NewRequest(markdown, device)
	req.Theme = p.Theme
	req.FontScale = p.FontScale
	req.Padding = p.Padding
	req.Layout = p.Layout
	req.Template = p.Template
	req.Fonts = p.Fonts
	return req, nil
}

// ValidatePadding checks a /padding value.
func ValidatePadding(px int) error {
	if px < 0 || px > MaxPadding {
		return fmt.Errorf("%w: %d (must be between 0 and %d)", md2watch.ErrInvalidPadding, px, MaxPadding)
	}
	return nil
}

// Font slots accepted by SetFont.
const (
	SlotBody   = "body"
	SlotHeader = "header"
	SlotCode   = "code"
)

// FontReset clears a slot back to the template font.
const FontReset = "reset"

// SetFont returns p with the family of slot changed. FontReset clears it.
func (p Preferences) SetFont(slot, family string) (Preferences, error) {
	family = strings.TrimSpace(family)
	if strings.EqualFold(family, FontReset) {
		family = ""
	}

	fonts := p.Fonts
	switch strings.ToLower(slot) {
	case SlotBody:
		fonts.Body = family
	case SlotHeader:
		fonts.Header = family
	case SlotCode:
		fonts.Code = family
	default:
		return p, fmt.Errorf("%w: %q (must be body, header or code)", ErrUnknownSlot, slot)
	}
	if err := fonts.Validate(); err != nil {
		return p, err
	}
	p.Fonts = fonts
	return p, nil
}

// Summary renders the preferences for the /settings reply.
func (p Preferences) Summary() string {
	device := "not selected (use /model)"
	if d, err := md2watch.LookupDevice(p.Device); err == nil {
		device = d.String()
	}
	fontOrDefault := func(f string) string {
		if f == "" {
			return "template default"
		}
		return f
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Model: %s\n", device)
	fmt.Fprintf(&b, "Font size: %s (x%.1f)\n", FontScaleName(p.FontScale), p.FontScale)
	fmt.Fprintf(&b, "Theme: %s\n", title(string(p.Theme)))
	fmt.Fprintf(&b, "Layout: %s\n", title(string(p.Layout)))
	fmt.Fprintf(&b, "Template: %s\n", title(string(p.Template)))
	fmt.Fprintf(&b, "Padding: %d px\n", p.Padding)
	fmt.Fprintf(&b, "Fonts: body %s, header %s, code %s",
		fontOrDefault(p.Fonts.Body), fontOrDefault(p.Fonts.Header), fontOrDefault(p.Fonts.Code))
	return b.String()
}

// FontScaleName names a preset scale, or "Custom".
func FontScaleName(scale float64) string {
	switch scale {
	case md2watch.FontScaleSmall:
		return "Small"
	case md2watch.FontScaleMedium:
		return "Medium"
	case md2watch.FontScaleLarge:
		return "Large"
	default:
		return "Custom"
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
