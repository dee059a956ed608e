package md2watch

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Theme
		wantErr bool
	}{
		{"dark", ThemeDark, false},
		{"LIGHT", ThemeLight, false},
		{"sepia", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTheme(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTheme(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidTheme) {
				t.Errorf("ParseTheme(%q) error = %v, want ErrInvalidTheme", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTheme(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLayoutAndTemplate(t *testing.T) {
	t.Parallel()

	if got, err := ParseLayout("Multipage"); err != nil || got != LayoutMultipage {
		t.Errorf("ParseLayout(Multipage) = %q, %v", got, err)
	}
	if _, err := ParseLayout("scroll"); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("ParseLayout(scroll) error = %v, want ErrInvalidLayout", err)
	}
	for _, tmpl := range Templates() {
		if got, err := ParseTemplate(string(tmpl)); err != nil || got != tmpl {
			t.Errorf("ParseTemplate(%q) = %q, %v", tmpl, got, err)
		}
	}
	if _, err := ParseTemplate("fancy"); !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("ParseTemplate(fancy) error = %v, want ErrInvalidTemplate", err)
	}
}

func TestNewRequest_Defaults(t *testing.T) {
	t.Parallel()

	req := NewRequest("hi", DefaultDevice())
	if req.FontScale != 1.0 || req.Theme != ThemeDark || req.Padding != 20 ||
		req.Layout != LayoutContinuous || req.Template != TemplateMinimalistic {
		t.Errorf("NewRequest() = %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{"empty markdown", func(r *Request) { r.Markdown = "" }, ErrEmptyMarkdown},
		{"whitespace markdown", func(r *Request) { r.Markdown = "\n\t " }, ErrEmptyMarkdown},
		{"too large", func(r *Request) { r.Markdown = strings.Repeat("a", MaxMarkdownBytes+1) }, ErrMarkdownTooLarge},
		{"zero device", func(r *Request) { r.Device = DeviceProfile{Key: "x"} }, ErrUnknownDevice},
		{"zero font scale", func(r *Request) { r.FontScale = 0 }, ErrInvalidFontScale},
		{"huge font scale", func(r *Request) { r.FontScale = 5 }, ErrInvalidFontScale},
		{"unknown theme", func(r *Request) { r.Theme = "blue" }, ErrInvalidTheme},
		{"unknown layout", func(r *Request) { r.Layout = "grid" }, ErrInvalidLayout},
		{"unknown template", func(r *Request) { r.Template = "retro" }, ErrInvalidTemplate},
		{"negative padding", func(r *Request) { r.Padding = -1 }, ErrInvalidPadding},
		{"padding fills screen", func(r *Request) { r.Padding = 198 }, ErrInvalidPadding},
		{"bad font", func(r *Request) { r.Fonts.Body = "Arial; color: red" }, ErrInvalidFont},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := NewRequest("# ok", DefaultDevice())
			tt.mutate(&req)

			err := req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if !IsValidationError(err) {
				t.Errorf("IsValidationError(%v) = false, want true", err)
			}
		})
	}
}

func TestRequest_Validate_Accepts(t *testing.T) {
	t.Parallel()

	req := NewRequest("# ok", DefaultDevice())
	req.FontScale = FontScaleLarge
	req.Padding = 0
	req.Fonts = Fonts{Body: "Fira Sans", Code: "JetBrains Mono"}
	if err := req.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestIsValidationError(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrRender, ErrPagination, ErrConfiguration, ErrPDFInvalid, nil} {
		if IsValidationError(err) {
			t.Errorf("IsValidationError(%v) = true, want false", err)
		}
	}
}
