package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	t.Run("embedded only", func(t *testing.T) {
		t.Parallel()

		r, err := NewAssetResolver("")
		if err != nil {
			t.Fatalf("NewAssetResolver(\"\") error = %v", err)
		}
		if r.HasCustomLoader() {
			t.Error("HasCustomLoader() = true, want false")
		}
	})

	t.Run("invalid custom path", func(t *testing.T) {
		t.Parallel()

		_, err := NewAssetResolver("/nonexistent/md2watch/assets")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewAssetResolver() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestAssetResolver_CustomOverridesEmbedded(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "styles", "modern.css", "body { font-family: 'Custom'; }")

	r, err := NewAssetResolver(tmpDir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}
	if !r.HasCustomLoader() {
		t.Fatal("HasCustomLoader() = false, want true")
	}

	got, err := r.LoadStyle("modern")
	if err != nil {
		t.Fatalf("LoadStyle(\"modern\") error = %v", err)
	}
	if !strings.Contains(got, "'Custom'") {
		t.Errorf("LoadStyle(\"modern\") = %q, want custom content", got)
	}

	// Assets missing from the custom directory come from the embedded set.
	got, err = r.LoadStyle("classic")
	if err != nil {
		t.Fatalf("LoadStyle(\"classic\") error = %v", err)
	}
	if !strings.Contains(got, "Times New Roman") {
		t.Error("LoadStyle(\"classic\") should fall back to embedded style")
	}

	if _, err := r.LoadTemplate(DocumentTemplateName); err != nil {
		t.Errorf("LoadTemplate(%q) error = %v", DocumentTemplateName, err)
	}
}

func TestAssetResolver_ValidationErrorsNotFallenBack(t *testing.T) {
	t.Parallel()

	r, err := NewAssetResolver(t.TempDir())
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	_, err = r.LoadStyle("../base")
	if !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadStyle(\"../base\") error = %v, want ErrInvalidAssetName", err)
	}
}
