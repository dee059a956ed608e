package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestImageArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		g    Geometry
		want []string
	}{
		{
			name: "fixed height",
			g:    Geometry{Width: 324, Height: 394, Delay: 2 * time.Second},
			want: []string{
				"--quiet", "--width", "324", "--height", "394",
				"--disable-smart-width", "--encoding", "UTF-8",
				"--javascript-delay", "2000", "--format", "png", "-", "-",
			},
		},
		{
			name: "unbounded height",
			g:    Geometry{Width: 396},
			want: []string{
				"--quiet", "--width", "396",
				"--disable-smart-width", "--encoding", "UTF-8",
				"--javascript-delay", "0", "--format", "png", "-", "-",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := imageArgs(tt.g); !slices.Equal(got, tt.want) {
				t.Errorf("imageArgs(%+v) = %q, want %q", tt.g, got, tt.want)
			}
		})
	}
}

func TestPDFArgs(t *testing.T) {
	t.Parallel()

	got := strings.Join(pdfArgs(Geometry{Width: 96, Height: 192}), " ")
	for _, want := range []string{"--page-width 25.4mm", "--page-height 50.8mm", "--margin-top 0", "- -"} {
		if !strings.Contains(got, want) {
			t.Errorf("pdfArgs() = %q, want it to contain %q", got, want)
		}
	}
}

// fakeTool writes an executable shell script standing in for a wkhtml binary.
func fakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "tool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil { // #nosec G306 -- test executable
		t.Fatalf("writing fake tool: %v", err)
	}
	return path
}

func TestWkhtml_Run(t *testing.T) {
	t.Parallel()

	t.Run("stdout is returned", func(t *testing.T) {
		t.Parallel()

		bin := fakeTool(t, `cat >/dev/null; printf 'PNGDATA'`)
		w := NewWkhtml(Options{WkhtmlToImageBin: bin})

		got, err := w.Screenshot(context.Background(), "<p>x</p>", Geometry{Width: 324, Height: 394})
		if err != nil {
			t.Fatalf("Screenshot() error = %v", err)
		}
		if string(got) != "PNGDATA" {
			t.Errorf("Screenshot() = %q, want %q", got, "PNGDATA")
		}
	})

	t.Run("html is piped on stdin", func(t *testing.T) {
		t.Parallel()

		bin := fakeTool(t, `cat`)
		w := NewWkhtml(Options{WkhtmlToPDFBin: bin})

		got, err := w.PrintPDF(context.Background(), "<p>echo</p>", Geometry{Width: 324, Height: 394})
		if err != nil {
			t.Fatalf("PrintPDF() error = %v", err)
		}
		if string(got) != "<p>echo</p>" {
			t.Errorf("PrintPDF() = %q, want the piped html", got)
		}
	})

	t.Run("stderr becomes the error", func(t *testing.T) {
		t.Parallel()

		bin := fakeTool(t, `echo "Exit with code 1 due to network error" >&2; exit 1`)
		w := NewWkhtml(Options{WkhtmlToImageBin: bin})

		_, err := w.Screenshot(context.Background(), "", Geometry{Width: 324})
		if !errors.Is(err, ErrEngine) || !errors.Is(err, ErrCapture) {
			t.Fatalf("Screenshot() error = %v, want ErrEngine and ErrCapture", err)
		}
		if !strings.Contains(err.Error(), "network error") {
			t.Errorf("Screenshot() error = %v, want stderr message", err)
		}
	})

	t.Run("empty output is an error", func(t *testing.T) {
		t.Parallel()

		bin := fakeTool(t, `cat >/dev/null`)
		w := NewWkhtml(Options{WkhtmlToImageBin: bin})

		if _, err := w.Screenshot(context.Background(), "", Geometry{Width: 324}); !errors.Is(err, ErrCapture) {
			t.Errorf("Screenshot() error = %v, want ErrCapture", err)
		}
	})

	t.Run("timeout kills the process", func(t *testing.T) {
		t.Parallel()

		bin := fakeTool(t, `exec sleep 10`)
		w := NewWkhtml(Options{WkhtmlToImageBin: bin, Timeout: 50 * time.Millisecond})

		_, err := w.Screenshot(context.Background(), "", Geometry{Width: 324})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Screenshot() error = %v, want context.DeadlineExceeded", err)
		}
	})

	t.Run("missing binary", func(t *testing.T) {
		t.Parallel()

		w := NewWkhtml(Options{WkhtmlToImageBin: filepath.Join(t.TempDir(), "absent")})
		if _, err := w.Screenshot(context.Background(), "", Geometry{Width: 324}); !errors.Is(err, ErrEngine) {
			t.Errorf("Screenshot() error = %v, want ErrEngine", err)
		}
	})
}
