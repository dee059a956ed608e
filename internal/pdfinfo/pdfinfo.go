// Package pdfinfo checks that engine output is a readable PDF and reports
// its basic properties.
package pdfinfo

import (
	"bytes"
	"errors"
	"fmt"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
)

// ErrUnreadable indicates the bytes do not parse as a PDF document.
var ErrUnreadable = errors.New("unreadable PDF")

// Info summarizes a parsed PDF document.
type Info struct {
	Pages    int
	Version  string
	Producer string
	Size     int
}

// Inspect parses data and returns its page count, version and producer.
func Inspect(data []byte) (*Info, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnreadable)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer func() { _ = r.Close() }()

	pages, err := pagetree.NumPages(r)
	if err != nil {
		return nil, fmt.Errorf("%w: page tree: %v", ErrUnreadable, err)
	}
	if pages == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrUnreadable)
	}

	meta := r.GetMeta()
	info := &Info{
		Pages:   pages,
		Version: meta.Version.String(),
		Size:    len(data),
	}
	if meta.Info != nil {
		info.Producer = string(meta.Info.Producer)
	}
	return info, nil
}
