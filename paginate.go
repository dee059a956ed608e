package md2watch

import (
	"bytes"
	"fmt"
	"image"

	// WebP screenshots decode through the image registry.
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
)

// Band is a half-open row range [Top, Bottom) of a full-height raster.
type Band struct {
	Top    int
	Bottom int
}

// Height returns the number of rows in the band.
func (b Band) Height() int { return b.Bottom - b.Top }

// PageBands computes the rows each page covers when a raster fullHeight
// rows tall is cut into pages pageHeight rows tall that share overlap rows
// with their neighbour.
//
// The first estimate is ceil((fullHeight-padding)/advance) pages, where
// advance is pageHeight-overlap. It is then corrected so that the pages
// cover every row and no page lies wholly inside the one before it.
func PageBands(fullHeight, pageHeight, padding, overlap int) ([]Band, error) {
	if pageHeight <= 0 {
		return nil, fmt.Errorf("%w: page height %d", ErrConfiguration, pageHeight)
	}
	advance := pageHeight - overlap
	if overlap < 0 || advance <= 0 {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrConfiguration, overlap, pageHeight)
	}
	if fullHeight <= 0 {
		return nil, fmt.Errorf("%w: raster height %d", ErrPagination, fullHeight)
	}

	n := ceilDiv(max(fullHeight-padding, 0), advance)
	n = max(n, 1)
	// Cover every row, then drop a last band that lies inside its predecessor.
	for (n-1)*advance+pageHeight < fullHeight {
		n++
	}
	for n > 1 && (n-2)*advance+pageHeight >= fullHeight {
		n--
	}

	bands := make([]Band, n)
	for i := range bands {
		top := i * advance
		bands[i] = Band{Top: top, Bottom: min(top+pageHeight, fullHeight)}
	}
	return bands, nil
}

// Paginate decodes a full-height raster (PNG, JPEG or WebP) and cuts it
// into overlapping PNG pages. Pages are pageWidth wide, falling back to the
// raster width when pageWidth is not positive or exceeds it. Either every
// page is returned or none is.
func Paginate(raster []byte, pageWidth, pageHeight, padding, overlap int) ([]Page, error) {
	img, err := imaging.Decode(bytes.NewReader(raster))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding raster: %w", ErrPagination, err)
	}

	bounds := img.Bounds()
	fullWidth, fullHeight := bounds.Dx(), bounds.Dy()
	if fullWidth == 0 {
		return nil, fmt.Errorf("%w: raster width 0", ErrPagination)
	}

	bands, err := PageBands(fullHeight, pageHeight, padding, overlap)
	if err != nil {
		return nil, err
	}

	width := pageWidth
	if width <= 0 || width > fullWidth {
		width = fullWidth
	}

	pages := make([]Page, 0, len(bands))
	for i, band := range bands {
		crop := imaging.Crop(img, image.Rect(
			bounds.Min.X, bounds.Min.Y+band.Top,
			bounds.Min.X+width, bounds.Min.Y+band.Bottom,
		))

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, crop, imaging.PNG); err != nil {
			return nil, fmt.Errorf("%w: encoding page %d: %w", ErrPagination, i+1, err)
		}

		pages = append(pages, Page{
			Number: i + 1,
			Top:    band.Top,
			Bottom: band.Bottom,
			Width:  width,
			Height: band.Height(),
			PNG:    buf.Bytes(),
		})
	}
	return pages, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
