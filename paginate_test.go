package md2watch

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Notes:
// - Rasters are generated in memory. Each row gets a distinct grey level
//   so crops can be checked against the row range they claim to cover.

// stripedPNG returns a width x height PNG whose row y has grey level y%256.
func stripedPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		c := color.NRGBA{R: uint8(y % 256), G: uint8(y % 256), B: uint8(y % 256), A: 255}
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// TestPageBands - page count and row ranges
// ---------------------------------------------------------------------------

func TestPageBands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		fullHeight int
		pageHeight int
		padding    int
		overlap    int
		want       []Band
	}{
		{
			name:       "three overlapping pages",
			fullHeight: 1000, pageHeight: 394, padding: 20, overlap: 10,
			want: []Band{{0, 394}, {384, 778}, {768, 1000}},
		},
		{
			name:       "shorter than one page",
			fullHeight: 300, pageHeight: 394, padding: 20, overlap: 10,
			want: []Band{{0, 300}},
		},
		{
			name:       "exactly one page",
			fullHeight: 394, pageHeight: 394, padding: 20, overlap: 10,
			want: []Band{{0, 394}},
		},
		{
			name:       "one row past a page",
			fullHeight: 395, pageHeight: 394, padding: 0, overlap: 10,
			want: []Band{{0, 394}, {384, 395}},
		},
		{
			name:       "padding larger than content",
			fullHeight: 10, pageHeight: 394, padding: 20, overlap: 10,
			want: []Band{{0, 10}},
		},
		{
			name:       "estimate too low is raised",
			fullHeight: 780, pageHeight: 394, padding: 400, overlap: 10,
			want: []Band{{0, 394}, {384, 778}, {768, 780}},
		},
		{
			name:       "estimate too high is lowered",
			fullHeight: 400, pageHeight: 394, padding: 0, overlap: 300,
			want: []Band{{0, 394}, {94, 400}},
		},
		{
			// ceil(778/384) = 3 would add a third band [768,778) inside the second.
			name:       "trailing band inside previous is dropped",
			fullHeight: 778, pageHeight: 394, padding: 0, overlap: 10,
			want: []Band{{0, 394}, {384, 778}},
		},
		{
			name:       "short document with large overlap stays one page",
			fullHeight: 300, pageHeight: 394, padding: 0, overlap: 300,
			want: []Band{{0, 300}},
		},
		{
			name:       "no overlap",
			fullHeight: 800, pageHeight: 400, padding: 0, overlap: 0,
			want: []Band{{0, 400}, {400, 800}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := PageBands(tt.fullHeight, tt.pageHeight, tt.padding, tt.overlap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageBands_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		fullHeight int
		pageHeight int
		overlap    int
		wantErr    error
	}{
		{name: "overlap equals height", fullHeight: 1000, pageHeight: 394, overlap: 394, wantErr: ErrConfiguration},
		{name: "overlap exceeds height", fullHeight: 1000, pageHeight: 394, overlap: 500, wantErr: ErrConfiguration},
		{name: "negative overlap", fullHeight: 1000, pageHeight: 394, overlap: -1, wantErr: ErrConfiguration},
		{name: "zero page height", fullHeight: 1000, pageHeight: 0, overlap: 0, wantErr: ErrConfiguration},
		{name: "zero full height", fullHeight: 0, pageHeight: 394, overlap: 10, wantErr: ErrPagination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bands, err := PageBands(tt.fullHeight, tt.pageHeight, 20, tt.overlap)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, bands)
		})
	}
}

// ---------------------------------------------------------------------------
// TestPageBands_Properties - coverage and stride over a range of inputs
// ---------------------------------------------------------------------------

func TestPageBands_Properties(t *testing.T) {
	t.Parallel()

	for _, pageHeight := range []int{394, 410, 484} {
		for _, overlap := range []int{0, 10, 50} {
			for _, padding := range []int{0, 20, 60} {
				for fullHeight := 1; fullHeight <= 3000; fullHeight += 37 {
					bands, err := PageBands(fullHeight, pageHeight, padding, overlap)
					require.NoError(t, err)
					require.NotEmpty(t, bands)

					advance := pageHeight - overlap
					assert.Equal(t, 0, bands[0].Top)
					assert.Equal(t, fullHeight, bands[len(bands)-1].Bottom, "last page ends at the raster bottom")

					for i, b := range bands {
						assert.LessOrEqual(t, b.Height(), pageHeight)
						assert.Positive(t, b.Height())
						if i == 0 {
							continue
						}
						prev := bands[i-1]
						assert.Equal(t, advance, b.Top-prev.Top, "stride")
						assert.LessOrEqual(t, b.Top, prev.Bottom, "no gap")
						assert.Greater(t, b.Bottom, prev.Bottom, "each page shows new rows")
					}

					if fullHeight <= pageHeight {
						assert.Equal(t, []Band{{0, fullHeight}}, bands)
					}
				}
			}
		}
	}
}

// ---------------------------------------------------------------------------
// TestPaginate - decoding, cropping and encoding
// ---------------------------------------------------------------------------

func TestPaginate(t *testing.T) {
	t.Parallel()

	raster := stripedPNG(t, 324, 1000)

	pages, err := Paginate(raster, 324, 394, 20, 10)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	wantTops := []int{0, 384, 768}
	wantHeights := []int{394, 394, 232}
	for i, p := range pages {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, wantTops[i], p.Top)
		assert.Equal(t, wantHeights[i], p.Height)
		assert.Equal(t, p.Top+p.Height, p.Bottom)
		assert.Equal(t, 324, p.Width)

		img, err := imaging.Decode(bytes.NewReader(p.PNG))
		require.NoError(t, err)
		assert.Equal(t, 324, img.Bounds().Dx())
		assert.Equal(t, p.Height, img.Bounds().Dy())

		// The first row of every page is the raster row it starts at.
		r, _, _, _ := img.At(0, 0).RGBA()
		assert.Equal(t, uint32(p.Top%256), r>>8, "page %d first row", p.Number)
	}
}

func TestPaginate_ShortDocument(t *testing.T) {
	t.Parallel()

	pages, err := Paginate(stripedPNG(t, 324, 300), 324, 394, 20, 10)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 300, pages[0].Height)
	assert.Equal(t, 0, pages[0].Top)
	assert.Equal(t, 300, pages[0].Bottom)
}

func TestPaginate_Width(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pageWidth int
		want      int
	}{
		{name: "narrower than raster", pageWidth: 200, want: 200},
		{name: "same as raster", pageWidth: 324, want: 324},
		{name: "wider than raster", pageWidth: 500, want: 324},
		{name: "zero falls back", pageWidth: 0, want: 324},
	}

	raster := stripedPNG(t, 324, 800)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pages, err := Paginate(raster, tt.pageWidth, 394, 20, 10)
			require.NoError(t, err)
			for _, p := range pages {
				assert.Equal(t, tt.want, p.Width)
				cfg, _, err := image.DecodeConfig(bytes.NewReader(p.PNG))
				require.NoError(t, err)
				assert.Equal(t, tt.want, cfg.Width)
			}
		})
	}
}

func TestPaginate_JPEG(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, imaging.New(324, 600, color.White), nil))

	pages, err := Paginate(buf.Bytes(), 324, 394, 20, 10)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestPaginate_Deterministic(t *testing.T) {
	t.Parallel()

	raster := stripedPNG(t, 100, 1200)
	first, err := Paginate(raster, 100, 394, 20, 10)
	require.NoError(t, err)
	second, err := Paginate(raster, 100, 394, 20, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPaginate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raster  []byte
		overlap int
		wantErr error
	}{
		{name: "empty", raster: nil, overlap: 10, wantErr: ErrPagination},
		{name: "not an image", raster: []byte("<html>oops</html>"), overlap: 10, wantErr: ErrPagination},
		{name: "truncated png", raster: stripedPNG(t, 50, 50)[:40], overlap: 10, wantErr: ErrPagination},
		{name: "overlap too large", raster: stripedPNG(t, 50, 500), overlap: 394, wantErr: ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pages, err := Paginate(tt.raster, 50, 394, 20, tt.overlap)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, pages)
		})
	}
}
