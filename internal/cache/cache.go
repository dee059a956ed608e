// Package cache stores rendered PDFs in Redis, keyed by a hash of
// everything that shapes the output.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/logging"
	"github.com/alnah/go-md2watch/internal/pdfinfo"
)

// KeyPrefix namespaces cached PDFs.
const KeyPrefix = "md2watch:pdf:"

// opTimeout bounds every Redis round trip. A slow cache must not slow a
// render down more than this.
const opTimeout = time.Second

// DefaultTTL is used when New is given a non-positive ttl.
const DefaultTTL = 24 * time.Hour

// PDFCache is a best-effort PDF cache. Failures are logged and reported as
// misses. A nil *PDFCache is a valid, disabled cache.
type PDFCache struct {
	rdb      redis.UniversalClient
	ttl      time.Duration
	settings string
}

// New returns a cache on rdb. settings fingerprints the converter
// configuration (MathJax, extra CSS, assets, render delay) so a config
// change never serves PDFs printed under the old one.
func New(rdb redis.UniversalClient, ttl time.Duration, settings string) *PDFCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PDFCache{rdb: rdb, ttl: ttl, settings: settings}
}

// Key hashes every field of req that changes the PDF, plus the engine
// that prints it and the converter settings.
func Key(req md2watch.Request, engineName, settings string) string {
	h := sha256.New()
	for _, part := range []string{
		engineName,
		settings,
		req.Device.Key,
		strconv.Itoa(req.Device.Width),
		strconv.Itoa(req.Device.Height),
		string(req.Theme),
		strconv.FormatFloat(req.FontScale, 'f', -1, 64),
		strconv.Itoa(req.Padding),
		string(req.Layout),
		string(req.Template),
		req.Fonts.Body,
		req.Fonts.Header,
		req.Fonts.Code,
		req.Markdown,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the PDF stored under key and whether it was found.
func (c *PDFCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("PDF cache read failed")
		return nil, false
	}
	logging.FromContext(ctx).Debug().Str("key", key).Msg("PDF cache hit")
	return data, true
}

// Set stores data under key for the cache TTL.
func (c *PDFCache) Set(ctx context.Context, key string, data []byte) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("PDF cache write failed")
	}
}

// RenderPDF serves req from the cache, or renders it with r and stores
// the result. The bool reports a cache hit. Cached entries only carry the
// PDF bytes; Pages and Version are re-read on a hit.
func (c *PDFCache) RenderPDF(ctx context.Context, r md2watch.Renderer, req md2watch.Request, engineName string) (*md2watch.PDFResult, bool, error) {
	var settings string
	if c != nil {
		settings = c.settings
	}
	key := Key(req, engineName, settings)
	if data, ok := c.Get(ctx, key); ok {
		if info, err := pdfinfo.Inspect(data); err == nil {
			return &md2watch.PDFResult{PDF: data, Pages: info.Pages, Version: info.Version, Producer: info.Producer}, true, nil
		}
		logging.FromContext(ctx).Warn().Str("key", key).Msg("discarding unreadable cached PDF")
	}

	res, err := r.RenderPDF(ctx, req)
	if err != nil {
		return nil, false, err
	}
	c.Set(ctx, key, res.PDF)
	return res, false, nil
}
