package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/config"
	"github.com/alnah/go-md2watch/internal/pdfinfo/pdftest"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake renderer and environment
// ---------------------------------------------------------------------------

// fakeRenderer returns one page per "---" separated section.
type fakeRenderer struct {
	mu     sync.Mutex
	reqs   []md2watch.Request
	err    error
	size   int
	closed bool
}

func (r *fakeRenderer) record(req md2watch.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return r.err
}

func (r *fakeRenderer) Render(_ context.Context, req md2watch.Request) (*md2watch.Result, error) {
	if err := r.record(req); err != nil {
		return nil, err
	}
	sections := strings.Split(req.Markdown, "---")
	res := &md2watch.Result{Device: req.Device, Layout: req.Layout}
	for i, s := range sections {
		res.Pages = append(res.Pages, md2watch.Page{
			Number: i + 1,
			Width:  req.Device.Width,
			Height: req.Device.Height,
			PNG:    []byte(fmt.Sprintf("png %d: %s", i+1, strings.TrimSpace(s))),
		})
	}
	return res, nil
}

func (r *fakeRenderer) RenderPDF(_ context.Context, req md2watch.Request) (*md2watch.PDFResult, error) {
	if err := r.record(req); err != nil {
		return nil, err
	}
	return &md2watch.PDFResult{PDF: pdftest.Build(1, "fake"), Pages: 1, Version: "1.4"}, nil
}

func (r *fakeRenderer) Preview(_ context.Context, req md2watch.Request) (string, error) {
	if err := r.record(req); err != nil {
		return "", err
	}
	return "<html>" + req.Markdown + "</html>", nil
}

func (r *fakeRenderer) Size() int {
	if r.size == 0 {
		return 2
	}
	return r.size
}

func (r *fakeRenderer) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func (r *fakeRenderer) requests() []md2watch.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]md2watch.Request(nil), r.reqs...)
}

// testEnv returns an environment with captured output, default config and
// the given renderer.
func testEnv(r *fakeRenderer) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdout: stdout,
		Stderr: stderr,
		LoadConfig: func(string) (*config.Config, error) {
			return config.DefaultConfig(), nil
		},
		NewRenderer: func(*config.Config) Renderer { return r },
		ConnectTelegram: func(string, bool) (Telegram, error) {
			return nil, errors.New("telegram disabled in tests")
		},
	}
	return env, stdout, stderr
}

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake Telegram
// ---------------------------------------------------------------------------

type fakeTelegram struct {
	mu       sync.Mutex
	updates  chan tgbotapi.Update
	requests []tgbotapi.Chattable
	sent     []tgbotapi.Chattable
	stopped  bool
	once     sync.Once
}

func newFakeTelegram() *fakeTelegram {
	return &fakeTelegram{updates: make(chan tgbotapi.Update)}
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	f.sent = append(f.sent, c)
	f.mu.Unlock()
	return tgbotapi.Message{MessageID: 1}, nil
}

func (f *fakeTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, c)
	f.mu.Unlock()
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) GetFileDirectURL(string) (string, error) {
	return "", errors.New("no files")
}

func (f *fakeTelegram) Updates(time.Duration) <-chan tgbotapi.Update {
	return f.updates
}

func (f *fakeTelegram) Stop() {
	f.once.Do(func() {
		f.mu.Lock()
		f.stopped = true
		f.mu.Unlock()
		close(f.updates)
	})
}

func (f *fakeTelegram) wasStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func (f *fakeTelegram) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
