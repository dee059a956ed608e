package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/pdfinfo/pdftest"
	"github.com/alnah/go-md2watch/internal/prefs"
)

// Notes:
// - fakeClient records every Chattable; Send and Request never reach Telegram.
// - fakeRenderer returns one page per "---" separated section so multipage
//   behaviour is visible without a browser.
// - Handle is called directly for determinism; Run has its own tests.

const (
	testUser = int64(7)
	testChat = int64(70)
)

type fakeClient struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
	fileURL  string
}

func (c *fakeClient) Send(ch tgbotapi.Chattable) (tgbotapi.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, ch)
	return tgbotapi.Message{}, c.sendErr
}

func (c *fakeClient) Request(ch tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, ch)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (c *fakeClient) GetFileDirectURL(fileID string) (string, error) {
	if c.fileURL == "" {
		return "", errors.New("no file")
	}
	return c.fileURL + "/" + fileID, nil
}

func (c *fakeClient) Sent() []tgbotapi.Chattable {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), c.sent...)
}

// texts returns the text of every plain message and edit sent.
func (c *fakeClient) texts() []string {
	var out []string
	for _, ch := range c.Sent() {
		switch m := ch.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (c *fakeClient) lastText(t *testing.T) string {
	t.Helper()
	texts := c.texts()
	require.NotEmpty(t, texts, "no text message sent")
	return texts[len(texts)-1]
}

type fakeRenderer struct {
	mu        sync.Mutex
	requests  []md2watch.Request
	err       error
	pdfCalls  atomic.Int32
	inFlight  atomic.Int32
	maxFlight atomic.Int32
	delay     time.Duration
}

func (r *fakeRenderer) record(req md2watch.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
}

func (r *fakeRenderer) last(t *testing.T) md2watch.Request {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.requests)
	return r.requests[len(r.requests)-1]
}

func (r *fakeRenderer) Render(_ context.Context, req md2watch.Request) (*md2watch.Result, error) {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		m := r.maxFlight.Load()
		if n <= m || r.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(r.delay)

	r.record(req)
	if r.err != nil {
		return nil, r.err
	}
	count := 1
	if req.Layout == md2watch.LayoutMultipage {
		count = len(strings.Split(req.Markdown, "---"))
	}
	res := &md2watch.Result{Device: req.Device, Layout: req.Layout}
	for i := 1; i <= count; i++ {
		res.Pages = append(res.Pages, md2watch.Page{Number: i, PNG: []byte(fmt.Sprintf("png-%d", i))})
	}
	return res, nil
}

func (r *fakeRenderer) RenderPDF(_ context.Context, req md2watch.Request) (*md2watch.PDFResult, error) {
	r.pdfCalls.Add(1)
	r.record(req)
	if r.err != nil {
		return nil, r.err
	}
	return &md2watch.PDFResult{PDF: pdftest.Build(1, "fake"), Pages: 1, Version: "1.4"}, nil
}

func (r *fakeRenderer) Preview(_ context.Context, req md2watch.Request) (string, error) {
	r.record(req)
	if r.err != nil {
		return "", r.err
	}
	return "<html>" + req.Markdown + "</html>", nil
}

type failingStore struct{}

func (failingStore) Load(context.Context, int64) (prefs.Preferences, error) {
	return prefs.Preferences{}, prefs.ErrStore
}

func (failingStore) Save(context.Context, int64, prefs.Preferences) error { return prefs.ErrStore }

type harness struct {
	bot      *Bot
	client   *fakeClient
	renderer *fakeRenderer
	store    *prefs.MemoryStore
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{client: &fakeClient{}, renderer: &fakeRenderer{}, store: prefs.NewMemoryStore()}
	b, err := New(h.client, h.renderer, h.store, opts)
	require.NoError(t, err)
	h.bot = b
	return h
}

func (h *harness) withDevice(t *testing.T, key string) {
	t.Helper()
	p := prefs.Defaults()
	p.Device = key
	require.NoError(t, h.store.Save(context.Background(), testUser, p))
}

func (h *harness) prefs(t *testing.T) prefs.Preferences {
	t.Helper()
	p, err := h.store.Load(context.Background(), testUser)
	require.NoError(t, err)
	return p
}

func message(text string) tgbotapi.Update {
	m := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: testUser},
		Chat:      &tgbotapi.Chat{ID: testChat},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		cmd, _, _ = strings.Cut(cmd, "\n")
		m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return tgbotapi.Update{UpdateID: 1, Message: m}
}

func callback(data string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 2, CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: testUser},
		Message: &tgbotapi.Message{MessageID: 99, Chat: &tgbotapi.Chat{ID: testChat}},
		Data:    data,
	}}
}

func document(name string, size int) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 3, Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: testUser},
		Chat:      &tgbotapi.Chat{ID: testChat},
		Document:  &tgbotapi.Document{FileID: "doc-1", FileName: name, FileSize: size},
	}}
}

// ---------------------------------------------------------------------------
// New
// ---------------------------------------------------------------------------

func TestNew_NilDependencies(t *testing.T) {
	t.Parallel()

	_, err := New(nil, &fakeRenderer{}, prefs.NewMemoryStore(), Options{})
	assert.ErrorIs(t, err, ErrNilDependency)
	_, err = New(&fakeClient{}, nil, prefs.NewMemoryStore(), Options{})
	assert.ErrorIs(t, err, ErrNilDependency)
	_, err = New(&fakeClient{}, &fakeRenderer{}, nil, Options{})
	assert.ErrorIs(t, err, ErrNilDependency)
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func TestHandle_StartAndHelp(t *testing.T) {
	t.Parallel()

	for _, cmd := range []string{"/start", "/help"} {
		h := newHarness(t, Options{})
		h.bot.Handle(context.Background(), message(cmd))
		assert.Equal(t, msgWelcome, h.client.lastText(t), cmd)
	}
}

func TestHandle_Keyboards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd      string
		prompt   string
		wantData []string
	}{
		{cmd: "/model", prompt: msgSelectModel, wantData: md2watch.DeviceKeys()},
		{cmd: "/fontsize", prompt: msgSelectFontSize, wantData: []string{"font_small", "font_medium", "font_large"}},
		{cmd: "/theme", prompt: msgSelectTheme, wantData: []string{"theme_dark", "theme_light"}},
		{cmd: "/layout", prompt: msgSelectLayout, wantData: []string{"layout_continuous", "layout_multipage"}},
		{cmd: "/template", prompt: msgSelectTemplate, wantData: []string{"template_minimalistic", "template_modern", "template_classic"}},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, Options{})
			h.bot.Handle(context.Background(), message(tt.cmd))

			sent := h.client.Sent()
			require.Len(t, sent, 1)
			m, ok := sent[0].(tgbotapi.MessageConfig)
			require.True(t, ok)
			assert.Equal(t, tt.prompt, m.Text)
			assert.Equal(t, testChat, m.ChatID)

			kb, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
			require.True(t, ok)
			var data []string
			for _, row := range kb.InlineKeyboard {
				assert.LessOrEqual(t, len(row), 3)
				for _, btn := range row {
					require.NotNil(t, btn.CallbackData)
					data = append(data, *btn.CallbackData)
				}
			}
			assert.ElementsMatch(t, tt.wantData, data)
		})
	}
}

func TestHandle_Padding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text        string
		wantReply   string
		wantPadding int
	}{
		{text: "/padding", wantReply: msgPaddingUsage, wantPadding: md2watch.DefaultPadding},
		{text: "/padding wide", wantReply: msgPaddingInteger, wantPadding: md2watch.DefaultPadding},
		{text: "/padding -5", wantReply: msgPaddingRange(prefs.MaxPadding), wantPadding: md2watch.DefaultPadding},
		{text: "/padding 500", wantReply: msgPaddingRange(prefs.MaxPadding), wantPadding: md2watch.DefaultPadding},
		{text: "/padding 12", wantReply: "Padding set to 12 px", wantPadding: 12},
		{text: "/padding 0", wantReply: "Padding set to 0 px", wantPadding: 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, Options{})
			h.bot.Handle(context.Background(), message(tt.text))
			assert.Equal(t, tt.wantReply, h.client.lastText(t))
			assert.Equal(t, tt.wantPadding, h.prefs(t).Padding)
		})
	}
}

func TestHandle_Font(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	ctx := context.Background()

	h.bot.Handle(ctx, message("/font"))
	assert.Equal(t, msgFontUsage, h.client.lastText(t))

	h.bot.Handle(ctx, message("/font footer Arial"))
	assert.Equal(t, msgFontUsage, h.client.lastText(t))

	h.bot.Handle(ctx, message("/font code x;}</style>"))
	assert.Equal(t, msgFontInvalid, h.client.lastText(t))

	h.bot.Handle(ctx, message("/font header Fira Sans"))
	assert.Equal(t, "Header font set to Fira Sans", h.client.lastText(t))
	assert.Equal(t, "Fira Sans", h.prefs(t).Fonts.Header)

	h.bot.Handle(ctx, message("/font header reset"))
	assert.Equal(t, "Header font reset to the template default", h.client.lastText(t))
	assert.Empty(t, h.prefs(t).Fonts.Header)
}

func TestHandle_Settings(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	h.withDevice(t, md2watch.DeviceUltra2)
	h.bot.Handle(context.Background(), message("/settings"))
	assert.Contains(t, h.client.lastText(t), "Model: Ultra 2 (502x410)")
}

func TestHandle_UnknownCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	h.bot.Handle(context.Background(), message("/bogus"))
	assert.Equal(t, msgUnknownCommand, h.client.lastText(t))
}

// ---------------------------------------------------------------------------
// Callbacks
// ---------------------------------------------------------------------------

func TestHandle_Callback(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	ctx := context.Background()

	h.bot.Handle(ctx, callback(md2watch.DeviceSE44))
	h.bot.Handle(ctx, callback("font_large"))
	h.bot.Handle(ctx, callback("theme_light"))
	h.bot.Handle(ctx, callback("layout_multipage"))
	h.bot.Handle(ctx, callback("template_classic"))

	p := h.prefs(t)
	assert.Equal(t, md2watch.DeviceSE44, p.Device)
	assert.Equal(t, md2watch.FontScaleLarge, p.FontScale)
	assert.Equal(t, md2watch.ThemeLight, p.Theme)
	assert.Equal(t, md2watch.LayoutMultipage, p.Layout)
	assert.Equal(t, md2watch.TemplateClassic, p.Template)

	assert.Equal(t, []string{
		"Model selected: SE 44mm",
		"Font size set to Large",
		"Theme set to Light",
		"Layout set to Multipage",
		"Template set to Classic",
	}, h.client.texts())

	for _, ch := range h.client.Sent() {
		edit, ok := ch.(tgbotapi.EditMessageTextConfig)
		require.True(t, ok, "callbacks edit the keyboard message")
		assert.Equal(t, 99, edit.MessageID)
		assert.Equal(t, testChat, edit.ChatID)
	}
	assert.Len(t, h.client.requests, 5, "every callback is answered")
}

func TestHandle_CallbackUnknown(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	h.bot.Handle(context.Background(), callback("theme_sepia"))

	assert.Empty(t, h.client.Sent())
	require.Len(t, h.client.requests, 1)
	answer, ok := h.client.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, msgUnknownOption, answer.Text)
	assert.Equal(t, prefs.Defaults(), h.prefs(t))
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func TestHandle_TextWithoutModel(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	h.bot.Handle(context.Background(), message("# Hello"))
	assert.Equal(t, msgNoModel, h.client.lastText(t))
	assert.Empty(t, h.renderer.requests)
}

func TestHandle_TextContinuous(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	h.withDevice(t, md2watch.DeviceSE40)
	h.bot.Handle(context.Background(), message("# Hello"))

	req := h.renderer.last(t)
	assert.Equal(t, "# Hello", req.Markdown)
	assert.Equal(t, md2watch.DeviceSE40, req.Device.Key)
	assert.Equal(t, md2watch.LayoutContinuous, req.Layout)

	sent := h.client.Sent()
	require.Len(t, sent, 1)
	photo, ok := sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, "Page 1 (SE 40mm)", photo.Caption)
	file, ok := photo.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "watch_markdown_1.png", file.Name)
	assert.Equal(t, []byte("png-1"), file.Bytes)
}

func TestHandle_TextMultipageInOrder(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	p := prefs.Defaults()
	p.Device = md2watch.DeviceSeries45
	p.Layout = md2watch.LayoutMultipage
	require.NoError(t, h.store.Save(context.Background(), testUser, p))

	h.bot.Handle(context.Background(), message("a\n---\nb\n---\nc"))

	sent := h.client.Sent()
	require.Len(t, sent, 3)
	for i, ch := range sent {
		photo, ok := ch.(tgbotapi.PhotoConfig)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("Page %d (Series 8/9 45mm)", i+1), photo.Caption)
		assert.Equal(t, fmt.Sprintf("watch_markdown_%d.png", i+1), photo.File.(tgbotapi.FileBytes).Name)
	}
}

func TestHandle_RenderFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		reply string
	}{
		{name: "engine failure", err: fmt.Errorf("%w: boom", md2watch.ErrRender), reply: msgError},
		{name: "timeout", err: fmt.Errorf("%w: %w", md2watch.ErrRender, context.DeadlineExceeded), reply: msgTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, Options{})
			h.renderer.err = tt.err
			h.withDevice(t, md2watch.DeviceSE40)
			h.bot.Handle(context.Background(), message("# Hello"))

			sent := h.client.Sent()
			require.Len(t, sent, 1, "no partial page sequence")
			assert.Equal(t, tt.reply, h.client.lastText(t))
		})
	}
}

func TestHandle_StoreFailure(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	b, err := New(client, &fakeRenderer{}, failingStore{}, Options{})
	require.NoError(t, err)

	b.Handle(context.Background(), message("# Hello"))
	assert.Equal(t, msgError, client.lastText(t))
}

func TestHandle_Preview(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	ctx := context.Background()

	h.bot.Handle(ctx, message("/preview"))
	assert.Equal(t, msgPreviewUsage, h.client.lastText(t))

	h.bot.Handle(ctx, message("/preview # Hi"))
	assert.Equal(t, msgNoModel, h.client.lastText(t))

	h.withDevice(t, md2watch.DeviceSE40)
	h.bot.Handle(ctx, message("/preview # Hi\n\ntext"))

	sent := h.client.Sent()
	doc, ok := sent[len(sent)-1].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	assert.Equal(t, captionPreview, doc.Caption)
	file := doc.File.(tgbotapi.FileBytes)
	assert.Equal(t, "preview.html", file.Name)
	assert.Equal(t, "<html># Hi\n\ntext</html>", string(file.Bytes))
}

func TestHandle_PDF(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{EngineName: "rod"})
	ctx := context.Background()

	h.bot.Handle(ctx, message("/pdf"))
	assert.Equal(t, msgPDFUsage, h.client.lastText(t))

	h.withDevice(t, md2watch.DeviceUltra2)
	h.bot.Handle(ctx, message("/pdf # Report"))

	sent := h.client.Sent()
	doc, ok := sent[len(sent)-1].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	assert.Equal(t, captionPDF, doc.Caption)
	file := doc.File.(tgbotapi.FileBytes)
	assert.Equal(t, "output.pdf", file.Name)
	assert.True(t, strings.HasPrefix(string(file.Bytes), "%PDF-"))
	assert.Equal(t, "# Report", h.renderer.last(t).Markdown)
	assert.EqualValues(t, 1, h.renderer.pdfCalls.Load())
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

func fileServer(t *testing.T, body string, status int) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestHandle_Document(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	h.client.fileURL = fileServer(t, "# From file", http.StatusOK)
	h.withDevice(t, md2watch.DeviceSE40)

	h.bot.Handle(context.Background(), document("notes.MD", 11))

	assert.Equal(t, "# From file", h.renderer.last(t).Markdown)
	sent := h.client.Sent()
	require.Len(t, sent, 1)
	_, ok := sent[0].(tgbotapi.PhotoConfig)
	assert.True(t, ok)
}

func TestHandle_DocumentRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		file     string
		size     int
		body     string
		status   int
		noDevice bool
		reply    string
	}{
		{name: "wrong type", file: "notes.pdf", size: 10, reply: msgUploadType},
		{name: "declared too large", file: "notes.md", size: 1 << 20, reply: msgFileTooLarge(64)},
		{name: "actually too large", file: "notes.md", size: 10, body: strings.Repeat("a", 65), status: http.StatusOK, reply: msgFileTooLarge(64)},
		{name: "not utf8", file: "notes.txt", size: 3, body: "\xff\xfe\xfd", status: http.StatusOK, reply: msgNotUTF8},
		{name: "download failure", file: "notes.txt", size: 3, body: "nope", status: http.StatusNotFound, reply: msgDownloadError},
		{name: "no device", file: "notes.md", size: 3, noDevice: true, reply: msgNoModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, Options{MaxFileBytes: 64})
			if tt.status != 0 {
				h.client.fileURL = fileServer(t, tt.body, tt.status)
			}
			if !tt.noDevice {
				h.withDevice(t, md2watch.DeviceSE40)
			}

			h.bot.Handle(context.Background(), document(tt.file, tt.size))
			assert.Equal(t, tt.reply, h.client.lastText(t))
			assert.Empty(t, h.renderer.requests)
		})
	}
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRun_BoundsInFlightUpdates(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{MaxInFlight: 2})
	h.renderer.delay = 20 * time.Millisecond
	h.withDevice(t, md2watch.DeviceSE40)

	updates := make(chan tgbotapi.Update)
	done := make(chan error, 1)
	go func() { done <- h.bot.Run(context.Background(), updates) }()

	for i := range 6 {
		updates <- message(fmt.Sprintf("# note %d", i))
	}
	close(updates)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after updates closed")
	}

	assert.Len(t, h.client.Sent(), 6, "Run waits for in-flight handlers")
	assert.LessOrEqual(t, h.renderer.maxFlight.Load(), int32(2))
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.bot.Run(ctx, make(chan tgbotapi.Update)) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

type panicRenderer struct{ fakeRenderer }

func (*panicRenderer) Render(context.Context, md2watch.Request) (*md2watch.Result, error) {
	panic("boom")
}

func TestHandle_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	store := prefs.NewMemoryStore()
	p := prefs.Defaults()
	p.Device = md2watch.DeviceSE40
	require.NoError(t, store.Save(context.Background(), testUser, p))

	b, err := New(client, &panicRenderer{}, store, Options{})
	require.NoError(t, err)
	assert.NotPanics(t, func() { b.Handle(context.Background(), message("# Hello")) })
	assert.Empty(t, client.Sent())
}

func TestCommands(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, c := range Commands() {
		assert.NotEmpty(t, c.Description)
		assert.False(t, seen[c.Command], "duplicate %s", c.Command)
		seen[c.Command] = true
	}
	for _, want := range []string{cmdModel, cmdPadding, cmdFontSize, cmdTheme, cmdLayout, cmdTemplate, cmdFont, cmdSettings, cmdPreview, cmdPDF} {
		assert.True(t, seen[want], want)
	}

	client := &fakeClient{}
	require.NoError(t, RegisterCommands(client))
	require.Len(t, client.requests, 1)
	_, ok := client.requests[0].(tgbotapi.SetMyCommandsConfig)
	assert.True(t, ok)
}
