package server

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/logging"
)

// renderRequest is the JSON body of /v1/render, /v1/pdf and /v1/preview.
// Omitted fields take their defaults.
type renderRequest struct {
	Markdown  string   `json:"markdown"`
	Device    string   `json:"device"`
	Theme     string   `json:"theme"`
	FontScale *float64 `json:"fontScale"`
	Padding   *int     `json:"padding"`
	Layout    string   `json:"layout"`
	Template  string   `json:"template"`
	Fonts     struct {
		Body   string `json:"body"`
		Header string `json:"header"`
		Code   string `json:"code"`
	} `json:"fonts"`
}

type deviceJSON struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	DPI    int    `json:"dpi"`
}

type pageJSON struct {
	Number int    `json:"number"`
	Top    int    `json:"top"`
	Bottom int    `json:"bottom"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	PNG    []byte `json:"png"` // base64 in JSON
}

type renderResponse struct {
	Device deviceJSON `json:"device"`
	Layout string     `json:"layout"`
	Pages  []pageJSON `json:"pages"`
}

func toDeviceJSON(d md2watch.DeviceProfile) deviceJSON {
	return deviceJSON{Key: d.Key, Name: d.Name, Width: d.Width, Height: d.Height, DPI: d.DPI}
}

// toRequest converts the body into a validated md2watch.Request.
func (r renderRequest) toRequest(defaultDevice string) (md2watch.Request, error) {
	key := r.Device
	if key == "" {
		key = defaultDevice
	}
	device, err := md2watch.LookupDevice(key)
	if err != nil {
		return md2watch.Request{}, err
	}

	req := md2watch.NewRequest(r.Markdown, device)
	if r.Theme != "" {
		if req.Theme, err = md2watch.ParseTheme(r.Theme); err != nil {
			return md2watch.Request{}, err
		}
	}
	if r.Layout != "" {
		if req.Layout, err = md2watch.ParseLayout(r.Layout); err != nil {
			return md2watch.Request{}, err
		}
	}
	if r.Template != "" {
		if req.Template, err = md2watch.ParseTemplate(r.Template); err != nil {
			return md2watch.Request{}, err
		}
	}
	if r.FontScale != nil {
		req.FontScale = *r.FontScale
	}
	if r.Padding != nil {
		req.Padding = *r.Padding
	}
	req.Fonts = md2watch.Fonts{Body: r.Fonts.Body, Header: r.Fonts.Header, Code: r.Fonts.Code}

	if err := req.Validate(); err != nil {
		return md2watch.Request{}, err
	}
	return req, nil
}

func (s *Server) parse(c *fiber.Ctx) (md2watch.Request, error) {
	var body renderRequest
	if err := c.BodyParser(&body); err != nil {
		return md2watch.Request{}, fiber.NewError(fiber.StatusBadRequest, "Invalid JSON body")
	}
	req, err := body.toRequest(s.opts.DefaultDevice)
	if err != nil {
		return md2watch.Request{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return req, nil
}

func (s *Server) handleDevices(c *fiber.Ctx) error {
	devices := md2watch.Devices()
	out := make([]deviceJSON, len(devices))
	for i, d := range devices {
		out[i] = toDeviceJSON(d)
	}
	return c.JSON(fiber.Map{"devices": out, "default": s.opts.DefaultDevice})
}

func (s *Server) handleRender(c *fiber.Ctx) error {
	req, err := s.parse(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	res, err := s.opts.Renderer.Render(ctx, req)
	if err != nil {
		return renderError(err)
	}

	out := renderResponse{
		Device: toDeviceJSON(res.Device),
		Layout: string(res.Layout),
		Pages:  make([]pageJSON, len(res.Pages)),
	}
	for i, p := range res.Pages {
		out.Pages[i] = pageJSON{Number: p.Number, Top: p.Top, Bottom: p.Bottom, Width: p.Width, Height: p.Height, PNG: p.PNG}
	}
	logging.FromContext(ctx).Info().Str("device", req.Device.Key).Int("pages", len(res.Pages)).Msg("rendered")
	return c.JSON(out)
}

func (s *Server) handlePDF(c *fiber.Ctx) error {
	req, err := s.parse(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	res, hit, err := s.opts.Cache.RenderPDF(ctx, s.opts.Renderer, req, s.opts.EngineName)
	if err != nil {
		return renderError(err)
	}
	logging.FromContext(ctx).Info().Int("pdf_pages", res.Pages).Bool("cached", hit).Msg("pdf")

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="output.pdf"`)
	c.Set("X-PDF-Pages", strconv.Itoa(res.Pages))
	c.Set("X-Cache", cacheHeader(hit))
	return c.Send(res.PDF)
}

func (s *Server) handlePreview(c *fiber.Ctx) error {
	req, err := s.parse(c)
	if err != nil {
		return err
	}
	html, err := s.opts.Renderer.Preview(c.UserContext(), req)
	if err != nil {
		return renderError(err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// renderError maps converter errors to HTTP errors. The cause is logged by
// the error handler, never sent to the client.
func renderError(err error) error {
	switch {
	case md2watch.IsValidationError(err):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return &wrappedError{fiber.NewError(fiber.StatusGatewayTimeout, "Rendering timed out"), err}
	case errors.Is(err, md2watch.ErrPoolClosed):
		return &wrappedError{fiber.NewError(fiber.StatusServiceUnavailable, "Shutting down"), err}
	case errors.Is(err, md2watch.ErrConfiguration):
		return &wrappedError{fiber.NewError(fiber.StatusInternalServerError, "Server misconfigured"), err}
	case errors.Is(err, md2watch.ErrRender):
		return &wrappedError{fiber.NewError(fiber.StatusBadGateway, "Rendering failed"), err}
	default:
		return &wrappedError{fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error"), err}
	}
}

// wrappedError carries the client-facing *fiber.Error and the cause for
// logging.
type wrappedError struct {
	public *fiber.Error
	cause  error
}

func (e *wrappedError) Error() string   { return e.public.Message + ": " + e.cause.Error() }
func (e *wrappedError) Unwrap() []error { return []error{e.public, e.cause} }
