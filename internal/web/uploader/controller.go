// Package uploader drives the image upload page: it keeps the selected file,
// previews it, submits it for analysis and renders the returned report into
// the page regions.
package uploader

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bryanwahyu/rxscan/internal/domain/reports"
	"github.com/bryanwahyu/rxscan/internal/web/dom"
)

var (
	// ErrNoFile is returned by Submit when nothing was selected.
	ErrNoFile = errors.New("uploader: no file selected")
	// ErrMissingRegions is returned by Render when the page lacks a report region.
	ErrMissingRegions = errors.New("uploader: page is missing report regions")
)

// State of the current interaction.
type State int

const (
	StateIdle State = iota
	StateFileSelected
	StateSubmitting
	StateReportShown
	StateErrorShown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFileSelected:
		return "file_selected"
	case StateSubmitting:
		return "submitting"
	case StateReportShown:
		return "report_shown"
	case StateErrorShown:
		return "error_shown"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Uploader sends the selected file for analysis.
type Uploader interface {
	Upload(ctx context.Context, up reports.Upload) (*reports.Report, error)
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// Controller owns the selected file and the page document. It is safe for
// concurrent use; the lock is released while an upload is in flight, so two
// submissions may overlap and the last one to finish is what stays rendered.
type Controller struct {
	mu       sync.Mutex
	doc      *dom.Document
	regions  Regions
	uploader Uploader
	notifier Notifier
	logger   *slog.Logger

	selected *reports.Upload
	state    State
}

// Option configures a Controller.
type Option func(*Controller)

// WithRegions overrides the page element ids.
func WithRegions(r Regions) Option { return func(c *Controller) { c.regions = r } }

// WithNotifier sets the blocking notice sink.
func WithNotifier(n Notifier) Option { return func(c *Controller) { c.notifier = n } }

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.logger = l } }

func New(doc *dom.Document, up Uploader, opts ...Option) *Controller {
	c := &Controller{
		doc:      doc,
		regions:  DefaultRegions(),
		uploader: up,
		notifier: NotifierFunc(func(string) {}),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns the current interaction state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selected returns the current file, if any.
func (c *Controller) Selected() (reports.Upload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return reports.Upload{}, false
	}
	return *c.selected, true
}

// Document returns the page being rendered into. Callers must not mutate it
// while a Submit is running.
func (c *Controller) Document() *dom.Document { return c.doc }

// SelectFile makes up the current file, previews it, hides the previous
// report and clears the status line.
func (c *Controller) SelectFile(up reports.Upload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sel := up
	c.selected = &sel
	c.state = StateFileSelected

	if src, ok := previewURL(up); ok {
		if img := c.el(c.regions.Preview); img != nil {
			img.SetAttr("src", src)
			img.Show()
		}
		if ph := c.el(c.regions.Placeholder); ph != nil {
			ph.Hide()
		}
	}
	if rep := c.el(c.regions.Report); rep != nil {
		rep.Hide()
	}
	c.setStatus("")
}

// Submit uploads the selected file and renders the outcome. Without a
// selection it only shows the blocking notice and returns ErrNoFile. The
// trigger is disabled for the duration and always re-enabled afterwards.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		c.notifier.Notify(MsgNoFile)
		return ErrNoFile
	}
	up := *c.selected
	c.state = StateSubmitting
	c.setStatus(MsgAnalyzing)
	if rep := c.el(c.regions.Report); rep != nil {
		rep.Hide()
	}
	c.setTrigger(false)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.setTrigger(true)
		c.mu.Unlock()
	}()

	report, err := c.upload(ctx, up)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Error("upload failed", "filename", up.Filename, "error", err)
		c.state = StateErrorShown
		c.setStatus(errorPrefix + err.Error())
		return err
	}
	return c.render(report)
}

// upload runs the network call, turning panics in the transport into errors
// so the trigger is still re-enabled.
func (c *Controller) upload(ctx context.Context, up reports.Upload) (rep *reports.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	rep, err = c.uploader.Upload(ctx, up)
	if err == nil && rep == nil {
		err = errors.New("respuesta vacía del servidor")
	}
	return rep, err
}

// Render writes report into the page. See render.
func (c *Controller) Render(report *reports.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.render(report)
}

func (c *Controller) el(id string) *dom.Element {
	if c.doc == nil || id == "" {
		return nil
	}
	return c.doc.ByID(id)
}

func (c *Controller) setStatus(msg string) {
	if st := c.el(c.regions.Status); st != nil {
		st.SetText(msg)
	}
}

func (c *Controller) setTrigger(enabled bool) {
	if btn := c.el(c.regions.Trigger); btn != nil {
		btn.SetDisabled(!enabled)
	}
}

// previewURL encodes the file as a data URL. Files without bytes have no preview.
func previewURL(up reports.Upload) (string, bool) {
	if len(up.Data) == 0 {
		return "", false
	}
	ct := up.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(up.Data)
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(up.Data), true
}
