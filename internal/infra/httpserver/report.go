package httpserver

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	appreports "github.com/bryanwahyu/rxscan/internal/application/reports"
	domain "github.com/bryanwahyu/rxscan/internal/domain/reports"
	"github.com/bryanwahyu/rxscan/internal/web/client"
	"github.com/bryanwahyu/rxscan/internal/web/dom"
	"github.com/bryanwahyu/rxscan/internal/web/page"
	"github.com/bryanwahyu/rxscan/internal/web/uploader"
)

// serviceUploader runs the analysis in-process. Errors carry the same status
// and message /upload would answer with.
type serviceUploader struct {
	svc *appreports.Service
}

func (s serviceUploader) Upload(ctx context.Context, up domain.Upload) (*domain.Report, error) {
	report, err := s.svc.Analyze(ctx, up)
	if err != nil {
		he := toHTTPError(err)
		return nil, &client.ServerError{Status: he.status, Message: he.msg}
	}
	return report, nil
}

// POST /report renders the page with the upload controller, for browsers
// posting the form without scripts.
func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) {
	doc, err := page.New()
	if err != nil {
		r.logger.Error("parse page", "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	regions := uploader.DefaultRegions()
	ctrl := uploader.New(doc, serviceUploader{svc: r.reportsSvc},
		uploader.WithLogger(r.logger),
		uploader.WithNotifier(statusNotifier(doc, regions.Status)),
	)

	status := http.StatusOK
	up, err := r.readUpload(w, req)
	switch {
	case err == nil:
		ctrl.SelectFile(up)
	case !noSelection(err):
		// Rejected before analysis: show the reason, keep the report hidden.
		he := toHTTPError(err)
		statusNotifier(doc, regions.Status).Notify("Error: " + he.msg)
		r.writePage(w, he.status, doc)
		return
	}

	if err := ctrl.Submit(req.Context()); err != nil {
		var se *client.ServerError
		switch {
		case errors.As(err, &se):
			status = se.Status
		case errors.Is(err, uploader.ErrNoFile):
			status = http.StatusBadRequest
		default:
			status = http.StatusInternalServerError
		}
	}
	r.writePage(w, status, ctrl.Document())
}

// statusNotifier shows notices in the status line; a server cannot raise a
// browser alert.
func statusNotifier(doc *dom.Document, id string) uploader.Notifier {
	return uploader.NotifierFunc(func(msg string) {
		if st := doc.ByID(id); st != nil {
			st.SetText(msg)
		}
	})
}

// noSelection reports whether the form simply carried no file.
func noSelection(err error) bool {
	var he *httpError
	return errors.As(err, &he) && (he.msg == msgMissingField || he.msg == msgEmptyFilename)
}

func (r *Router) writePage(w http.ResponseWriter, status int, doc *dom.Document) {
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		r.logger.Error("render page", "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
