package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	appai "github.com/bryanwahyu/rxscan/internal/application/ai"
	appreports "github.com/bryanwahyu/rxscan/internal/application/reports"
	domai "github.com/bryanwahyu/rxscan/internal/domain/ai"
	"github.com/bryanwahyu/rxscan/internal/domain/failures"
	"github.com/bryanwahyu/rxscan/internal/domain/substances"
	"github.com/bryanwahyu/rxscan/internal/infra/catalog"
	"github.com/bryanwahyu/rxscan/internal/middleware"
	"github.com/bryanwahyu/rxscan/internal/web/client"
	"github.com/bryanwahyu/rxscan/internal/web/dom"
	"github.com/bryanwahyu/rxscan/internal/web/uploader"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

type fakeOCR struct{ text string }

func (o fakeOCR) ExtractText(context.Context, []byte) (string, error) { return o.text, nil }

type fakeLLM struct {
	names string
	err   error
}

func (f fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if strings.Contains(prompt, "--- INICIO ---") {
		return f.names, nil
	}
	return "**Warfarina** es de categoría X.\nEvitar.", nil
}

type fakeFailures struct {
	mu   sync.Mutex
	list []*failures.Failure
}

func (f *fakeFailures) Save(_ context.Context, x *failures.Failure) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = append(f.list, x)
	return nil
}

func (f *fakeFailures) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.list)
}

func (f *fakeFailures) Recent(_ context.Context, limit int) ([]*failures.Failure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit < len(f.list) {
		return f.list[:limit], nil
	}
	return f.list, nil
}

func newTestServer(t *testing.T, items []substances.Substance, llm domai.Client) (*httptest.Server, *fakeFailures) {
	t.Helper()
	fails := &fakeFailures{}
	svc := &appreports.Service{
		Catalog:  catalog.NewMemory(items),
		OCR:      fakeOCR{text: "Tomar warfarina y paracetamol cada 8 horas"},
		AI:       appai.NewService(llm),
		Failures: fails,
	}
	srv := httptest.NewServer(NewRouter(svc, Options{
		Metrics: middleware.NewMetrics(),
		Ready: map[string]middleware.HealthChecker{
			"catalog": catalog.NewMemory(items),
		},
	}))
	t.Cleanup(srv.Close)
	return srv, fails
}

func defaultCatalog() []substances.Substance {
	return []substances.Substance{
		{Name: "Warfarina", Category: "X", Description: "Contraindicado en el embarazo."},
		{Name: "Paracetamol", Category: "B", Description: "Uso seguro en dosis habituales."},
	}
}

func multipartBody(t *testing.T, field, filename string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	} else {
		mw.WriteField("otro", "valor")
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func postUpload(t *testing.T, srv *httptest.Server, path, field, filename string, data []byte) *http.Response {
	t.Helper()
	body, ct := multipartBody(t, field, filename, data)
	resp, err := http.Post(srv.URL+path, ct, body)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func errorField(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	return body.Error
}

func TestUploadReturnsReport(t *testing.T) {
	srv, _ := newTestServer(t, defaultCatalog(), fakeLLM{names: "Warfarina, paracetamol, Ibuprofeno"})

	c := client.New(srv.URL, 0)
	report, err := c.Upload(context.Background(), uploadOf("receta.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Known) != 2 || report.Known[0].Name != "Warfarina" || report.Known[1].Category != "B" {
		t.Fatalf("known = %+v", report.Known)
	}
	if len(report.Unknown) != 1 || report.Unknown[0] != "Ibuprofeno" {
		t.Fatalf("unknown = %v", report.Unknown)
	}
	if !strings.Contains(report.Summary, "**Warfarina**") {
		t.Fatalf("summary = %q", report.Summary)
	}
}

func TestUploadErrors(t *testing.T) {
	srv, _ := newTestServer(t, defaultCatalog(), fakeLLM{})
	empty, _ := newTestServer(t, nil, fakeLLM{})
	quota, _ := newTestServer(t, defaultCatalog(), fakeLLM{err: domai.ErrQuotaExceeded})

	cases := []struct {
		name     string
		srv      *httptest.Server
		field    string
		filename string
		data     []byte
		status   int
		msg      string
	}{
		{"missing field", srv, "", "", nil, http.StatusBadRequest, msgMissingField},
		{"empty filename", srv, "file", "", pngBytes, http.StatusBadRequest, msgEmptyFilename},
		{"not an image", srv, "file", "notas.txt", []byte("solo texto"), http.StatusBadRequest, middleware.ErrNotImage.Error()},
		{"catalog unavailable", empty, "file", "receta.png", pngBytes, http.StatusInternalServerError, msgCatalogUnloaded},
		{"quota", quota, "file", "receta.png", pngBytes, http.StatusTooManyRequests, msgQuotaExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postUpload(t, tc.srv, "/upload", tc.field, tc.filename, tc.data)
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			if got := errorField(t, resp); got != tc.msg {
				t.Fatalf("error = %q, want %q", got, tc.msg)
			}
		})
	}
}

func TestUploadErrorSurfacesThroughClient(t *testing.T) {
	empty, _ := newTestServer(t, nil, fakeLLM{})
	_, err := client.New(empty.URL, 0).Upload(context.Background(), uploadOf("receta.png"))
	var se *client.ServerError
	if !errors.As(err, &se) || se.Status != http.StatusInternalServerError || se.Message != msgCatalogUnloaded {
		t.Fatalf("err = %#v", err)
	}
}

func TestReportRendersPage(t *testing.T) {
	srv, _ := newTestServer(t, defaultCatalog(), fakeLLM{names: "Warfarina, Ibuprofeno"})

	resp := postUpload(t, srv, "/report", "file", "receta.png", pngBytes)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	doc, err := dom.Parse(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.ByID("status").Text(); got != uploader.MsgComplete {
		t.Fatalf("status text %q", got)
	}
	if !doc.ByID("reporte-container").Visible() {
		t.Fatal("report hidden")
	}
	cards := doc.ByID("sustancias-encontradas").Children()
	if len(cards) != 1 || !cards[0].HasClass("categoria-x") {
		t.Fatalf("cards: %s", doc.ByID("sustancias-encontradas").Text())
	}
	tags := doc.ByID("sustancias-desconocidas").Children()
	if len(tags) != 1 || tags[0].Text() != "Ibuprofeno" {
		t.Fatal("unknown tags wrong")
	}
	if strong := doc.ByID("resumen-llm").FindAll("strong"); len(strong) != 1 || strong[0].Text() != "Warfarina" {
		t.Fatal("summary markup not rendered")
	}
	if src, _ := doc.ByID("imagePreview").Attr("src"); !strings.HasPrefix(src, "data:image/png;base64,") {
		t.Fatalf("preview src %q", src)
	}
	if doc.ByID("processButton").Disabled() {
		t.Fatal("trigger left disabled")
	}
}

func TestReportWithoutFileShowsNotice(t *testing.T) {
	srv, _ := newTestServer(t, defaultCatalog(), fakeLLM{})
	resp := postUpload(t, srv, "/report", "", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	doc, err := dom.Parse(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.ByID("status").Text(); got != uploader.MsgNoFile {
		t.Fatalf("status text %q", got)
	}
	if doc.ByID("reporte-container").Visible() {
		t.Fatal("report should stay hidden")
	}
}

func TestReportServiceErrorShowsStatus(t *testing.T) {
	empty, _ := newTestServer(t, nil, fakeLLM{})
	resp := postUpload(t, empty, "/report", "file", "receta.png", pngBytes)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status %d", resp.StatusCode)
	}
	doc, err := dom.Parse(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.ByID("status").Text(); got != "Error: "+msgCatalogUnloaded {
		t.Fatalf("status text %q", got)
	}
}

func TestFailuresEndpoint(t *testing.T) {
	srv, fails := newTestServer(t, defaultCatalog(), fakeLLM{err: errors.New("modelo caído")})
	postUpload(t, srv, "/upload", "file", "receta.png", pngBytes)
	if fails.count() == 0 {
		t.Fatal("expected recorded failures")
	}

	resp, err := http.Get(srv.URL + "/v1/failures?limit=1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var list []failures.Failure
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d failures", len(list))
	}
}

func TestStaticAndHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, defaultCatalog(), fakeLLM{})
	// /metrics last so earlier requests are already counted.
	for _, tc := range []struct{ path, want string }{
		{"/", `id="processButton"`},
		{"/static/style.css", "categoria-x"},
		{"/live", "ok"},
		{"/ready", `"ready"`},
		{"/metrics", `rxscan_http_requests_total{method="GET",route="/live",status="200"} 1`},
	} {
		path, want := tc.path, tc.want
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status %d", path, resp.StatusCode)
		}
		if !strings.Contains(string(body), want) {
			t.Errorf("%s: body missing %q", path, want)
		}
	}
}

// blockingOCR waits for the request context to expire.
type blockingOCR struct{}

func (blockingOCR) ExtractText(ctx context.Context, _ []byte) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// lockedBuffer collects server error logs written from handler goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestUploadRequestTimeout(t *testing.T) {
	svc := &appreports.Service{
		Catalog: catalog.NewMemory(defaultCatalog()),
		OCR:     blockingOCR{},
		AI:      appai.NewService(fakeLLM{}),
	}
	srv := httptest.NewUnstartedServer(NewRouter(svc, Options{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		RequestTimeout: 20 * time.Millisecond,
	}))
	serverLog := &lockedBuffer{}
	srv.Config.ErrorLog = log.New(serverLog, "", 0)
	srv.Start()
	defer srv.Close()

	resp := postUpload(t, srv, "/upload", "file", "receta.png", pngBytes)
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", resp.StatusCode)
	}
	if got := errorField(t, resp); got != msgTimeout {
		t.Fatalf("error = %q", got)
	}
	if strings.Contains(serverLog.String(), "superfluous") {
		t.Fatalf("response written twice: %s", serverLog.String())
	}
}
