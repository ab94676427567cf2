package uploader

import (
	"errors"
	"strings"
	"testing"

	"github.com/bryanwahyu/rxscan/internal/domain/reports"
	"github.com/bryanwahyu/rxscan/internal/web/dom"
)

func TestRenderIsIdempotent(t *testing.T) {
	c, doc, _ := newController(t, nil)
	if err := c.Render(sampleReport()); err != nil {
		t.Fatal(err)
	}
	once := doc.String()
	if err := c.Render(sampleReport()); err != nil {
		t.Fatal(err)
	}
	if twice := doc.String(); twice != once {
		t.Fatalf("second render changed the page:\n%s\n---\n%s", once, twice)
	}
	if n := len(doc.ByID("sustancias-encontradas").Children()); n != 2 {
		t.Fatalf("expected 2 cards, got %d", n)
	}
	if n := len(doc.ByID("sustancias-desconocidas").Children()); n != 2 {
		t.Fatalf("expected 2 tags, got %d", n)
	}
}

func TestRenderKnownCards(t *testing.T) {
	c, doc, _ := newController(t, nil)
	c.Render(sampleReport())
	cards := doc.ByID("sustancias-encontradas").Children()
	first := cards[0]
	if !first.HasClass("sustancia-card") || !first.HasClass("categoria-x") {
		t.Fatalf("card classes = %v", first.Classes())
	}
	if h := first.FindAll("h3"); len(h) != 1 || h[0].Text() != "Warfarina" {
		t.Fatalf("card title wrong: %s", doc.String())
	}
	if s := first.FindAll("strong"); len(s) != 1 || s[0].Text() != "Categoría de Riesgo: X" {
		t.Fatalf("card category wrong")
	}
	if !strings.Contains(first.Text(), "Contraindicado.") {
		t.Fatalf("description missing: %q", first.Text())
	}
	if !cards[1].HasClass("categoria-b") || cards[1].FindAll("h3")[0].Text() != "Paracetamol" {
		t.Fatal("cards out of order")
	}
}

func TestRenderNoKnownShowsSingleFallback(t *testing.T) {
	c, doc, _ := newController(t, nil)
	c.Render(sampleReport())
	c.Render(&reports.Report{Known: []reports.KnownSubstance{}})
	kids := doc.ByID("sustancias-encontradas").Children()
	if len(kids) != 1 || kids[0].Tag() != "p" || kids[0].Text() != MsgNoKnown {
		t.Fatalf("expected one fallback paragraph, got %d children: %s", len(kids), doc.ByID("sustancias-encontradas").Text())
	}
	for _, k := range kids {
		if k.HasClass("sustancia-card") {
			t.Fatal("card rendered for empty list")
		}
	}
}

func TestRenderUnknownTags(t *testing.T) {
	c, doc, _ := newController(t, nil)
	c.Render(&reports.Report{Unknown: []string{"X", "Y"}})
	if !doc.ByID("seccion-desconocidas").Visible() {
		t.Fatal("unknown section hidden")
	}
	tags := doc.ByID("sustancias-desconocidas").Children()
	if len(tags) != 2 || tags[0].Text() != "X" || tags[1].Text() != "Y" {
		t.Fatalf("tags = %d", len(tags))
	}
	for _, tag := range tags {
		if !tag.HasClass("sustancia-desconocida") {
			t.Fatalf("tag class = %v", tag.Classes())
		}
	}

	c.Render(&reports.Report{})
	if doc.ByID("seccion-desconocidas").Visible() {
		t.Fatal("unknown section should hide when empty")
	}
	if len(doc.ByID("sustancias-desconocidas").Children()) != 0 {
		t.Fatal("stale tags left behind")
	}
}

func TestRenderFallbacks(t *testing.T) {
	c, doc, _ := newController(t, nil)
	c.Render(&reports.Report{})
	if got := doc.ByID("result").Text(); got != MsgNoText {
		t.Fatalf("full text fallback = %q", got)
	}
	if got := doc.ByID("resumen-llm").Text(); got != MsgNoSummary {
		t.Fatalf("summary fallback = %q", got)
	}
	if got := doc.ByID("status").Text(); got != MsgComplete {
		t.Fatalf("status = %q", got)
	}
}

func TestRenderSummaryMarkup(t *testing.T) {
	c, doc, _ := newController(t, nil)
	c.Render(&reports.Report{Summary: "**A** and\nB"})
	want := `<div id="resumen-llm" class="summary"><p><strong>A</strong> and<br/>B</p></div>`
	if !strings.Contains(doc.String(), want) {
		t.Fatalf("summary markup missing %s in:\n%s", want, doc.String())
	}
}

func TestRenderMissingRegionAbortsWholeRender(t *testing.T) {
	doc, err := dom.ParseString(`<html><body>
<div id="status"></div>
<div id="reporte-container" style="display: none"></div>
<pre id="result">previo</pre>
<div id="sustancias-encontradas"><p>previo</p></div>
<div id="seccion-desconocidas"></div>
<div id="sustancias-desconocidas"></div>
</body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	c := New(doc, nil)
	err = c.Render(sampleReport())
	if !errors.Is(err, ErrMissingRegions) {
		t.Fatalf("expected ErrMissingRegions, got %v", err)
	}
	if got := doc.ByID("status").Text(); got != MsgMissingRegions {
		t.Fatalf("status = %q", got)
	}
	if doc.ByID("reporte-container").Visible() || doc.ByID("result").Text() != "previo" || doc.ByID("sustancias-encontradas").Text() != "previo" {
		t.Fatalf("partial render happened:\n%s", doc.String())
	}
	if c.State() != StateErrorShown {
		t.Fatalf("state = %v", c.State())
	}
}
