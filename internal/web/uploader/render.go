package uploader

import (
	"strings"

	"github.com/bryanwahyu/rxscan/internal/domain/reports"
	"github.com/bryanwahyu/rxscan/internal/web/dom"
)

// render replaces the report regions with report. It checks every region
// first and leaves the page untouched, apart from the status line, when one
// is missing. Callers hold c.mu.
func (c *Controller) render(report *reports.Report) error {
	if report == nil {
		report = &reports.Report{}
	}
	c.setStatus(MsgComplete)

	regions := map[string]*dom.Element{}
	var missing []string
	for _, id := range c.regions.reportIDs() {
		el := c.el(id)
		if el == nil {
			missing = append(missing, id)
			continue
		}
		regions[id] = el
	}
	if len(missing) > 0 {
		c.logger.Error("cannot render report, page regions missing", "missing", missing)
		c.state = StateErrorShown
		c.setStatus(MsgMissingRegions)
		return ErrMissingRegions
	}

	container := regions[c.regions.Report]
	fullText := regions[c.regions.FullText]
	known := regions[c.regions.Known]
	summary := regions[c.regions.Summary]
	unknownSection := regions[c.regions.UnknownSection]
	unknown := regions[c.regions.Unknown]

	container.Show()
	if report.FullText != "" {
		fullText.SetText(report.FullText)
	} else {
		fullText.SetText(MsgNoText)
	}
	known.Clear()
	summary.Clear()
	unknown.Clear()

	if report.Summary != "" {
		summary.Append(FormatSummary(report.Summary))
	} else {
		summary.Append(dom.NewElement("p").AppendText(MsgNoSummary))
	}

	if len(report.Known) > 0 {
		for _, s := range report.Known {
			known.Append(substanceCard(s))
		}
	} else {
		known.Append(dom.NewElement("p").AppendText(MsgNoKnown))
	}

	if len(report.Unknown) > 0 {
		unknownSection.Show()
		for _, name := range report.Unknown {
			unknown.Append(dom.NewElement("div", "sustancia-desconocida").AppendText(name))
		}
	} else {
		unknownSection.Hide()
	}

	c.state = StateReportShown
	return nil
}

// substanceCard renders one known substance; the category doubles as a
// lower-cased CSS class.
func substanceCard(s reports.KnownSubstance) *dom.Element {
	card := dom.NewElement("div", "sustancia-card", "categoria-"+strings.ToLower(s.Category))
	card.Append(
		dom.NewElement("h3").AppendText(s.Name),
		dom.NewElement("p").Append(dom.NewElement("strong").AppendText(MsgRiskCategory+s.Category)),
		dom.NewElement("p").AppendText(s.Description),
	)
	return card
}
