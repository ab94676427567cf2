package uploader

import (
	"regexp"
	"strings"

	"github.com/bryanwahyu/rxscan/internal/web/dom"
)

var boldSpan = regexp.MustCompile(`\*\*(.*?)\*\*`)

// FormatSummary turns the model's lightweight markup into a paragraph:
// newlines become <br> and **text** becomes <strong>text</strong>.
// Bold spans do not cross line breaks. All text is emitted as text nodes.
func FormatSummary(s string) *dom.Element {
	p := dom.NewElement("p")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			p.Append(dom.NewElement("br"))
		}
		last := 0
		for _, m := range boldSpan.FindAllStringSubmatchIndex(line, -1) {
			if m[0] > last {
				p.AppendText(line[last:m[0]])
			}
			p.Append(dom.NewElement("strong").AppendText(line[m[2]:m[3]]))
			last = m[1]
		}
		if last < len(line) {
			p.AppendText(line[last:])
		}
	}
	return p
}
