package report

import (
	"html"

	"github.com/nao1215/phyloreport/internal/model"
)

// Default figure widths in pixels.
const (
	mutationTableWidth = 800
	conflictGraphWidth = 500
	plotWidth          = 700

	// frameWidth is the maximum width of the box around figures and tables.
	frameWidth = 800
)

// tableAttrs are the attributes shared by every data table.
const tableAttrs = `class="table table-striped" style="text-align: center;width:98%;max-width:800px;font-size:9pt"`

// figure writes a centered image with a caption. The caption starts with a
// bold title; body writes the remaining caption lines.
func (b block) figure(fig model.Figure, frame, defWidth int, alt, title string, body func(block)) {
	b.within("div", `align="center"`, func(b block) {
		b.within("div", attr("style", "width:98%;max-width:"+itoa(frame)+"px"), func(b block) {
			b.within("figure", "", func(b block) {
				b.linef(`<img class="img-responsive" src="%s" alt="%s" width="%d">`,
					html.EscapeString(fig.Path), html.EscapeString(alt), fig.WidthOr(defWidth))
				b.within("div", `align="left"`, func(b block) {
					b.within("figcaption", "", func(b block) {
						b.element("b", "", title)
						body(b)
					})
				})
			})
		})
	})
}

// headerRow writes a table header row with centered cells.
func (b block) headerRow(cells []string) {
	row := "<tr>"
	for _, c := range cells {
		row += `<th class="text-center">` + c + "</th>"
	}
	b.line(row + "</tr>")
}

// dataRow writes a table row. Cells are written verbatim.
func (b block) dataRow(cells []string) {
	row := "<tr>"
	for _, c := range cells {
		row += "<td>" + c + "</td>"
	}
	b.line(row + "</tr>")
}

// sectionEnd writes the spacer that closes every section.
func (b block) sectionEnd() {
	b.line("<br>")
	b.blank()
}
