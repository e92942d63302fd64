package report

import (
	"html"
	"strings"

	"github.com/nao1215/phyloreport/internal/model"
)

// footerDateLayout renders dates like "Mar 06, 2015".
const footerDateLayout = "Jan 02, 2006"

// Finalize writes the settings summary and the footer, closes every open
// element, and releases the sink. The report is closed afterwards even when
// writing failed, including when an earlier section already failed.
func (r *Report) Finalize(settings model.Settings) error {
	if err := r.ready(); err != nil {
		if r.err != nil {
			// The footer cannot be written after a failed write, but the
			// sink is still released.
			_ = r.Close()
		}
		return err
	}

	b := block{r.doc}
	b.within("p", "", func(b block) {
		b.linef("<em>%s settings:</em>", html.EscapeString(r.opts.toolName))
		if text := settingsText(settings); text != "" {
			b.line(text)
		}
	})
	// container
	r.doc.close()

	b.within("footer", `class="footer"`, func(b block) {
		b.within("div", `class="container"`, func(b block) {
			b.element("p", `class="text-muted"`, "&copy; "+html.EscapeString(r.signature())+", "+
				r.opts.now().Format(footerDateLayout))
		})
	})
	r.doc.closeAll()

	writeErr := r.checkWrite("finalize")
	r.closed = true
	if err := r.release("finalize"); err != nil && writeErr == nil {
		return err
	}
	return writeErr
}

// signature returns the tool name and version shown in the footer.
func (r *Report) signature() string {
	if r.opts.version == "" {
		return r.opts.toolName
	}
	return r.opts.toolName + " " + r.opts.version
}

// settingsText describes the inference and filter settings. Values that are
// not set are left out.
func settingsText(s model.Settings) string {
	var params []string
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"sequencing error rate e", s.ErrorRate},
		{"prior absent probability c0", s.AbsentPrior},
		{"max absent VAF", s.MaxAbsentVAF},
		{"LOH frequency", s.LOHFrequency},
		{"false discovery rate", s.FalseDiscoveryRate},
		{"false-positive rate", s.FalsePositiveRate},
	} {
		if model.IsSet(p.value) {
			params = append(params, p.name+": "+number(p.value))
		}
	}

	var sentences []string
	if len(params) > 0 {
		sentences = append(sentences, strings.Join(params, ", ")+".")
	}
	for _, p := range []struct {
		text  string
		value float64
	}{
		{"Absent classification minimum coverage: ", s.MinAbsentCoverage},
		{"Sample minimal median coverage: ", s.MinMedianCoverage},
		{"Sample minimal median VAF: ", s.MinMedianVAF},
		{"Filter: minimum VAF per variant in at least one sample ", s.MinVAF},
		{"Filter: minimum number of variant reads per variant in at least one sample ", s.MinVarReads},
	} {
		if model.IsSet(p.value) {
			sentences = append(sentences, p.text+number(p.value)+".")
		}
	}
	return strings.Join(sentences, " ")
}
