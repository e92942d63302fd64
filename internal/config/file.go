package config

import (
	"github.com/nao1215/phyloreport/internal/model"
	"github.com/nao1215/phyloreport/internal/report"
)

// ReportConfig holds presentation options of the rendered HTML.
type ReportConfig struct {
	// ToolName replaces the tool name in the title, captions and footer.
	ToolName string `yaml:"tool_name,omitempty"`

	// Stylesheet is the URL of the Bootstrap 3 stylesheet.
	// Point it at a local copy for reports viewed offline.
	Stylesheet string `yaml:"stylesheet,omitempty"`

	// MaxWidth is the maximum width of the page container in pixels.
	// Zero means the default width.
	MaxWidth int `yaml:"max_width,omitempty"`
}

// File represents the structure of the .phyloreport settings file.
type File struct {
	// Settings are default inference and filter settings. Values present in
	// a snapshot take precedence field by field.
	Settings model.Settings `yaml:"settings,omitempty"`

	// Report holds presentation options.
	Report ReportConfig `yaml:"report,omitempty"`
}

// Validate checks the settings file values.
func (f *File) Validate() error {
	if f.Report.MaxWidth < 0 {
		return ErrInvalidMaxWidth
	}
	return nil
}

// ApplySettings returns the snapshot settings with every unset field filled
// in from the settings file.
func (f *File) ApplySettings(snapshot model.Settings) model.Settings {
	return f.Settings.Merge(snapshot)
}

// ReportOptions converts the presentation options into report options.
// Unset values are left out so the report defaults apply.
func (f *File) ReportOptions() []report.Option {
	var opts []report.Option
	if f.Report.ToolName != "" {
		opts = append(opts, report.WithToolName(f.Report.ToolName))
	}
	if f.Report.Stylesheet != "" {
		opts = append(opts, report.WithStylesheet(f.Report.Stylesheet))
	}
	if f.Report.MaxWidth > 0 {
		opts = append(opts, report.WithMaxWidth(f.Report.MaxWidth))
	}
	return opts
}
