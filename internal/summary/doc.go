// Package summary prints the key statistics of a rendered analysis to the
// terminal as plain text, Markdown, or JSON.
//
// The HTML report is the primary output. A summary is what the CLI prints
// after rendering so that a batch run can be reviewed without opening every
// report.
package summary
