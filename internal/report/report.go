package report

import (
	"bufio"
	"errors"
	"html"
	"io"
	"os"
	"time"
)

// Default presentation values.
const (
	// DefaultToolName appears in the title, captions and footer.
	DefaultToolName = "PhyloReport"

	// DefaultStylesheet is the Bootstrap 3 stylesheet the markup classes target.
	DefaultStylesheet = "https://maxcdn.bootstrapcdn.com/bootstrap/3.3.2/css/bootstrap.min.css"

	// DefaultMaxWidth is the maximum width of the page container in pixels.
	DefaultMaxWidth = 900
)

// options holds presentation settings applied by Option functions.
type options struct {
	toolName   string
	version    string
	stylesheet string
	maxWidth   int
	now        func() time.Time
}

// Option configures a Report.
type Option func(*options)

// WithVersion sets the version shown in the footer.
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// WithToolName sets the tool name shown in titles, captions and the footer.
func WithToolName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.toolName = name
		}
	}
}

// WithStylesheet sets the stylesheet URL. An empty URL keeps the default.
func WithStylesheet(url string) Option {
	return func(o *options) {
		if url != "" {
			o.stylesheet = url
		}
	}
}

// WithMaxWidth sets the maximum page width in pixels.
func WithMaxWidth(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.maxWidth = px
		}
	}
}

// WithClock sets the clock used for the footer date.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Report is an HTML report under construction.
// A Report is not safe for concurrent use.
type Report struct {
	subject string
	path    string
	opts    options

	buf    *bufio.Writer
	doc    *document
	syncer interface{ Sync() error }
	closer io.Closer

	started bool
	closed  bool
	err     error
}

// Create opens (or truncates) the file at path and returns a Report writing
// to it. The file is closed by Finalize or Close.
func Create(path, subject string, opts ...Option) (*Report, error) {
	// Reports contain patient data and are only readable by the owner.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // output path is user-provided
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}

	r := New(f, subject, opts...)
	r.path = path
	r.closer = f
	return r, nil
}

// New returns a Report writing to w. The caller keeps ownership of w; if w
// has a Sync method it is used at the similarity checkpoint.
func New(w io.Writer, subject string, opts ...Option) *Report {
	o := options{
		toolName:   DefaultToolName,
		stylesheet: DefaultStylesheet,
		maxWidth:   DefaultMaxWidth,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	buf := bufio.NewWriter(w)
	r := &Report{
		subject: subject,
		opts:    o,
		buf:     buf,
		doc:     newDocument(buf),
	}
	if s, ok := w.(interface{ Sync() error }); ok {
		r.syncer = s
	}
	return r
}

// Subject returns the analysed subject name.
func (r *Report) Subject() string {
	return r.subject
}

// Path returns the output file path, empty for caller-supplied writers.
func (r *Report) Path() string {
	return r.path
}

// IsOpen reports whether sections can still be emitted.
func (r *Report) IsOpen() bool {
	return !r.closed
}

// Start writes the document head and opens the page container.
func (r *Report) Start() error {
	if r.closed {
		return ErrClosed
	}
	if r.err != nil {
		return r.err
	}
	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	d := r.doc
	title := html.EscapeString(r.title())

	d.line("<!DOCTYPE html>")
	d.open("html", `lang="en"`)
	block{d}.within("head", "", func(b block) {
		b.line(`<meta charset="utf-8">`)
		b.line(`<meta http-equiv="X-UA-Compatible" content="IE=edge">`)
		b.line(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.linef(`<meta name="description" content="%s">`, title)
		b.linef(`<meta name="generator" content="%s">`, html.EscapeString(r.opts.toolName))
		b.element("title", "", title)
		b.linef(`<link rel="stylesheet" href="%s">`, html.EscapeString(r.opts.stylesheet))
		b.element("style", "", "body{ margin:0 100; background:white; }")
	})
	d.raw("\n")
	d.open("body", "")
	d.open("div", attr("class", "container")+" "+attr("style", "max-width:"+itoa(r.opts.maxWidth)+"px"))
	block{d}.within("div", `class="page-header"`, func(b block) {
		b.element("h2", "", title)
	})
	return r.checkWrite("start")
}

// Close releases the sink without writing the footer. It is a no-op after
// Finalize, so it is safe to defer right after Create.
func (r *Report) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.release("close")
}

// emit runs a section emitter after checking the report state.
func (r *Report) emit(op string, fn func(b block)) error {
	if err := r.ready(); err != nil {
		return err
	}
	fn(block{r.doc})
	return r.checkWrite(op)
}

// ready returns the error that prevents further emission, if any.
func (r *Report) ready() error {
	switch {
	case r.closed:
		return ErrClosed
	case r.err != nil:
		return r.err
	case !r.started:
		return ErrNotStarted
	}
	return nil
}

// checkWrite converts a pending write error into a sticky IOError.
func (r *Report) checkWrite(op string) error {
	if r.doc.err == nil {
		return nil
	}
	r.err = &IOError{Op: op, Path: r.path, Err: r.doc.err}
	return r.err
}

// checkpoint flushes buffered markup and syncs the sink to stable storage.
func (r *Report) checkpoint(op string) error {
	if err := r.buf.Flush(); err != nil {
		r.err = &IOError{Op: op, Path: r.path, Err: err}
		return r.err
	}
	if r.syncer != nil {
		if err := r.syncer.Sync(); err != nil {
			r.err = &IOError{Op: op, Path: r.path, Err: err}
			return r.err
		}
	}
	return nil
}

// release flushes and closes the sink.
func (r *Report) release(op string) error {
	var flushErr error
	if r.err == nil {
		flushErr = r.buf.Flush()
	}
	var closeErr error
	if r.closer != nil {
		closeErr = r.closer.Close()
	}
	if err := errors.Join(flushErr, closeErr); err != nil {
		return &IOError{Op: op, Path: r.path, Err: err}
	}
	return nil
}

// title returns the document title.
func (r *Report) title() string {
	return r.opts.toolName + " analysis report of patient " + r.subject
}
