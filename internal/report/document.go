package report

import (
	"fmt"
	"io"
	"strings"
)

// document writes indented markup and tracks the open elements.
// The first write error is kept and all later writes are skipped.
type document struct {
	w     io.Writer
	stack []string
	err   error
}

func newDocument(w io.Writer) *document {
	return &document{w: w}
}

// depth returns the number of open elements.
func (d *document) depth() int {
	return len(d.stack)
}

// raw writes s without indentation.
func (d *document) raw(s string) {
	if d.err != nil {
		return
	}
	_, d.err = io.WriteString(d.w, s)
}

// line writes one indented line.
func (d *document) line(s string) {
	d.raw(strings.Repeat("\t", len(d.stack)) + s + "\n")
}

// open writes an opening tag and pushes it.
func (d *document) open(tag, attrs string) {
	d.line(startTag(tag, attrs))
	d.stack = append(d.stack, tag)
}

// close pops the innermost element and writes its closing tag at the
// indentation of the opening tag.
func (d *document) close() {
	if len(d.stack) == 0 {
		return
	}
	tag := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	d.line("</" + tag + ">")
}

// closeAll closes every open element.
func (d *document) closeAll() {
	for len(d.stack) > 0 {
		d.close()
	}
}

// block is the writing surface handed to section emitters.
// Every element it opens is closed before the call that opened it returns.
type block struct {
	d *document
}

// line writes s verbatim at the current depth.
func (b block) line(s string) {
	b.d.line(s)
}

// linef writes a formatted line at the current depth.
func (b block) linef(format string, args ...any) {
	b.d.line(fmt.Sprintf(format, args...))
}

// blank writes an empty line.
func (b block) blank() {
	b.d.raw("\n")
}

// element writes a complete element on one line. content is written verbatim.
func (b block) element(tag, attrs, content string) {
	b.d.line(startTag(tag, attrs) + content + "</" + tag + ">")
}

// within writes an element whose children are written by fn.
func (b block) within(tag, attrs string, fn func(block)) {
	b.d.open(tag, attrs)
	fn(b)
	b.d.close()
}

func startTag(tag, attrs string) string {
	if attrs == "" {
		return "<" + tag + ">"
	}
	return "<" + tag + " " + attrs + ">"
}
