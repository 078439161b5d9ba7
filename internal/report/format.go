package report

import (
	"fmt"
	"io"
	"strings"
)

const (
	DefaultWidth = 80
	WideWidth    = 100
)

// printer accumulates the first write error so renderers can stay linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) separator(char string, width int) {
	p.printf("%s\n", strings.Repeat(char, width))
}

func (p *printer) header(title string, width int) {
	p.printf("\n")
	p.separator("=", width)
	p.printf("%s\n", title)
	p.separator("=", width)
}

func (p *printer) footer(message string, width int) {
	p.printf("\n")
	p.separator("=", width)
	p.printf("%s\n", message)
	p.separator("=", width)
	p.printf("\n")
}

func (p *printer) boxSeparator(width int) {
	p.printf("├%s\n", strings.Repeat("─", width))
}

func boxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

func shortId(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
