package tui

import (
	"strconv"
	"strings"

	"github.com/ActiveState/vt10x"
	"github.com/muesli/termenv"

	"github.com/cctakt/cctakt/internal/agent"
)

// ptyProfile is resolved once: termenv inspects the real stdout, not
// bubbletea's offscreen buffer, so every cell conversion shares the same
// color-depth decision instead of re-probing the terminal per frame.
var ptyProfile = termenv.ColorProfile()

// vtColor converts a vt10x palette entry to a termenv color, or nil for
// the palette's default-fg/default-bg sentinel entries (anything outside
// the 256-color range), leaving that cell unstyled so it inherits the
// pane's own foreground/background.
func vtColor(c vt10x.Color) termenv.Color {
	idx := int(c)
	if idx < 0 || idx > 255 {
		return nil
	}
	return ptyProfile.Color(strconv.Itoa(idx))
}

// renderCells flattens a PTY screen snapshot into a styled block of text,
// one terminal line per row, runs of cells sharing fg/bg collapsed into a
// single styled span rather than one Style call per rune.
func renderCells(cells [][]agent.Cell) string {
	var lines []string
	for _, row := range cells {
		lines = append(lines, renderRow(row))
	}
	return strings.Join(lines, "\n")
}

func renderRow(row []agent.Cell) string {
	var b strings.Builder
	var span strings.Builder
	spanFg, spanBg := vt10x.Color(0), vt10x.Color(0)
	spanOpen := false

	flush := func() {
		if !spanOpen || span.Len() == 0 {
			span.Reset()
			return
		}
		styled := termenv.String(span.String())
		if fg := vtColor(spanFg); fg != nil {
			styled = styled.Foreground(fg)
		}
		if bg := vtColor(spanBg); bg != nil {
			styled = styled.Background(bg)
		}
		b.WriteString(styled.String())
		span.Reset()
	}

	for _, cell := range row {
		if !spanOpen || cell.Fg != spanFg || cell.Bg != spanBg {
			flush()
			spanFg, spanBg = cell.Fg, cell.Bg
			spanOpen = true
		}
		ch := cell.Ch
		if ch == 0 {
			ch = ' '
		}
		span.WriteRune(ch)
	}
	flush()
	return b.String()
}
