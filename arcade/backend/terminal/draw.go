package terminal

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-arcadehost/arcade/backend/terminal/render"
)

var legend = []string{
	"arrows  d-pad        z x a s  cross circle square triangle",
	"q e 1 3 L1 R1 L2 R2  enter/tab  start/select  ijkl  stick",
	"esc menu  p pause  F2 load  F3 slot  F4 ff  F5 reset  F8 surface",
}

func (t *Backend) render() {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		t.drawText(0, termHeight/2, termWidth, fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight), style)
		return
	}

	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	textStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	dimStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	title := t.config.Title
	if title == "" {
		title = "arcadehost"
	}
	t.drawText(0, 0, termWidth, title, titleStyle)

	status := "no session"
	if t.config.Status != nil {
		status = t.config.Status()
	}
	if t.surfaceGone {
		status += "  [surface detached]"
	}
	t.drawText(0, 1, termWidth, status, textStyle)

	y := 3
	for _, line := range legend {
		t.drawText(0, y, termWidth, line, dimStyle)
		y++
	}

	t.drawLogs(0, y+1, termWidth, termHeight)
}

func (t *Backend) drawLogs(startX, startY, width, termHeight int) {
	availableHeight := termHeight - startY
	if width <= 0 || availableHeight <= 0 {
		return
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	for i, entry := range t.logBuffer.Recent(availableHeight, t.logLevel) {
		style := infoStyle
		switch {
		case entry.Level >= slog.LevelError:
			style = errStyle
		case entry.Level >= slog.LevelWarn:
			style = warnStyle
		case entry.Level < slog.LevelInfo:
			style = debugStyle
		}
		t.drawText(startX, startY+i, width, render.FormatLogEntry(entry), style)
	}
}

// drawText writes text on one row, truncating it to width.
func (t *Backend) drawText(x, y, width int, text string, style tcell.Style) {
	if width <= 0 {
		return
	}
	runes := []rune(text)
	if len(runes) > width {
		if width > 3 {
			runes = append(runes[:width-3], '.', '.', '.')
		} else {
			runes = runes[:width]
		}
	}
	for i, ch := range runes {
		t.screen.SetContent(x+i, y, ch, nil, style)
	}
}
