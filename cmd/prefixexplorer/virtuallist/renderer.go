// Package virtuallist renders only the visible window of a long list.
package virtuallist

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
)

// VirtualList is implemented by lists rendered through a Renderer.
type VirtualList interface {
	// ItemCount returns the total number of items in the list
	ItemCount() int

	// RenderItem renders a single item at the given index.
	// isCursor indicates whether this item is currently selected.
	// width is the available width for rendering.
	RenderItem(index int, isCursor bool, width int) string
}

// Renderer keeps a cursor and scroll offset over a VirtualList and renders
// the rows that fit in its height. Rendering cost does not depend on the
// number of items.
type Renderer struct {
	list         VirtualList
	viewport     viewport.Model
	placeholder  string
	cursor       int
	width        int
	height       int
	scrollOffset int
}

// New creates a new virtual list renderer
func New(list VirtualList) *Renderer {
	return &Renderer{
		list:     list,
		viewport: viewport.New(0, 0),
	}
}

// SetPlaceholder sets the text shown while the list is empty.
func (r *Renderer) SetPlaceholder(s string) { r.placeholder = s }

// SetSize updates the renderer size
func (r *Renderer) SetSize(width, height int) {
	r.width = width
	r.height = height
	r.viewport.Width = width
	r.viewport.Height = height
	r.ensureCursorVisible()
}

// SetCursor moves the cursor, clamped to the list, and scrolls it into view.
func (r *Renderer) SetCursor(cursor int) {
	n := r.list.ItemCount()
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	r.cursor = cursor
	r.ensureCursorVisible()
}

// Move shifts the cursor by delta rows.
func (r *Renderer) Move(delta int) { r.SetCursor(r.cursor + delta) }

// Cursor returns the current cursor position
func (r *Renderer) Cursor() int {
	return r.cursor
}

// AtEnd reports whether the cursor is on the last item.
func (r *Renderer) AtEnd() bool {
	return r.cursor >= r.list.ItemCount()-1
}

// ScrollOffset returns the index of the first visible item.
func (r *Renderer) ScrollOffset() int { return r.scrollOffset }

// View renders the visible portion of the list
func (r *Renderer) View() string {
	itemCount := r.list.ItemCount()
	if itemCount == 0 {
		return r.placeholder
	}

	visibleHeight := r.height
	if visibleHeight <= 0 {
		visibleHeight = 20 // before the first WindowSizeMsg
	}

	start := r.scrollOffset
	end := min(start+visibleHeight, itemCount)

	// Keep the window full at the bottom of the list.
	if end == itemCount && end-start < visibleHeight {
		start = max(end-visibleHeight, 0)
		r.scrollOffset = start
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(r.list.RenderItem(i, i == r.cursor, r.width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	// Only the visible rows are handed to the viewport, so it never scrolls.
	r.viewport.SetContent(b.String())
	r.viewport.YOffset = 0
	return r.viewport.View()
}

func (r *Renderer) ensureCursorVisible() {
	visibleHeight := r.height
	if visibleHeight <= 0 {
		return
	}

	if r.cursor < r.scrollOffset {
		r.scrollOffset = r.cursor
	}
	if r.cursor >= r.scrollOffset+visibleHeight {
		r.scrollOffset = r.cursor - visibleHeight + 1
	}

	maxOffset := max(r.list.ItemCount()-visibleHeight, 0)
	r.scrollOffset = min(max(r.scrollOffset, 0), maxOffset)
}

// Width returns the current width
func (r *Renderer) Width() int {
	return r.width
}

// Height returns the current height
func (r *Renderer) Height() int {
	return r.height
}
