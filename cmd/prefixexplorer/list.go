package main

import (
	"github.com/joshuapare/ipamkit/cmd/prefixexplorer/virtuallist"
	"github.com/joshuapare/ipamkit/internal/display"
	"github.com/joshuapare/ipamkit/pkg/preftree/memview"
)

// rowList adapts flattened view rows to the virtual list renderer.
type rowList struct {
	rows  []memview.Row
	state display.StateFunc
}

var _ virtuallist.VirtualList = (*rowList)(nil)

func (l *rowList) ItemCount() int { return len(l.rows) }

func (l *rowList) RenderItem(index int, isCursor bool, width int) string {
	if index < 0 || index >= len(l.rows) {
		return ""
	}
	r := l.rows[index]
	p := display.Props(r, l.state)
	p.IsSelected = isCursor

	switch r.Kind {
	case memview.RowGroup:
		p.ItemStyle = groupStyle
	case memview.RowHidden:
		p.ItemStyle = hiddenStyle
	case memview.RowEmpty:
		p.ItemStyle = contextStyle
	default:
		p.BadgeStyle = badgeStyle(r.Node.Type)
		if r.Node.Match {
			p.ItemStyle = matchStyle
		} else {
			p.ItemStyle = contextStyle
		}
	}
	return display.RenderRow(p, width)
}
