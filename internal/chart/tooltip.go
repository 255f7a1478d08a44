package chart

import (
	"github.com/rohankatakam/codefolio/internal/models"
)

// DateLayout is the long date shown in the tooltip
const DateLayout = "Monday, January 2, 2006"

// Tooltip describes the hover card for one commit
type Tooltip struct {
	Visible bool    `json:"visible"`
	ID      string  `json:"id,omitempty"`
	URL     string  `json:"url,omitempty"`
	Date    string  `json:"date,omitempty"`
	Time    string  `json:"time,omitempty"`
	Author  string  `json:"author,omitempty"`
	Lines   int     `json:"lines,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
}

// TooltipFor fills the hover card for a commit; nil hides it
func TooltipFor(c *models.Commit) Tooltip {
	if c == nil {
		return Tooltip{}
	}
	return Tooltip{
		Visible: true,
		ID:      c.ID,
		URL:     c.URL,
		Date:    c.Datetime.Format(DateLayout),
		Time:    c.Datetime.Format("3:04 PM"),
		Author:  c.Author,
		Lines:   c.TotalLines,
	}
}

// TooltipAt fills the hover card for a bound mark, anchored at its position
func (f *Frame) TooltipAt(id string) Tooltip {
	m, ok := f.Mark(id)
	if !ok || !m.State.Visible() {
		return Tooltip{}
	}
	tip := TooltipFor(&m.Commit)
	tip.X, tip.Y = m.X, m.Y
	return tip
}
