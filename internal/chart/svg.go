package chart

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
)

// WriteSVG renders a frame as a standalone SVG document. Each mark carries
// <animate> children that move it from its previous to its new geometry.
func WriteSVG(w io.Writer, f *Frame) error {
	tmpl, err := template.New("chart").Funcs(svgFuncs(f)).Parse(svgTemplate)
	if err != nil {
		return fmt.Errorf("parse svg template: %w", err)
	}
	return tmpl.Execute(w, f)
}

func svgFuncs(f *Frame) template.FuncMap {
	dur := f.Layout.Transition.Seconds()
	return template.FuncMap{
		"num": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 2, 64)
		},
		"dur": func() string {
			return strconv.FormatFloat(dur, 'f', 3, 64) + "s"
		},
		"animate": func() bool { return dur > 0 },
		"area":    f.Layout.Usable,
		"moved": func(a, b float64) bool {
			return a != b
		},
	}
}

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 {{ num .Layout.Width }} {{ num .Layout.Height }}" style="overflow: visible">
{{- $area := area }}
<g class="gridlines" transform="translate({{ num $area.Left }}, 0)">
{{- range .YTicks }}
<line x1="0" x2="{{ num $area.Width }}" y1="{{ num .Pos }}" y2="{{ num .Pos }}" />
{{- end }}
</g>
<g class="x-axis" transform="translate(0, {{ num $area.Bottom }})">
<line x1="{{ num $area.Left }}" x2="{{ num $area.Right }}" />
{{- range .XTicks }}
<g class="tick" transform="translate({{ num .Pos }}, 0)"><line y2="6" /><text y="9" dy="0.71em" text-anchor="middle">{{ .Label }}</text></g>
{{- end }}
</g>
<g class="y-axis" transform="translate({{ num $area.Left }}, 0)">
<line y1="{{ num $area.Top }}" y2="{{ num $area.Bottom }}" />
{{- range .YTicks }}
<g class="tick" transform="translate(0, {{ num .Pos }})"><line x2="-6" /><text x="-9" dy="0.32em" text-anchor="end">{{ .Label }}</text></g>
{{- end }}
</g>
<g class="dots">
{{- range .Marks }}
<circle data-id="{{ .ID }}" class="{{ .State }}{{ if .Selected }} selected{{ end }}" cx="{{ num .X }}" cy="{{ num .Y }}" r="{{ num .R }}" fill="steelblue" fill-opacity="{{ num .Opacity }}">
{{- if animate }}
{{- if moved .PrevX .X }}<animate attributeName="cx" from="{{ num .PrevX }}" to="{{ num .X }}" dur="{{ dur }}" fill="freeze" />{{ end }}
{{- if moved .PrevY .Y }}<animate attributeName="cy" from="{{ num .PrevY }}" to="{{ num .Y }}" dur="{{ dur }}" fill="freeze" />{{ end }}
{{- if moved .PrevR .R }}<animate attributeName="r" from="{{ num .PrevR }}" to="{{ num .R }}" dur="{{ dur }}" fill="freeze" />{{ end }}
{{- if moved .PrevOp .Opacity }}<animate attributeName="fill-opacity" from="{{ num .PrevOp }}" to="{{ num .Opacity }}" dur="{{ dur }}" fill="freeze" />{{ end }}
{{- end }}
{{- if .State.Visible }}<title>{{ .ID }}</title>{{ end }}
</circle>
{{- end }}
</g>
</svg>
`
