package trigger

import "html/template"

var templates = template.Must(template.New("trigger").Parse(`
{{- define "icon" -}}
<button type="button" class="guidepost-trigger guidepost-icon" data-guidepost-tour="{{.TourID}}" data-guidepost-tag="{{.Tag}}" aria-label="{{.Label}}" title="{{.Label}}">?</button>
{{- end -}}

{{- define "button" -}}
<button type="button" class="guidepost-trigger guidepost-button" data-guidepost-tour="{{.TourID}}" data-guidepost-tag="{{.Tag}}">{{.Label}}</button>
{{- end -}}

{{- define "floating" -}}
<div class="guidepost-floating" data-guidepost-role="{{.Role}}"{{if .Open}} data-open{{end}}>
<button type="button" class="guidepost-floating-toggle" aria-expanded="{{.Open}}">Tours</button>
<ul class="guidepost-floating-list"{{if not .Open}} hidden{{end}}>
{{- range .Tours}}
<li><button type="button" class="guidepost-trigger" data-guidepost-tour="{{.ID}}" data-guidepost-tag="{{.ID}}">{{if .Title}}{{.Title}}{{else}}{{.ID}}{{end}}</button></li>
{{- end}}
</ul>
</div>
{{- end -}}
`))
