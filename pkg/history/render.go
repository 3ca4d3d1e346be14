// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package history

import (
	"fmt"
	"html/template"
	"io"
	"time"
)

var pageTemplate = template.Must(template.New("history").Funcs(template.FuncMap{
	"stamp": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04") },
	"num":   func(f float64) string { return fmt.Sprintf("%.2f", f) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: monospace; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #999; padding: 4px 10px; text-align: right; }
th { background: #eee; }
caption { text-align: left; font-weight: bold; padding: 6px 0; }
.up { color: #a00; }
.down { color: #070; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Trends}}
<table>
<caption>{{.Case}} / {{.Backend}} / {{.Operation}} &mdash; {{.Metric}}
{{if gt .DeltaPct 0.0}}<span class="up">+{{num .DeltaPct}}%</span>{{else if lt .DeltaPct 0.0}}<span class="down">{{num .DeltaPct}}%</span>{{end}}
</caption>
<tr><th>when</th><th>value</th><th>record</th></tr>
{{range .Points}}<tr><td>{{stamp .Timestamp}}</td><td>{{num .Value}}</td><td>{{.RecordID}}</td></tr>
{{end}}</table>
{{end}}
</body>
</html>
`))

// RenderHTML writes the trend page.
func RenderHTML(w io.Writer, title string, trends []Trend) error {
	return pageTemplate.Execute(w, struct {
		Title  string
		Trends []Trend
	}{Title: title, Trends: trends})
}
