package render

import "html/template"

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>AI Product Feedback</title>
    <style>
        body { font-family: Verdana, Geneva, sans-serif; font-size: 10pt; color: #828282; background-color: #f6f6ef; margin: 0; padding: 0; }
        .container { width: 85%; max-width: 1200px; margin: 0 auto; background-color: #f6f6ef; }
        .header { background-color: #ff6600; padding: 2px; margin-bottom: 10px; }
        .header h1 { margin: 0; padding: 6px; font-size: 12pt; font-weight: bold; color: black; }
        .item { padding: 3px 0; margin-bottom: 5px; }
        .title { line-height: 12pt; }
        .title a { color: #000; text-decoration: none; }
        .title a:visited { color: #828282; }
        .title a:hover { text-decoration: underline; }
        .meta { font-size: 8pt; color: #828282; padding-left: 20px; }
        .text { font-size: 9pt; color: #000; padding: 5px 20px; margin-top: 5px; line-height: 14pt; max-width: 800px; white-space: pre-wrap; }
        .badge { display: inline-block; padding: 2px 6px; margin-right: 4px; font-size: 8pt; border-radius: 3px; font-weight: bold; color: white; }
        .badge-claude { background-color: #d4a574; }
        .badge-chatgpt { background-color: #10a37f; }
        .badge-gemini { background-color: #4285f4; }
        .badge-copilot { background-color: #6e40c9; }
        .badge-perplexity { background-color: #4a9eff; }
        .badge-grok { background-color: #000; }
        .badge-unknown { background-color: #999; }
        .badge-reddit { background-color: #ff4500; }
        .badge-hackernews { background-color: #ff6600; }
        .category { font-size: 8pt; color: #666; font-style: italic; }
        .stats { background-color: white; padding: 10px; margin: 20px 0; border: 1px solid #828282; }
        .stats h3 { margin-top: 0; color: #000; }
        .footer { padding: 20px; text-align: center; color: #828282; font-size: 8pt; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>AI Product Feedback Tracker</h1>
        </div>

        <div class="stats">
            <h3>Overview</h3>
            <p><strong id="total">{{.Total}}</strong> items collected | Last updated: <span id="updated">{{.LastUpdated}}</span></p>
        </div>
{{range .Items}}
        <div class="item">
            <div class="title">
                {{.Rank}}. <a href="{{.URL}}" target="_blank">{{.Title}}</a>
            </div>
            <div class="meta">
                {{range .Badges}}<span class="badge {{.Class}}">{{.Label}}</span> {{end}}|
                <span class="points">{{.Points}}</span> | <span class="comments">{{.Comments}}</span> |
                <span class="time">{{.Time}}</span> |
                <span class="category">{{.Categories}}</span>
            </div>
            {{- if .Preview}}
            <div class="text">{{.Preview}}</div>
            {{- end}}
        </div>
{{end}}
        <div class="footer">Generated from AI Product Feedback Collection System</div>
    </div>
</body>
</html>
`
