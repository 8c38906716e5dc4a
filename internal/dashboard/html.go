package dashboard

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>NewsLens{{if .Company}} - {{.Company}}{{end}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: 'Inter', -apple-system, system-ui, sans-serif; background: #0f172a; color: #e2e8f0; min-height: 100vh; }
        .header { background: linear-gradient(135deg, #1e293b, #334155); padding: 1.5rem 2rem; border-bottom: 1px solid #475569; }
        .header h1 { font-size: 1.5rem; background: linear-gradient(135deg, #38bdf8, #818cf8); background-clip: text; -webkit-background-clip: text; -webkit-text-fill-color: transparent; }
        form { display: flex; flex-wrap: wrap; gap: 1rem; align-items: flex-end; padding: 1.5rem 2rem; background: #1e293b; border-bottom: 1px solid #334155; }
        label { display: flex; flex-direction: column; font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.05em; color: #94a3b8; gap: 0.25rem; }
        input, select { background: #0f172a; color: #f1f5f9; border: 1px solid #475569; border-radius: 6px; padding: 0.5rem; font-size: 0.95rem; }
        button { background: #38bdf8; color: #0f172a; border: none; border-radius: 6px; padding: 0.6rem 1.2rem; font-weight: 700; cursor: pointer; }
        .notice { margin: 1.5rem 2rem; padding: 1rem; border-radius: 8px; }
        .notice.error { background: #991b1b; color: #fca5a5; }
        .notice.info { background: #854d0e; color: #fde047; }
        .summary { margin: 1.5rem 2rem 0; display: flex; gap: 1.5rem; align-items: center; flex-wrap: wrap; }
        .summary h2 { font-size: 1.25rem; }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(280px, 1fr)); gap: 1rem; padding: 1.5rem 2rem; }
        .card { background: #1e293b; border: 1px solid #334155; border-radius: 12px; padding: 1.25rem; }
        .card h3 { font-size: 1rem; margin-bottom: 0.5rem; }
        .card h3 a { color: #f1f5f9; text-decoration: none; }
        .card p { font-size: 0.9rem; color: #cbd5e1; line-height: 1.4; }
        .bubble { display: inline-block; margin-top: 0.75rem; padding: 0.25rem 0.75rem; border-radius: 9999px; color: #0f172a; font-size: 0.8rem; font-weight: 700; }
        .overview { margin: 0 2rem 2rem; padding: 1.25rem; background: #1e293b; border: 1px solid #38bdf8; border-radius: 12px; line-height: 1.5; }
        .overview h1, .overview h2, .overview h3 { margin: 0.75rem 0 0.5rem; }
        .overview ul, .overview ol { margin-left: 1.5rem; }
        .footer { text-align: center; padding: 1rem; color: #475569; font-size: 0.75rem; }
    </style>
</head>
<body>
    <div class="header"><h1>NewsLens</h1></div>
    <form method="get" action="/ui/analyze">
        <label>Company
            <input type="text" name="company" value="{{.Form.Company}}" minlength="3" required>
        </label>
        <label>Max articles
            <select name="limit">
            {{- $limit := .Form.Limit}}
            {{- range seq .MaxLimit}}
                <option value="{{.}}"{{if eq . $limit}} selected{{end}}>{{.}}</option>
            {{- end}}
            </select>
        </label>
        <label>Skip
            <input type="number" name="skip" min="0" value="{{.Form.Skip}}">
        </label>
        <label>External model
            <select name="external">
                <option value="no"{{if not .Form.External}} selected{{end}}>No</option>
                <option value="yes"{{if .Form.External}} selected{{end}}>Yes (max 3 articles)</option>
            </select>
        </label>
        <label>Overview
            <input type="checkbox" name="overview" value="yes"{{if .Form.Overview}} checked{{end}}>
        </label>
        <button type="submit">Analyze</button>
    </form>

    {{- if .Error}}
    <div class="notice error">{{.Error}}</div>
    {{- end}}
    {{- if .Message}}
    <div class="notice info">{{.Message}}</div>
    {{- end}}

    {{- if .Articles}}
    <div class="summary">
        <h2>{{.Company}}</h2>
        <span id="distribution">{{.Distribution}}</span>
        {{- if .AudioURL}}
        <audio controls src="{{.AudioURL}}"></audio>
        {{- end}}
    </div>
    <div class="grid">
        {{- range .Articles}}
        <div class="card">
            <h3><a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a></h3>
            <p>{{.Summary}}</p>
            <span class="bubble" style="{{bubble .Sentiment}}">{{.Sentiment}}</span>
        </div>
        {{- end}}
    </div>
    {{- end}}

    {{- if .Overview}}
    <div class="overview">{{.Overview}}</div>
    {{- end}}

    <div class="footer">NewsLens</div>
</body>
</html>
`
