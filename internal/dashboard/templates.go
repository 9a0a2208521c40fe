package dashboard

import "html/template"

var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>netsentry — dashboard</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
:root{
  --bg:#0a0a0f;--surface:#12121a;--surface2:#1a1a26;--border:#2a2a3a;
  --text:#e0e0ee;--text2:#8888aa;--text3:#555570;
  --accent:#0ea5e9;--accent-light:#38bdf8;--accent-dim:#0284c7;
  --danger:#ef4444;--success:#22c55e;--warn:#f59e0b;
  --mono:'SF Mono','Fira Code','JetBrains Mono',monospace;
  --sans:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;
}
body{font-family:var(--sans);background:var(--bg);color:var(--text);min-height:100vh;display:flex;align-items:center;justify-content:center}
.login-card{background:var(--surface);border:1px solid var(--border);border-radius:12px;padding:48px 40px;max-width:400px;width:100%;text-align:center}
.logo{font-family:var(--mono);font-size:1.5rem;font-weight:700;letter-spacing:-0.5px;margin-bottom:8px}
.logo span{color:var(--accent-light)}
.subtitle{color:var(--text2);font-size:0.85rem;margin-bottom:32px}
.help{color:var(--text3);font-size:0.78rem;margin-bottom:24px;line-height:1.6}
.help code{background:var(--surface2);padding:2px 6px;border-radius:4px;font-family:var(--mono);font-size:0.75rem;color:var(--accent-light)}
input[type=text]{
  width:100%;padding:14px 16px;background:var(--bg);border:1px solid var(--border);
  border-radius:8px;color:var(--text);font-family:var(--mono);font-size:1.2rem;
  text-align:center;letter-spacing:4px;outline:none;
}
input[type=text]:focus{border-color:var(--accent)}
button{
  width:100%;padding:12px;margin-top:16px;background:var(--accent);color:#fff;
  border:none;border-radius:8px;font-size:0.9rem;font-weight:600;cursor:pointer;
}
button:hover{background:var(--accent-dim)}
.error{color:var(--danger);font-size:0.82rem;margin-top:12px}
.footer{margin-top:32px;color:var(--text3);font-size:0.72rem}
</style>
</head>
<body>
<div class="login-card">
  <div class="logo">net<span>sentry</span></div>
  <div class="subtitle">Dashboard Access</div>
  <p class="help">Enter the access code shown in your terminal.<br>Run <code>netsentry serve</code> to get a code.</p>
  <form method="POST" action="/dashboard/login" autocomplete="off">
    <input type="text" name="code" placeholder="00000000" maxlength="8" pattern="\d{8}" inputmode="numeric" autofocus required>
    <button type="submit">Authenticate</button>
  </form>
  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
  <p class="footer">Local access only &middot; 127.0.0.1</p>
</div>
</body>
</html>`))

const layoutHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>netsentry — {{.Active}}</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
:root{
  --bg:#0a0a0f;--surface:#12121a;--surface2:#1a1a26;--border:#2a2a3a;
  --text:#e0e0ee;--text2:#8888aa;--text3:#555570;
  --accent:#0ea5e9;--accent-light:#38bdf8;--accent-dim:#0284c7;
  --danger:#ef4444;--success:#22c55e;--warn:#f59e0b;
  --mono:'SF Mono','Fira Code','JetBrains Mono',monospace;
  --sans:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;
}
body{font-family:var(--sans);background:var(--bg);color:var(--text);min-height:100vh}
.nav{display:flex;align-items:center;gap:4px;padding:0 24px;background:var(--surface);border-bottom:1px solid var(--border);height:52px}
.nav .logo{font-family:var(--mono);font-weight:700;margin-right:24px}
.nav .logo span{color:var(--accent-light)}
.nav a{color:var(--text2);text-decoration:none;font-size:0.85rem;padding:6px 12px;border-radius:6px}
.nav a:hover{color:var(--text);background:var(--surface2)}
.nav a.active{color:var(--accent-light);background:var(--surface2)}
.nav form{margin-left:auto}
.nav button{background:none;border:1px solid var(--border);color:var(--text2);padding:6px 12px;border-radius:6px;font-size:0.8rem;cursor:pointer}
main{padding:24px;max-width:1100px;margin:0 auto}
h1{font-size:1.1rem;margin-bottom:16px}
.cards{display:grid;grid-template-columns:repeat(auto-fit,minmax(160px,1fr));gap:12px;margin-bottom:24px}
.card{background:var(--surface);border:1px solid var(--border);border-radius:10px;padding:16px}
.card .num{font-family:var(--mono);font-size:1.6rem;font-weight:700}
.card .label{color:var(--text2);font-size:0.78rem;margin-top:4px}
table{width:100%;border-collapse:collapse;background:var(--surface);border:1px solid var(--border);border-radius:10px;overflow:hidden}
th,td{padding:10px 14px;text-align:left;font-size:0.82rem;border-bottom:1px solid var(--border)}
th{color:var(--text2);font-weight:600;background:var(--surface2)}
tr:last-child td{border-bottom:none}
.sev{font-family:var(--mono);font-size:0.72rem;padding:2px 8px;border-radius:10px}
.sev-low{background:#1a2e1a;color:var(--success)}
.sev-medium{background:#2e2a1a;color:var(--warn)}
.sev-high{background:#2e1f1a;color:#fb923c}
.sev-critical{background:#2e1a1a;color:var(--danger)}
.muted{color:var(--text3);font-size:0.78rem}
.chat{background:var(--surface);border:1px solid var(--border);border-radius:10px;padding:16px;margin-top:24px}
.chat .msg{margin-bottom:10px;font-size:0.84rem;line-height:1.5;white-space:pre-wrap}
.chat .msg .who{font-family:var(--mono);font-size:0.7rem;color:var(--text3);display:block}
.chat .msg.user .who{color:var(--accent-light)}
</style>
</head>
<body>
<nav class="nav">
  <div class="logo">net<span>sentry</span></div>
  <a href="/dashboard" {{if eq .Active "overview"}}class="active"{{end}}>Overview</a>
  <a href="/dashboard/employees" {{if eq .Active "employees"}}class="active"{{end}}>Employees</a>
  <a href="/dashboard/alerts" {{if eq .Active "alerts"}}class="active"{{end}}>Alerts</a>
  <a href="/dashboard/analytics" {{if eq .Active "analytics"}}class="active"{{end}}>Analytics</a>
  <a href="/dashboard/upload" {{if eq .Active "upload"}}class="active"{{end}}>Upload</a>
  <a href="/dashboard/results" {{if eq .Active "results"}}class="active"{{end}}>Results</a>
  <form method="POST" action="/dashboard/logout"><button type="submit">Sign out</button></form>
</nav>
<main>
`

const layoutFoot = `</main>
</body>
</html>`

var overviewTmpl = template.Must(template.New("overview").Parse(layoutHead + `
<h1>Overview</h1>
<div class="cards">
  <div class="card"><div class="num">{{.Stats.Total}}</div><div class="label">Total alerts</div></div>
  <div class="card"><div class="num">{{.Stats.Open}}</div><div class="label">Open</div></div>
  <div class="card"><div class="num">{{.Stats.High}}</div><div class="label">High</div></div>
  <div class="card"><div class="num">{{.Stats.Critical}}</div><div class="label">Critical</div></div>
</div>
<table>
  <tr><th>Threat</th><th>Count</th><th>Severity</th><th>Trend</th></tr>
  {{range .Threats}}
  <tr><td>{{.Name}}</td><td>{{.Count}}</td><td><span class="sev sev-{{.Severity}}">{{.Severity}}</span></td><td>{{.Trend}}</td></tr>
  {{end}}
</table>
<div class="chat">
  <h1>Analysis assistant</h1>
  {{if not .WebhookSet}}<p class="muted">Webhook endpoint is not configured; messages cannot be processed.</p>{{end}}
  <div id="transcript">
  {{range .Transcript}}
  <div class="msg {{.Role}}"><span class="who">{{.Role}}</span>{{.Content}}</div>
  {{end}}
  </div>
  <p class="muted">POST /api/chat/message to converse; include an email address in processable requests.</p>
</div>
` + layoutFoot))

var resultsTmpl = template.Must(template.New("results").Parse(layoutHead + `
<h1>Analysis results</h1>
{{if .BaseID}}
<p class="muted">Source: {{.BaseID}}/{{.Table}} &middot; GET /api/records (add ?refresh=1 to refetch)</p>
<div id="records"></div>
<script>
fetch('/api/records').then(function(r){return r.json()}).then(function(data){
  if(!data.fields){document.getElementById('records').innerHTML='<p class="muted">'+(data.error||data.status)+'</p>';return}
  var html='<table><tr>';
  data.fields.forEach(function(f){html+='<th>'+f+'</th>'});
  html+='</tr>';
  data.records.forEach(function(row){
    html+='<tr>';
    data.fields.forEach(function(f){html+='<td>'+(row[f]||'-')+'</td>'});
    html+='</tr>';
  });
  html+='</table>';
  document.getElementById('records').innerHTML=html;
});
</script>
{{else}}
<p class="muted">Tabular data source is not configured. Set tabular.base_id and tabular.table (token via NETSENTRY_TABULAR_TOKEN).</p>
{{end}}
` + layoutFoot))

var employeesTmpl = template.Must(template.New("employees").Parse(layoutHead + `
<h1>Employees by risk</h1>
<table>
  <tr><th>Name</th><th>Email</th><th>Department</th><th>Risk</th><th>Last active</th></tr>
  {{range .Employees}}
  <tr>
    <td>{{.Avatar}} {{.Name}}</td>
    <td class="muted">{{.Email}}</td>
    <td>{{.Department}}</td>
    <td class="num">{{.RiskPct}}%</td>
    <td class="muted">{{.LastActive.Format "15:04 Jan 2"}}</td>
  </tr>
  {{end}}
</table>
` + layoutFoot))

var alertsTmpl = template.Must(template.New("alerts").Parse(layoutHead + `
<h1>Alerts</h1>
<p class="muted">Email digest:
  {{if .Settings.Enabled}}enabled, min severity {{.Settings.MinSeverity}}, {{len .Settings.Recipients}} recipient(s), daily at {{printf "%02d:00" .Settings.DigestHour}}{{else}}disabled{{end}}
  &middot; {{.DigestMatches}} open alert(s) meet the threshold
  &middot; PUT /api/alerts/settings to change</p>
<table>
  <tr><th>Time</th><th>Employee</th><th>Category</th><th>Severity</th><th>Message</th><th>Status</th></tr>
  {{range .Alerts}}
  <tr>
    <td class="muted">{{.Timestamp}}</td>
    <td>{{.Employee}}</td>
    <td>{{.Category}}</td>
    <td><span class="sev sev-{{.Severity}}">{{.Severity}}</span></td>
    <td>{{.Message}}</td>
    <td class="muted">{{if eq .Acknowledged 1}}acknowledged{{else}}open{{end}}</td>
  </tr>
  {{else}}
  <tr><td colspan="6" class="muted">No alerts recorded.</td></tr>
  {{end}}
</table>
` + layoutFoot))

var analyticsTmpl = template.Must(template.New("analytics").Parse(layoutHead + `
<h1>Threat analytics</h1>
<table>
  <tr><th>Category</th><th>Count</th><th>Severity</th><th>Trend</th></tr>
  {{range .Threats}}
  <tr><td>{{.Name}}</td><td>{{.Count}}</td><td><span class="sev sev-{{.Severity}}">{{.Severity}}</span></td><td>{{.Trend}}</td></tr>
  {{end}}
</table>
` + layoutFoot))

var uploadTmpl = template.Must(template.New("upload").Parse(layoutHead + `
<h1>Log upload</h1>
<p class="muted">Accepted: {{range $i, $e := .Allowed}}{{if $i}}, {{end}}{{$e}}{{end}} &middot; max {{.MaxMB}} MiB per file &middot; POST multipart to /api/uploads (field: files)</p>
<table>
  <tr><th>Name</th><th>Size</th><th>Status</th><th>Uploaded</th></tr>
  {{range .Files}}
  <tr>
    <td>{{.Name}}</td>
    <td class="muted">{{.Size}} B</td>
    <td>{{.Status}}</td>
    <td class="muted">{{if .UploadedAt.IsZero}}-{{else}}{{.UploadedAt.Format "15:04:05"}}{{end}}</td>
  </tr>
  {{else}}
  <tr><td colspan="4" class="muted">No files uploaded yet.</td></tr>
  {{end}}
</table>
` + layoutFoot))
