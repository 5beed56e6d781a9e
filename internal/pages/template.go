package pages

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem; color: #222; }
header { border-bottom: 1px solid #ddd; margin-bottom: 1rem; }
.description { max-width: 60rem; }
.group { margin-bottom: 2rem; }
.cards { display: flex; flex-wrap: wrap; gap: 1rem; }
.card { border: 1px solid #e0e0e0; border-radius: 6px; padding: 0.75rem; }
.card h3 { margin: 0 0 0.5rem; font-size: 1rem; }
.filters { color: #666; font-size: 0.85rem; min-height: 1.2em; }
footer { color: #888; font-size: 0.8rem; margin-top: 2rem; }
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<div class="description">{{.Description}}</div>
</header>
{{range .Groups}}
<section class="group" data-group="{{.Name}}">
<h2>{{.Label}} <button onclick="groupAction('{{.Name}}', 'filter-all')">Reset all</button></h2>
<div class="cards">
{{range .Cards}}
<div class="card" id="card-{{.Anchor}}" data-kind="{{.Kind}}">
<h3><a href="/charts/{{.Anchor}}.html">{{.Title}}</a></h3>
<img src="/charts/{{.Anchor}}.png" width="{{.Width}}" height="{{.Height}}" alt="{{.Title}}">
<div class="filters">{{.Filters}}</div>
</div>
{{end}}
</div>
</section>
{{end}}
{{if .Snapshots}}
<section class="snapshots">
<h2>Snapshots</h2>
<ul>
{{range .Snapshots}}<li><button onclick="restore('{{.}}')">{{.}}</button></li>
{{end}}
</ul>
</section>
{{end}}
<footer>Generated {{.GeneratedAt}}{{if .Version}} &middot; v{{.Version}}{{end}}</footer>
<script>
function groupAction(group, op) {
  fetch('/api/groups/' + encodeURIComponent(group) + '/' + op, {method: 'POST'}).then(function () { location.reload(); });
}
function restore(name) {
  fetch('/api/snapshots/' + encodeURIComponent(name) + '/restore', {method: 'POST'}).then(function () { location.reload(); });
}
</script>
</body>
</html>
`
