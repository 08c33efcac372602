package server

import "html/template"

const (
	pageTitle       = "Entity Relationship Chart"
	pageDescription = "Entities of the content model and the relations between their fields."
)

type pageData struct {
	Title       string
	Description string
	Generation  uint64
	Warnings    int
	// Error and Detail are set when the load failed.
	Error  string
	Detail []string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #1f2933; }
#er-chart { border: 1px solid #d9dee3; overflow: auto; min-height: 400px; }
#er-chart img { display: block; }
.error textarea { width: 100%; height: 12rem; font-family: monospace; }
.meta { color: #7b8794; font-size: .85rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
{{- if .Error}}
<section class="error">
<h2>Failed to load the diagram</h2>
<textarea readonly>{{.Error}}
{{range .Detail}}
{{.}}{{end}}</textarea>
</section>
{{- else}}
<p class="meta">load {{.Generation}}{{if .Warnings}}, {{.Warnings}} warnings{{end}}</p>
<div id="er-chart"><img src="/api/diagram.svg?g={{.Generation}}" alt="{{.Title}}"></div>
<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  var seen = {{.Generation}};
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === "repaint" && msg.generation > seen) {
      seen = msg.generation;
      document.querySelector("#er-chart img").src = "/api/diagram.svg?g=" + seen;
    }
  };
})();
</script>
{{- end}}
</body>
</html>
`))
