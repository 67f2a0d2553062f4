package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/ddd-pacer/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>DDD Pacer</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.connected { color: green; }
.disconnected { color: red; }
.armed { color: green; font-weight: bold; }
</style>
</head>
<body>
<h1>DDD Pacer</h1>

<h2>Regions</h2>
<table>
<tr><th>Region</th><th>State</th><th>Counter</th></tr>
<tr><th>AVI</th><td>{{.Pacing.AVI}}</td><td>{{.Pacing.Counters.AVI}}</td></tr>
<tr><th>LRI</th><td>{{.Pacing.LRI}}</td><td>{{.Pacing.Counters.LRI}}</td></tr>
<tr><th>PVARP</th><td>{{.Pacing.PVARP}}</td><td>{{.Pacing.Counters.PVARP}}</td></tr>
<tr><th>VRP</th><td>{{.Pacing.VRP}}</td><td>{{.Pacing.Counters.VRP}}</td></tr>
<tr><th>URI</th><td>{{.Pacing.URI}}</td><td>{{.Pacing.Counters.URI}}</td></tr>
<tr><th>Pending</th><td colspan="2">{{.Pacing.Pending}}</td></tr>
<tr><th>Lock</th><td colspan="2">{{.Pacing.Lock}}</td></tr>
<tr><th>URI extended</th><td colspan="2">{{if .Pacing.URIExtended}}yes{{else}}no{{end}}</td></tr>
<tr><th>Ready</th><td colspan="2" {{if .Baselined}}class="armed"{{end}}>{{if .Baselined}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Marker Counts</h2>
<table>
<tr><th>AP</th><td>{{.Counts.AP}}</td></tr>
<tr><th>AS</th><td>{{.Counts.AS}}</td></tr>
<tr><th>VP</th><td>{{.Counts.VP}}</td></tr>
<tr><th>VS</th><td>{{.Counts.VS}}</td></tr>
<tr><th>RATE_LIMIT</th><td>{{.Counts.RateLimit}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Session</th><td>{{.Session}}</td></tr>
<tr><th>Ticks</th><td>{{.Ticks}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
<tr><th>Marker log</th><td>{{if .Config.MarkerLog}}{{.Config.MarkerLog}}{{else}}disabled{{end}}</td></tr>
<tr><th>Intervals</th><td>AVI={{.Config.Intervals.AVI}} LRI={{.Config.Intervals.LRI}} PVARP={{.Config.Intervals.PVARP}} VRP={{.Config.Intervals.VRP}} URI={{.Config.Intervals.URI}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
