package main

import "net/http"

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Imposter Chat</title>
<meta name="description" content="Multi-room chat relay with an ambient AI participant">
<style>
*{margin:0;padding:0;box-sizing:border-box}
:root{
--bg:#191919;
--card:#242424;
--border:#333;
--fg:#e5e5e5;
--muted:#737373;
--radius:6px;
}
body{
font-family:system-ui,-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;
background:var(--bg);
color:var(--fg);
min-height:100vh;
display:flex;
align-items:center;
justify-content:center;
padding:24px;
-webkit-font-smoothing:antialiased;
}
.container{
width:100%;
max-width:400px;
display:flex;
flex-direction:column;
align-items:center;
gap:32px;
}
.title{
font-size:16px;
font-weight:600;
letter-spacing:-0.01em;
color:var(--fg);
}
.subtitle{
font-size:11px;
color:var(--muted);
text-align:center;
line-height:1.6;
max-width:320px;
}
.card{
width:100%;
background:var(--card);
border:1px solid var(--border);
border-radius:var(--radius);
overflow:hidden;
}
.card-row{
display:flex;
align-items:center;
justify-content:space-between;
padding:10px 14px;
border-bottom:1px solid var(--border);
}
.card-row:last-child{border-bottom:none}
.card-label{
font-size:11px;
color:var(--muted);
text-transform:uppercase;
letter-spacing:0.04em;
}
.card-value{
font-size:12px;
color:var(--fg);
font-family:'SF Mono',Monaco,Consolas,'Liberation Mono','Courier New',monospace;
}
.badge{
display:inline-flex;
align-items:center;
gap:5px;
font-size:10px;
font-weight:500;
padding:2px 8px;
border-radius:99px;
}
.badge-ok{background:rgba(34,197,94,0.15);color:#4ade80}
.badge-err{background:rgba(239,68,68,0.15);color:#f87171}
.badge-loading{background:rgba(255,255,255,0.06);color:var(--muted)}
.endpoints{width:100%}
.endpoints-title{
font-size:10px;
color:var(--muted);
text-transform:uppercase;
letter-spacing:0.06em;
margin-bottom:8px;
padding-left:2px;
}
.endpoint{
display:flex;
align-items:center;
gap:10px;
padding:8px 14px;
background:var(--card);
border:1px solid var(--border);
border-radius:var(--radius);
margin-bottom:6px;
}
.endpoint:last-child{margin-bottom:0}
.method{
font-size:9px;
font-weight:700;
letter-spacing:0.05em;
padding:2px 6px;
border-radius:3px;
background:rgba(255,255,255,0.06);
color:var(--muted);
font-family:'SF Mono',Monaco,Consolas,monospace;
flex-shrink:0;
}
.endpoint-path{
font-size:12px;
font-family:'SF Mono',Monaco,Consolas,'Liberation Mono','Courier New',monospace;
color:var(--fg);
}
.endpoint-desc{
font-size:10px;
color:var(--muted);
margin-left:auto;
}
.footer{
font-size:10px;
color:var(--muted);
opacity:0.5;
}
</style>
</head>
<body>
<div class="container">

<div class="title">Imposter Chat</div>
<div class="subtitle">Multi-room chat relay with an ambient AI participant.<br>Join a room, say something — you may not be talking to who you think.</div>

<div class="card">
<div class="card-row">
<span class="card-label">Status</span>
<span id="status" class="badge badge-loading"><span id="status-text">Checking</span></span>
</div>
<div class="card-row">
<span class="card-label">Protocol</span>
<span class="card-value">WebSocket</span>
</div>
<div class="card-row">
<span class="card-label">Default room</span>
<span class="card-value">lobby</span>
</div>
</div>

<div class="endpoints">
<div class="endpoints-title">Endpoints</div>
<div class="endpoint">
<span class="method">GET</span>
<span class="endpoint-path">/health</span>
<span class="endpoint-desc">Health check</span>
</div>
<div class="endpoint">
<span class="method">WS</span>
<span class="endpoint-path">/ws</span>
<span class="endpoint-desc">Chat relay</span>
</div>
</div>

<div class="footer">&copy; Imposter Chat</div>

</div>
<script>
(function(){
var s=document.getElementById('status'),t=document.getElementById('status-text');
function check(){
fetch('/health').then(function(r){return r.json()}).then(function(j){
if(j.status==='healthy'){s.className='badge badge-ok';t.textContent='Healthy'}
else{s.className='badge badge-err';t.textContent='Degraded'}
}).catch(function(){s.className='badge badge-err';t.textContent='Offline'});
}
check();setInterval(check,30000);
})();
</script>
</body>
</html>`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(indexHTML))
}
