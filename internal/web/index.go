package web

// indexHTML draws state messages on a canvas and sends pointer input back.
const indexHTML = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>ringball</title>
<style>
  body { margin: 0; background: #0a0a0a; color: #8c8c8c; font: 13px monospace; display: flex; }
  canvas { height: 100vh; cursor: grab; }
  #panel { padding: 20px; width: 300px; }
  button { background: #1e1e1e; color: #ddd; border: 1px solid #333; margin: 2px; padding: 4px 10px; }
  label { display: block; margin-top: 8px; }
  input { width: 100%; }
</style>
</head>
<body>
<canvas id="view"></canvas>
<div id="panel">
  <h2 style="color:#fff">ringball</h2>
  <div id="status">connecting</div>
  <div id="stats"></div>
  <p>
    <button data-cmd="start">start</button>
    <button data-cmd="stop">stop</button>
    <button data-cmd="reset">reset</button>
  </p>
  <p>
    <button id="rec">record</button>
    <a href="/api/v1/frame.png" target="_blank">png</a>
    <a href="/api/v1/frame.svg" target="_blank">svg</a>
  </p>
  <div id="params"></div>
  <pre id="log"></pre>
</div>
<script>
const view = document.getElementById('view');
const ctx = view.getContext('2d');
const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
const send = (type, data) => ws.send(JSON.stringify(data === undefined ? {type} : {type, data}));
let last = null;

function toWorld(ev) {
  const r = view.getBoundingClientRect();
  return { x: (ev.clientX - r.left) * view.width / r.width, y: (ev.clientY - r.top) * view.height / r.height };
}

function draw(s) {
  if (view.width !== s.width) { view.width = s.width; view.height = s.height; }
  ctx.fillStyle = '#000';
  ctx.fillRect(0, 0, s.width, s.height);
  ctx.strokeStyle = s.color;
  ctx.lineWidth = 8;
  ctx.beginPath();
  ctx.arc(s.boundary.center.x, s.boundary.center.y, s.boundary.radius + 4, 0, 2 * Math.PI);
  ctx.stroke();
  ctx.lineWidth = 2;
  for (const m of s.markers) {
    ctx.beginPath();
    ctx.moveTo(m.x, m.y);
    ctx.lineTo(s.ball.center.x, s.ball.center.y);
    ctx.stroke();
  }
  for (const o of s.overlays || []) {
    ctx.fillStyle = o.color || '#fff';
    ctx.font = (o.size || 24) + 'px ' + (o.font || 'sans-serif');
    ctx.textAlign = 'center';
    ctx.fillText(o.text, o.x, o.y);
  }
  ctx.fillStyle = '#fff';
  ctx.font = '48px sans-serif';
  ctx.textAlign = 'center';
  ctx.fillText(s.elapsed.toFixed(2), s.boundary.center.x, s.boundary.center.y + s.boundary.radius + 80);
  ctx.fillStyle = s.color;
  s.trail.forEach((p, i) => {
    ctx.globalAlpha = (i + 1) / Math.max(s.trail.length, 1);
    ctx.beginPath();
    ctx.arc(p.x, p.y, s.ball.radius, 0, 2 * Math.PI);
    ctx.fill();
  });
  ctx.globalAlpha = 1;
  ctx.beginPath();
  ctx.arc(s.ball.center.x, s.ball.center.y, s.ball.radius, 0, 2 * Math.PI);
  ctx.fill();
}

function panel(s) {
  document.getElementById('status').textContent = s.state + (s.recording ? '  REC' : '');
  document.getElementById('stats').innerHTML =
    'frame ' + s.frame + '<br>collisions ' + s.collisions + '<br>radius ' + s.ball.radius.toFixed(2);
  const box = document.getElementById('params');
  for (const [k, v] of Object.entries(s.params)) {
    let el = document.getElementById('p-' + k);
    if (!el) {
      const l = document.createElement('label');
      l.textContent = k;
      el = document.createElement('input');
      el.id = 'p-' + k;
      el.type = 'number';
      el.step = '0.001';
      el.onchange = () => fetch('/api/v1/params/' + k, { method: 'PUT', body: JSON.stringify({ value: parseFloat(el.value) }) });
      l.appendChild(el);
      box.appendChild(l);
    }
    if (document.activeElement !== el) el.value = v.toFixed(4);
  }
}

ws.onmessage = (ev) => {
  const m = JSON.parse(ev.data);
  if (m.type === 'state') { last = m.data; draw(last); panel(last); }
  if (m.type === 'recording') document.getElementById('log').textContent = JSON.stringify(m.data);
  if (m.type === 'error') document.getElementById('log').textContent = m.data.message;
};
ws.onopen = () => fetch('/api/v1/state').then(r => r.json()).then(s => { draw(s); panel(s); });

view.onpointerdown = (ev) => { view.setPointerCapture(ev.pointerId); send('mouse_down', toWorld(ev)); };
view.onpointermove = (ev) => { if (last && last.dragging) send('mouse_move', toWorld(ev)); };
view.onpointerup = () => send('mouse_up');
document.querySelectorAll('[data-cmd]').forEach(b => b.onclick = () => send(b.dataset.cmd));
document.getElementById('rec').onclick = () => {
  const path = last && last.recording ? 'stop' : 'start';
  fetch('/api/v1/recording/' + path, { method: 'POST' });
};
</script>
</body>
</html>
`
