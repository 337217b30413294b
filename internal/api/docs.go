package api

const docsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="referrer" content="same-origin" />
  <meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no" />
  <title>Tab Shell API</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
</head>
<body style="height: 100vh; margin: 0; position: relative;">
  <a href="/docs/events" style="position: fixed; top: 12px; right: 16px; z-index: 9999; color: #58a6ff; font-family: sans-serif; font-size: 12px;">Event Stream Docs</a>
  <elements-api
    apiDescriptionUrl="/openapi.json"
    router="hash"
    layout="sidebar"
    tryItCredentialsPolicy="same-origin"
    darkMode
  />
</body>
</html>`

const eventsDocsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <title>Tab Shell Events</title>
  <style>
    body { margin: 0 auto; max-width: 760px; padding: 24px; font-family: sans-serif; background: #0d1117; color: #c9d1d9; }
    code, pre { background: #161b22; border-radius: 4px; padding: 2px 6px; }
    pre { padding: 12px; overflow-x: auto; }
    a { color: #58a6ff; }
  </style>
</head>
<body>
  <p><a href="/docs">API reference</a></p>
  <h1>Event stream</h1>
  <p>Shell events are pushed over Server-Sent Events at <code>GET /events</code> and over a WebSocket at
  <code>GET /ws</code>. SSE uses the feed name as the event type and the JSON payload as data:</p>
  <pre>event: refresh
data: {"refreshing":false,"tab_id":"...","reason":"timeout"}</pre>
  <p>WebSocket clients receive one text frame per event, with the payload as an encoded JSON string:</p>
  <pre>{"feed":"refresh","payload":"{\"refreshing\":false,\"tab_id\":\"...\",\"reason\":\"timeout\"}"}</pre>
  <h2>Feeds</h2>
  <ul>
    <li><code>tabs</code>: the tab list and active index after every change.</li>
    <li><code>refresh</code>: pull to refresh indicator. Cleared once per cycle with reason
      <code>load</code>, <code>timeout</code>, <code>error</code>, <code>remount</code> or <code>shutdown</code>.</li>
    <li><code>directive</code>: every load, history and reload directive sent to the render surface.</li>
  </ul>
  <p>Filter with <code>?feeds=tabs,refresh</code> on either endpoint. Slow clients drop events rather than
  block the shell.</p>
</body>
</html>`
