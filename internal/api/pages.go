package api

var indexPage = []byte(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Sensor relay</title>
</head>
<body>
<h1>Sensor relay</h1>
<p>POST a JSON object to <code>/</code> with any of
<code>temperature</code>, <code>humidity</code>, <code>location</code> and
<code>outside_temp</code>. Send <code>Content-Type: application/cbor</code> for CBOR bodies.</p>
<p>GET <a href="/location"><code>/location</code></a> returns the server's approximate city.</p>
<form id="reading">
<label>Temperature (°C) <input name="temperature" type="number" step="any"></label><br>
<label>Humidity (%) <input name="humidity" type="number" step="any"></label><br>
<label>Location <input name="location"></label><br>
<label>Outside temperature (°C) <input name="outside_temp" type="number" step="any"></label><br>
<button type="submit">Send POST</button>
</form>
<pre id="result"></pre>
<script>
document.getElementById("reading").addEventListener("submit", async (e) => {
  e.preventDefault();
  const reading = {};
  for (const [k, v] of new FormData(e.target)) {
    if (v === "") continue;
    reading[k] = k === "location" ? v : Number(v);
  }
  const res = await fetch("/", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify(reading),
  });
  document.getElementById("result").textContent = await res.text();
});
</script>
</body>
</html>
`)
