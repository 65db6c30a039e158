package handler

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

const defaultPageTTL = "1200"

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8" /><title>Media API</title></head>
<body style="padding:24px;font-family:sans-serif">
  <h1>Signed media link API</h1>
  <p>API route:</p>
  <pre><code>/links?key=path/to/file.mp4&amp;ttl=600</code></pre>
  <p>Catalog: <code>GET /catalog/reels</code>, <code>GET /catalog/stories?category=news</code></p>
  <p>Try it on the <a href="/test">test page</a> or browse the <a href="/swagger/index.html">API docs</a>.</p>
</body>
</html>
`))

var testTmpl = template.Must(template.New("test").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8" /><title>Test signed link</title></head>
<body style="padding:24px;font-family:Inter,system-ui,sans-serif;max-width:960px">
  <h1>Test signed link</h1>
  <form id="link-form" style="display:grid;gap:12px;max-width:640px">
    <label>Object key
      <input id="key" name="key" value="{{.Key}}" placeholder="path/to/file.mp4" style="display:block;width:100%;padding:8px;margin-top:6px" />
    </label>
    <label>TTL (seconds)
      <input id="ttl" name="ttl" value="{{.TTL}}" placeholder="3600" style="display:block;width:200px;padding:8px;margin-top:6px" />
    </label>
    <button id="submit" type="submit" style="padding:10px 16px;width:160px">Get URL</button>
  </form>
  <p id="error" style="color:#b00020;margin-top:12px" hidden></p>
  <section id="result" style="margin-top:24px" hidden>
    <h2>Signed URL</h2>
    <p style="word-break:break-all"><a id="url" target="_blank" rel="noreferrer"></a></p>
    <h3>Preview</h3>
    <video id="preview" controls style="width:100%;max-width:640px;background:#000"></video>
  </section>
  <script>
    const form = document.getElementById("link-form");
    const button = document.getElementById("submit");
    const errorBox = document.getElementById("error");
    const result = document.getElementById("result");

    async function fetchUrl() {
      const key = document.getElementById("key").value;
      const ttl = document.getElementById("ttl").value;
      errorBox.hidden = true;
      result.hidden = true;
      if (!key) {
        errorBox.textContent = "Error: Please enter an object key";
        errorBox.hidden = false;
        return;
      }
      const q = new URLSearchParams({ key });
      if (ttl) q.set("ttl", ttl);
      button.disabled = true;
      button.textContent = "Generating...";
      try {
        const res = await fetch("/links?" + q.toString(), { cache: "no-store" });
        const data = await res.json();
        if (!res.ok) throw new Error(data.message || data.error || "Request failed");
        const link = document.getElementById("url");
        link.href = data.url;
        link.textContent = data.url;
        document.getElementById("preview").src = data.url;
        result.hidden = false;
      } catch (e) {
        errorBox.textContent = "Error: " + e.message;
        errorBox.hidden = false;
      } finally {
        button.disabled = false;
        button.textContent = "Get URL";
      }
    }

    form.addEventListener("submit", (e) => { e.preventDefault(); fetchUrl(); });
    {{if .Key}}fetchUrl();{{end}}
  </script>
</body>
</html>
`))

type testPageData struct {
	Key string
	TTL string
}

// IndexPage serves the landing page.
func IndexPage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return renderHTML(c, indexTmpl, nil)
	}
}

// TestPage serves a form that requests a link and previews the video.
// A key in the query string pre-fills the form and runs it on load.
func TestPage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return renderHTML(c, testTmpl, testPageData{
			Key: c.Query("key"),
			TTL: c.Query("ttl", defaultPageTTL),
		})
	}
}

func renderHTML(c *fiber.Ctx, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
