// internal/pages/redirect.go
//
// Generated redirect artifacts.
//
// Context
// -------
// Every Redirect row owns exactly one static HTML page at
// <dir>/<name>.html.  An external file server serves the page at
// https://<domain>/<name>; this package only writes and removes it.  The
// meta-refresh page is the entire redirect mechanism, so the file must
// exist iff the row exists; the orchestrator enforces that pairing.
//
// html/template escapes the target URL, so a hostile target cannot break
// out of the href or the refresh header.
package pages

import (
	"html/template"
	"os"
	"path/filepath"
)

var redirectTpl = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta http-equiv="refresh" content="0; url={{.Target}}">
    <title>Redirecting to {{.Target}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; margin: 0; padding: 20px; text-align: center; }
        .container { max-width: 600px; margin: 0 auto; padding: 40px 20px; }
        h1 { color: #333; }
        p { color: #666; }
        a { color: #0066cc; text-decoration: none; }
        a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Redirecting...</h1>
        <p>You are being redirected to: <br><a href="{{.Target}}">{{.Target}}</a></p>
        <p>If you are not redirected automatically, please click the link above.</p>
        <p><small>Powered by <a href="https://{{.Domain}}">Sriox</a></small></p>
    </div>
</body>
</html>
`))

// Writer renders redirect pages under a fixed directory.
type Writer struct {
	dir    string
	domain string
}

// NewWriter returns a Writer rooted at dir, creating it if absent.  domain
// is the platform apex used in the page footer.
func NewWriter(dir, domain string) (*Writer, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Writer{dir: abs, domain: domain}, nil
}

// Path returns the absolute file path for a redirect name.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name+".html")
}

// Write renders the page for name pointing at target, replacing any
// previous file.
func (w *Writer) Write(name, target string) error {
	f, err := os.OpenFile(w.Path(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	data := struct{ Target, Domain string }{Target: target, Domain: w.domain}
	if err := redirectTpl.Execute(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Remove deletes the page for name.  A missing file is not an error; the
// delete path is best-effort by design.
func (w *Writer) Remove(name string) error {
	err := os.Remove(w.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
