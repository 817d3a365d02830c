/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/julienschmidt/httprouter"
	"github.com/shirou/gopsutil/v3/disk"
)

const appJS = `(function () {
  const body = document.body;
  const pre = document.getElementById("report");
  const refresh = Number(body.dataset.refresh || 0);
  if (!pre || refresh <= 0) {
    return;
  }

  const scheme = location.protocol === "https:" ? "wss://" : "ws://";
  const ws = new WebSocket(scheme + location.host + body.dataset.ws);

  ws.onmessage = function (event) {
    const msg = JSON.parse(event.data);
    if (msg.type === "report") {
      pre.textContent = [msg.header].concat(msg.lines).join("\n");
    } else if (msg.type === "error") {
      pre.textContent = "Error: " + msg.message;
    }
  };
})();
`

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<meta charset="utf-8">`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", html.EscapeString(title)))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", html.EscapeString(body)))

	return htmlBody.String()
}

// filesystemSummary describes the filesystem holding target, or returns an
// empty string when it cannot be read.
func filesystemSummary(ctx context.Context, target string) string {
	stat, err := disk.UsageWithContext(ctx, target)
	if err != nil || stat.Total == 0 {
		return ""
	}

	return fmt.Sprintf("Filesystem %s: %s of %s used (%.1f%%), %s free",
		stat.Path,
		humanize.IBytes(stat.Used),
		humanize.IBytes(stat.Total),
		stat.UsedPercent,
		humanize.IBytes(stat.Free),
	)
}

func reportPage(cfg *Config, report *Report, fs string) string {
	var b strings.Builder

	title := "Disk Usage for " + report.Target

	b.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	b.WriteString(`<meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString(fmt.Sprintf("<title>%s</title>", html.EscapeString(title)))
	b.WriteString(fmt.Sprintf(`<script src="%s/app.js" defer></script>`, cfg.prefix))
	b.WriteString(`</head>`)
	b.WriteString(fmt.Sprintf(`<body data-refresh="%d" data-ws="%s/ws">`,
		cfg.refresh.Milliseconds(), cfg.prefix))
	b.WriteString(fmt.Sprintf("<h1>%s</h1>", html.EscapeString(title)))
	b.WriteString(fmt.Sprintf(`<pre id="report">%s</pre>`, html.EscapeString(strings.Join(report.Lines(), "\n"))))
	if fs != "" {
		b.WriteString(fmt.Sprintf("<p>%s</p>", html.EscapeString(fs)))
	}
	b.WriteString(fmt.Sprintf(`<p><a href="%s/report.txt">Plain text</a></p>`, cfg.prefix))
	b.WriteString(fmt.Sprintf(`<img src="%s/qr" alt="QR code for this page" width="160" height="160">`, cfg.prefix))
	b.WriteString(`</body></html>`)

	return b.String()
}

func serveReportPage(cfg *Config, sc Scanner, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		ctx, cancel := cfg.scanContext(r.Context())
		defer cancel()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		report, err := generateReport(ctx, cfg, sc)
		if err != nil {
			logf(cfg, "ERROR: Report page for %s failed: %v", realIP(r), err)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(newPage("Scan Failed", err.Error())))

			return
		}

		written, err := w.Write([]byte(reportPage(cfg, report, filesystemSummary(ctx, cfg.target))))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Report page (%s) to %s in %s",
			formatSize(int64(written), true),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveScript(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Length", strconv.Itoa(len(appJS)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(appJS))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := "User-agent: *\nDisallow: /\n"

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
