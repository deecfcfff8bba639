// Package templates holds the templ components of the web UI. The
// *_templ.go files are produced by `templ generate` from the .templ sources.
package templates

import (
	"context"
	"embed"
	"io/fs"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"linkguard/internal/services"
	"linkguard/pkg/report"
)

//go:embed static
var staticFiles embed.FS

// Static returns the assets served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func refreshInterval(snap services.Snapshot) int {
	if snap.State == services.StateScanning {
		return 2
	}
	return 0
}

func unsupportedMessage(rep *report.Report) string {
	if rep == nil || rep.Message == "" {
		return report.UnsupportedMessage("")
	}
	return rep.Message
}

func svgNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Render writes c to a string; used by tests and callers without a writer.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
