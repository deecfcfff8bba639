package report

import (
	"fmt"

	"linkguard/internal/models"
)

// View builds the report for one protocol.
type View interface {
	Name() string
	Build(result *models.ScanResult, opts Options) *Report
}

var views = map[models.Protocol]View{
	models.ProtocolHTTP: protocolView{
		name: "http",
		groups: []Group{
			{
				ID:    "reputation",
				Title: "Reputation",
				Icon:  "shield",
				Fields: []Field{
					{Label: "Google Safe Browsing", Path: "google_safe_browsing"},
					{Label: "VirusTotal", Path: "virustotal"},
					{Label: "UrlScan.io Report", Path: "urlscan.result_url", Link: true},
				},
			},
			{
				ID:    "content",
				Title: "Content Analysis",
				Icon:  "scan-text",
				Fields: []Field{
					{Label: "Reachable", Path: "is_reachable"},
					{Label: "Has iFrame", Path: "page_content_analysis.has_iframe"},
					{Label: "Password Field in Form", Path: "page_content_analysis.has_form_with_password"},
					{Label: "External Links", Path: "page_content_analysis.external_links"},
				},
			},
		},
	},
	models.ProtocolFTP: protocolView{
		name: "ftp",
		groups: []Group{
			{
				ID:    "ftp-server",
				Title: "FTP Server Details",
				Icon:  "server",
				Fields: []Field{
					{Label: "Reachable", Path: "is_reachable"},
					{Label: "Anonymous Login", Path: "anonymous_login_allowed"},
					{Label: "Welcome Message", Path: "welcome_message"},
					{Label: "Root File Count", Path: "directory_listing_count"},
				},
			},
		},
	},
	models.ProtocolSSH: protocolView{
		name: "ssh",
		groups: []Group{
			{
				ID:    "ssh-server",
				Title: "SSH Server Details",
				Icon:  "terminal",
				Fields: []Field{
					{Label: "Reachable", Path: "is_reachable"},
					{Label: "Server Banner", Path: "server_banner"},
					{Label: "Host Key Type", Path: "host_key_type"},
					{Label: "Key Fingerprint", Path: "host_key_fingerprint"},
				},
			},
		},
	},
}

// Dispatch returns the view for p. It never fails: unknown and empty
// protocols get the unsupported view.
func Dispatch(p models.Protocol) View {
	if v, ok := views[p]; ok {
		return v
	}
	return unsupportedView{protocol: string(p)}
}

// Protocols lists the protocols with a dedicated view.
func Protocols() []models.Protocol {
	return []models.Protocol{models.ProtocolHTTP, models.ProtocolFTP, models.ProtocolSSH}
}

// protocolView renders its own groups followed by the shared cards.
type protocolView struct {
	name   string
	groups []Group
}

func (v protocolView) Name() string { return v.name }

func (v protocolView) Build(result *models.ScanResult, opts Options) *Report {
	r := &Report{
		View:      v.name,
		Protocol:  string(result.Protocol),
		Supported: true,
		Header:    NewHeader(result),
	}
	for _, g := range v.groups {
		if c := g.Build(result.Details, opts); c != nil {
			r.Cards = append(r.Cards, c)
		}
	}
	r.Cards = append(r.Cards, SharedCards(result.Details, opts)...)
	return r
}

type unsupportedView struct {
	protocol string
}

func (v unsupportedView) Name() string { return "unsupported" }

func (v unsupportedView) Build(_ *models.ScanResult, _ Options) *Report {
	return &Report{
		View:     v.Name(),
		Protocol: v.protocol,
		Message:  UnsupportedMessage(v.protocol),
		Cards:    []*Card{},
	}
}

func UnsupportedMessage(protocol string) string {
	return fmt.Sprintf("The analysis returned an unknown protocol type: '%s'", protocol)
}
