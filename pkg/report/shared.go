package report

import "linkguard/internal/models"

const (
	TitleDomainSSL = "Domain & SSL"
	TitleDomainIP  = "Domain & IP"
)

var domainGroup = Group{
	ID:    "domain",
	Title: TitleDomainIP,
	Icon:  "file-lock",
	Fields: []Field{
		{Label: "IP Address", Path: "ip_address"},
		{Label: "SSL Valid", Path: "ssl_valid"},
		{Label: "SSL Issuer", Path: "ssl_info.issuer.commonName"},
		{Label: "Registrar", Path: "whois_info.registrar"},
		{Label: "Domain Creation", Path: "whois_info.creation_date", Transform: dateTransform},
		{Label: "Domain Expiration", Path: "whois_info.expiration_date", Transform: dateTransform},
	},
}

var ipReputationGroup = Group{
	ID:          "ip-reputation",
	Title:       "IP Reputation",
	Icon:        "shield",
	RequirePath: "abuseipdb.abuse_confidence_score",
	Fields: []Field{
		{Label: "AbuseIPDB Score", Path: "abuseipdb.abuse_confidence_score", Transform: percentTransform},
		{Label: "Total Reports", Path: "abuseipdb.total_reports"},
		{Label: "Country", Path: "abuseipdb.country_code"},
	},
}

var lexicalGroup = Group{
	ID:          "lexical",
	Title:       "Lexical Analysis",
	Icon:        "hash",
	RequirePath: "lexical_analysis",
	Fields: []Field{
		{Label: "URL Length", Path: "lexical_analysis.url_length"},
		{Label: "Hostname Length", Path: "lexical_analysis.hostname_length"},
		{Label: "Dot Count", Path: "lexical_analysis.dot_count"},
		{Label: "Has IP in Hostname", Path: "lexical_analysis.has_ip_in_hostname"},
	},
}

// SharedCards builds the cards common to every protocol from whichever
// optional sub-objects are present in d.
func SharedCards(d models.Details, opts Options) []*Card {
	domain := domainGroup
	if hasSSL(d) {
		domain.Title = TitleDomainSSL
	}

	cards := []*Card{domain.Build(d, opts)}
	for _, g := range []Group{ipReputationGroup, lexicalGroup} {
		if c := g.Build(d, opts); c != nil {
			cards = append(cards, c)
		}
	}
	return cards
}

func hasSSL(d models.Details) bool {
	if _, ok := d.Lookup("ssl_valid"); ok {
		return true
	}
	return d.Has("ssl_info")
}
