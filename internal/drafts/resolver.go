package drafts

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

const imapsPort = "993"

// IMAP hosts of common providers, keyed by mail domain
var knownIMAPHosts = map[string]string{
	"gmail.com":      "imap.gmail.com",
	"googlemail.com": "imap.gmail.com",
	"outlook.com":    "outlook.office365.com",
	"hotmail.com":    "outlook.office365.com",
	"live.com":       "outlook.office365.com",
	"yahoo.com":      "imap.mail.yahoo.com",
	"icloud.com":     "imap.mail.me.com",
	"me.com":         "imap.mail.me.com",
	"aol.com":        "imap.aol.com",
	"zoho.com":       "imap.zoho.com",
	"fastmail.com":   "imap.fastmail.com",
	"gmx.com":        "imap.gmx.com",
	"yandex.com":     "imap.yandex.com",
}

// Resolver finds the IMAP server for a mailbox address
type Resolver struct {
	probe    func(ctx context.Context, hostport string) bool
	lookupMX func(ctx context.Context, domain string) ([]*net.MX, error)
}

// NewResolver creates a resolver that probes hosts over TCP and consults MX records
func NewResolver() *Resolver {
	return &Resolver{
		probe: func(ctx context.Context, hostport string) bool {
			d := net.Dialer{Timeout: 3 * time.Second}
			conn, err := d.DialContext(ctx, "tcp", hostport)
			if err != nil {
				return false
			}
			conn.Close()
			return true
		},
		lookupMX: net.DefaultResolver.LookupMX,
	}
}

// Resolve returns host:port of the IMAP server for email
func (r *Resolver) Resolve(ctx context.Context, email string) (string, error) {
	domain := domainOf(email)
	if domain == "" {
		return "", fmt.Errorf("invalid email format: %q", email)
	}

	if host, ok := knownIMAPHosts[domain]; ok {
		return net.JoinHostPort(host, imapsPort), nil
	}

	for _, host := range []string{"imap." + domain, "mail." + domain, domain} {
		if addr := net.JoinHostPort(host, imapsPort); r.probe(ctx, addr) {
			return addr, nil
		}
	}

	if addr, ok := r.fromMX(ctx, domain); ok {
		return addr, nil
	}

	return net.JoinHostPort("imap."+domain, imapsPort), nil
}

// fromMX derives imap./mail. hosts from the primary MX record's parent domain
func (r *Resolver) fromMX(ctx context.Context, domain string) (string, bool) {
	records, err := r.lookupMX(ctx, domain)
	if err != nil || len(records) == 0 {
		return "", false
	}

	mxHost := strings.TrimSuffix(records[0].Host, ".")
	_, parent, found := strings.Cut(mxHost, ".")
	if !found {
		return "", false
	}

	for _, host := range []string{"imap." + parent, "mail." + parent} {
		if addr := net.JoinHostPort(host, imapsPort); r.probe(ctx, addr) {
			return addr, true
		}
	}
	return "", false
}

func domainOf(email string) string {
	local, domain, found := strings.Cut(strings.TrimSpace(email), "@")
	if !found || local == "" || domain == "" || strings.Contains(domain, "@") {
		return ""
	}
	return strings.ToLower(domain)
}
