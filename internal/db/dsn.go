package db

import (
	"net/url"
	"strings"
)

// managedPoolerSuffixes are hosts fronted by an external transaction pooler
var managedPoolerSuffixes = []string{
	".supabase.co",
	".pooler.supabase.com",
}

// DSN is a normalized connection string and the pool shape it implies
type DSN struct {
	URL string
	// Pooled marks a managed host behind a transaction pooler: prepared
	// statements are disabled and the local pool is capped at one connection.
	Pooled bool
}

// NormalizeURL enforces TLS on postgres URLs and adds pooler hints for managed
// providers. Input that does not parse, or is not a postgres URL, is returned unchanged.
func NormalizeURL(raw string) DSN {
	if raw == "" {
		return DSN{URL: raw}
	}

	u, err := url.Parse(raw)
	if err != nil || !strings.HasPrefix(u.Scheme, "postgres") {
		return DSN{URL: raw}
	}

	params := u.Query()
	if !params.Has("sslmode") {
		params.Set("sslmode", "require")
	}

	pooled := isManagedPooler(u.Hostname())
	if pooled && !params.Has("default_query_exec_mode") {
		params.Set("default_query_exec_mode", "simple_protocol")
	}

	u.RawQuery = params.Encode()
	return DSN{URL: u.String(), Pooled: pooled}
}

func isManagedPooler(host string) bool {
	host = strings.ToLower(host)
	for _, suffix := range managedPoolerSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}
