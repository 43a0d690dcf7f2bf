package board

import (
	"net/url"
	"strings"
)

// ResolveFactoryCode picks the factory code for a dashboard request:
// query parameter factoryCode, then its all-lowercase spelling, then the
// configured fallback. First non-empty trimmed value wins.
func ResolveFactoryCode(query url.Values, fallback string) string {
	if v := strings.TrimSpace(query.Get("factoryCode")); v != "" {
		return v
	}
	for key, vals := range query {
		if !strings.EqualFold(key, "factorycode") || len(vals) == 0 {
			continue
		}
		if v := strings.TrimSpace(vals[0]); v != "" {
			return v
		}
	}
	return strings.TrimSpace(fallback)
}
