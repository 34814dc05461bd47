package upstream

import (
	"net/url"
	"strings"
)

// FilterQuery keeps the accepted filters of a listing request, renamed to the upstream
// parameter names. Empty values are dropped.
func FilterQuery(filters url.Values, accepted []string, renames map[string]string) url.Values {
	query := url.Values{}
	for _, name := range accepted {
		for _, value := range filters[name] {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			key := name
			if renamed, ok := renames[name]; ok {
				key = renamed
			}
			query.Add(key, value)
		}
	}
	return query
}
