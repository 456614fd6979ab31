package store

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/matzehuels/transitgit/pkg/errors"
	"github.com/matzehuels/transitgit/pkg/transit"
)

// BranchName derives a git-safe branch name from a route. Whitespace and
// characters git forbids in refs become "-". Slashes are replaced too so two
// routes can never collide as file and directory under refs/heads.
// An unusable name falls back to the route ID, then to "route".
func BranchName(r transit.Route) string {
	for _, candidate := range []string{r.Name, r.ID} {
		if name := sanitize(candidate); errors.ValidateBranchName(name) == nil {
			return name
		}
	}
	return "route"
}

func sanitize(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(s) {
		bad := unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(`~^:?*[\/@{}`, r)
		if bad {
			if !dash {
				b.WriteByte('-')
				dash = true
			}
			continue
		}
		b.WriteRune(r)
		dash = false
	}

	name := b.String()
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	name = strings.TrimSuffix(name, ".lock")
	return strings.Trim(name, "-.")
}

// AssignBranches gives every route a unique branch name. Routes are handled
// in the given order; a name already taken gets the route ID appended.
func AssignBranches(routes []transit.Route) map[string]string {
	used := make(map[string]bool, len(routes))
	out := make(map[string]string, len(routes))
	for _, r := range routes {
		name := BranchName(r)
		if used[name] {
			name = name + "-" + sanitizeOr(r.ID, "route")
		}
		base := name
		for i := 2; used[name]; i++ {
			name = base + "-" + strconv.Itoa(i)
		}
		used[name] = true
		out[r.ID] = name
	}
	return out
}

func sanitizeOr(s, fallback string) string {
	if name := sanitize(s); name != "" {
		return name
	}
	return fallback
}
