package model

// Link is a registered short name pointing at a target URL.
// Name is globally unique across all records; links carry no owner, so
// authorization to write one is derived from the caller's prefix grants
// at registration time, never stored here.
type Link struct {
	Name      string `db:"name"       json:"name"`
	TargetURL string `db:"target_url" json:"target_url"`
}

// PrefixGrant permits a user to register names beginning with Prefix.
// An empty prefix is a wildcard granting access to any name. Grants are
// administered out of band and read-only from the service's perspective.
type PrefixGrant struct {
	UserID string `db:"user_id" json:"user_id"`
	Prefix string `db:"prefix"  json:"prefix"`
}

// Allows reports whether this grant authorizes the given name.
// Matching is a byte-wise prefix comparison; the zero-length prefix
// matches everything.
func (g PrefixGrant) Allows(name string) bool {
	if len(g.Prefix) == 0 {
		return true
	}
	return len(name) >= len(g.Prefix) && name[:len(g.Prefix)] == g.Prefix
}
