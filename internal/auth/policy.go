package auth

import "strings"

// Policy is the admin allow-list. It is built once at startup and never
// changes afterwards.
type Policy struct {
	allowed map[string]struct{}
}

func NewPolicy(emails []string) *Policy {
	allowed := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			allowed[e] = struct{}{}
		}
	}
	return &Policy{allowed: allowed}
}

func (p *Policy) IsAllowedAdmin(email string) bool {
	email = normalizeEmail(email)
	if email == "" {
		return false
	}
	_, ok := p.allowed[email]
	return ok
}

func (p *Policy) Len() int { return len(p.allowed) }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
