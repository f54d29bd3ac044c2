package entity

import "strings"

// AdminAllowList is the set of email addresses with admin privileges.
// Comparison is case-insensitive.
type AdminAllowList struct {
	emails map[string]struct{}
}

func NewAdminAllowList(emails []string) *AdminAllowList {
	l := &AdminAllowList{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			l.emails[e] = struct{}{}
		}
	}
	return l
}

func (l *AdminAllowList) Contains(email string) bool {
	if l == nil {
		return false
	}
	_, ok := l.emails[normalizeEmail(email)]
	return ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
