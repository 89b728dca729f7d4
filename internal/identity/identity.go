package identity

import (
	"strings"

	"postlift/domain/core"
)

// separators that commonly break up the same identity across platforms,
// e.g. handle "mia.skin" vs mailbox "mia_skin" or "miaskin".
const separators = "._-"

// Matcher judges whether a customer email plausibly belongs to one of the
// campaign's influencer accounts. Orders an influencer places in their own
// campaign would otherwise count as attributed revenue.
type Matcher struct {
	normalized map[string]core.Username
}

// NewMatcher builds a matcher over the given handles
func NewMatcher(usernames []core.Username) *Matcher {
	m := &Matcher{normalized: make(map[string]core.Username, len(usernames))}
	for _, u := range usernames {
		key := normalize(u.String())
		if key != "" {
			m.normalized[key] = u
		}
	}
	return m
}

// Match returns the owning influencer for an email's mailbox, if any.
// Comparison is on separator-stripped lowercase forms; "Mia.Skin@gmail.com"
// matches the handle "@mia_skin".
func (m *Matcher) Match(email string) (core.Username, bool) {
	mailbox := mailboxOf(email)
	if mailbox == "" {
		return "", false
	}
	username, ok := m.normalized[normalize(mailbox)]
	return username, ok
}

func mailboxOf(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return ""
	}
	mailbox := email[:at]
	// Strip plus-addressing: mia+promo@... is still mia.
	if plus := strings.IndexByte(mailbox, '+'); plus > 0 {
		mailbox = mailbox[:plus]
	}
	return mailbox
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(separators, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
