// internal/validate/validate.go
//
// Syntax and policy checks for user-supplied names.
//
// Context
// -------
// Every provisioning workflow starts by validating the identifier the user
// asked for: a subdomain label, a redirect path segment, a target URL, or a
// GitHub owner/repository pair.  These helpers are pure functions with no
// side effects, so the orchestrator may call them in any order and reject
// bad input before a single byte touches disk or the DNS provider.
//
// Each function returns (ok, reason); reason is empty when ok is true and a
// human-readable message otherwise.  The messages are surfaced verbatim to
// API clients, so keep them short and declarative.
//
// Notes
// -----
//   - Reserved subdomains are a fixed lowercase set; the check lowercases
//     the candidate first, so "API" and "api" are equally rejected.
//   - Oxford commas, two spaces after periods.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	subdomainRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)
	redirectRe  = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	repoOwnerRe = regexp.MustCompile(`^[a-zA-Z0-9][-a-zA-Z0-9]*$`)
	repoNameRe  = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// reserved holds subdomain labels the platform keeps for itself.
var reserved = map[string]struct{}{
	"www":       {},
	"mail":      {},
	"ftp":       {},
	"admin":     {},
	"webmail":   {},
	"dashboard": {},
	"api":       {},
}

// Subdomain checks a DNS label: 1-63 chars, alphanumeric with interior
// hyphens, and not one of the reserved platform names.
func Subdomain(s string) (bool, string) {
	if len(s) < 1 || len(s) > 63 {
		return false, "Subdomain must be between 1 and 63 characters"
	}
	if !subdomainRe.MatchString(s) {
		return false, "Subdomain can only contain letters, numbers, and hyphens, and cannot start or end with a hyphen"
	}
	if _, taken := reserved[strings.ToLower(s)]; taken {
		return false, fmt.Sprintf("'%s' is a reserved name and cannot be used", s)
	}
	return true, ""
}

// RedirectName checks a short-link path segment: 1-50 chars, letters,
// digits, and hyphens only.
func RedirectName(s string) (bool, string) {
	if len(s) < 1 || len(s) > 50 {
		return false, "Redirect name must be between 1 and 50 characters"
	}
	if !redirectRe.MatchString(s) {
		return false, "Name can only contain letters, numbers, and hyphens"
	}
	return true, ""
}

// URL checks a redirect target: must parse, must carry both a scheme and a
// host, and the scheme must be http or https.
func URL(raw string) (bool, string) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false, "Invalid URL format"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false, "URL must use http or https protocol"
	}
	return true, ""
}

// RepoOwner checks a GitHub account handle: 1-39 chars, starts with an
// alphanumeric, remainder alphanumeric or hyphen.
func RepoOwner(s string) (bool, string) {
	if len(s) < 1 || len(s) > 39 {
		return false, "GitHub username must be between 1 and 39 characters"
	}
	if !repoOwnerRe.MatchString(s) {
		return false, "Invalid GitHub username format"
	}
	return true, ""
}

// RepoName checks a GitHub repository name: 1-100 chars, letters, digits,
// period, hyphen, and underscore.
func RepoName(s string) (bool, string) {
	if len(s) < 1 || len(s) > 100 {
		return false, "Repository name must be between 1 and 100 characters"
	}
	if !repoNameRe.MatchString(s) {
		return false, "Invalid repository name format"
	}
	return true, ""
}
