package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultCookieName is the session cookie read when none is configured.
// The backend's SSR helpers name it sb-<project-ref>-auth-token; set
// auth.cookie_name to that when the UI uses them.
const DefaultCookieName = "sb-access-token"

// ExtractToken extracts the access token from r.
//
// Checks in order:
//  1. Authorization header (Bearer token)
//  2. Session cookie named cookieName, or its numbered chunks
//
// Query parameters are never consulted. Returns "" if no token is found.
func ExtractToken(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}

	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	value := sessionCookie(r, cookieName)
	if value == "" {
		return ""
	}
	return tokenFromCookie(value)
}

// sessionCookie returns the raw value of the cookie called name. Sessions too
// large for one cookie are written as name.0, name.1, ... and are joined in
// order when name itself is absent.
//
// The Cookie header is parsed here rather than with r.Cookie: net/http drops
// values containing '"', which rules out a JSON session written unencoded.
func sessionCookie(r *http.Request, name string) string {
	cookies := rawCookies(r)
	if v, ok := cookies[name]; ok {
		return v
	}

	var b strings.Builder
	for i := 0; ; i++ {
		chunk, ok := cookies[name+"."+strconv.Itoa(i)]
		if !ok {
			break
		}
		b.WriteString(chunk)
	}
	return b.String()
}

func rawCookies(r *http.Request) map[string]string {
	cookies := map[string]string{}
	for _, line := range r.Header.Values("Cookie") {
		for _, part := range strings.Split(line, ";") {
			name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
			if !ok || name == "" {
				continue
			}
			if _, seen := cookies[name]; !seen {
				cookies[name] = value
			}
		}
	}
	return cookies
}

// tokenFromCookie accepts a bare token, a JSON session object with an
// access_token field (raw or URL-encoded), or that object base64 encoded
// behind a "base64-" prefix as written by the backend's server-side helpers.
func tokenFromCookie(value string) string {
	if len(value) > 1 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	// PathUnescape leaves '+' alone, which standard base64 uses.
	if unescaped, err := url.PathUnescape(value); err == nil {
		value = unescaped
	}

	if rest, ok := strings.CutPrefix(value, "base64-"); ok {
		decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(rest, "="))
		if err != nil {
			decoded, err = base64.StdEncoding.DecodeString(rest)
			if err != nil {
				return ""
			}
		}
		value = string(decoded)
	}

	if !strings.HasPrefix(value, "{") {
		return value
	}

	var session struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal([]byte(value), &session); err != nil {
		return ""
	}
	return session.AccessToken
}
