package ws

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/DoyleJ11/hex-tactics-backend/internal/types"
)

// InviteBase returns configured without trailing slashes, or the origin the
// request reached us on.
func InviteBase(r *http.Request, configured string) string {
	if base := strings.TrimRight(configured, "/"); base != "" {
		return base
	}
	proto := "http"
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		proto = strings.TrimSpace(strings.Split(fwd, ",")[0])
	} else if r.TLS != nil {
		proto = "https"
	}
	return proto + "://" + r.Host
}

func InviteLinks(base, code string, tokens [2]string) types.InviteLinks {
	link := func(token string) string {
		return base + "/?room=" + url.QueryEscape(code) + "&token=" + url.QueryEscape(token)
	}
	return types.InviteLinks{Seat0: link(tokens[0]), Seat1: link(tokens[1])}
}
