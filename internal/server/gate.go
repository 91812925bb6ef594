package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bureau/internal/util"
)

const (
	clearanceCookieName = "bureau_clearance"
	clearanceLifetime   = 7 * 24 * time.Hour
)

const clearancePage = `<!DOCTYPE html>
<html>
<head><title>RESTRICTED AREA</title></head>
<body style="background:#0a0a0a;color:#39FF14;font-family:monospace;text-align:center;padding-top:20vh">
<h1>&#9888; RESTRICTED AREA &#9888;</h1>
<p>This briefing facility requires clearance.</p>
<p>Append ?password=&lt;clearance code&gt; to the URL to proceed.</p>
</body>
</html>`

// gate blocks page traffic behind a shared clearance code. API routes and
// health checks stay open so the frontend keeps working once a page loaded.
// An empty password disables the gate entirely.
type gate struct {
	password string
	secret   []byte
	proxies  *util.TrustedProxies
}

func newGate(password string, secret []byte, proxies *util.TrustedProxies) *gate {
	return &gate{password: password, secret: secret, proxies: proxies}
}

func (g *gate) wrap(next http.Handler) http.Handler {
	if g.password == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gateExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if c, err := r.Cookie(clearanceCookieName); err == nil && g.verify(c.Value) {
			next.ServeHTTP(w, r)
			return
		}
		if supplied := r.URL.Query().Get("password"); supplied != "" {
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(g.password)) != 1 {
				util.LoggerFromContext(r.Context()).Warn("clearance attempt rejected",
					"ip", util.ClientIP(r, g.proxies), "path", r.URL.Path)
			} else {
				token, err := g.issue()
				if err == nil {
					http.SetCookie(w, &http.Cookie{
						Name:     clearanceCookieName,
						Value:    token,
						Path:     "/",
						MaxAge:   int(clearanceLifetime.Seconds()),
						HttpOnly: true,
						SameSite: http.SameSiteLaxMode,
					})
					// Drop the password from the address bar.
					q := r.URL.Query()
					q.Del("password")
					clean := r.URL.Path
					if enc := q.Encode(); enc != "" {
						clean += "?" + enc
					}
					http.Redirect(w, r, clean, http.StatusFound)
					return
				}
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(clearancePage))
	})
}

func gateExempt(path string) bool {
	return path == "/healthz" ||
		strings.HasPrefix(path, "/api/") ||
		strings.HasPrefix(path, "/static/") ||
		strings.HasPrefix(path, "/assets/") ||
		path == "/favicon.ico"
}

func (g *gate) issue() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "clearance",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(clearanceLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

func (g *gate) verify(token string) bool {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err == nil && parsed.Valid
}
