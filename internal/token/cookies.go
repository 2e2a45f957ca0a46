package token

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cookie names follow the double-submit convention: the *_token_cookie pair
// is HttpOnly and carries the signed token, while the csrf_* pair is
// readable by client scripts so the value can be echoed back in the
// X-CSRF-TOKEN header.
const (
	AccessCookieName      = "access_token_cookie"
	RefreshCookieName     = "refresh_token_cookie"
	CSRFAccessCookieName  = "csrf_access_token"
	CSRFRefreshCookieName = "csrf_refresh_token"

	// CSRFHeader is the request header checked against the CSRF claim of a
	// cookie-borne token.
	CSRFHeader = "X-CSRF-TOKEN"
)

// CookieWriter attaches issued tokens to responses and removes them on
// logout. Path scoping keeps the refresh token off every request except the
// refresh endpoint itself.
type CookieWriter struct {
	accessPath  string
	refreshPath string
	secure      bool
}

func NewCookieWriter(accessPath, refreshPath string, secure bool) *CookieWriter {
	return &CookieWriter{
		accessPath:  accessPath,
		refreshPath: refreshPath,
		secure:      secure,
	}
}

// SetAccessCookies attaches an access token and its CSRF companion.
func (w *CookieWriter) SetAccessCookies(c *gin.Context, issued *Issued) {
	w.set(c, AccessCookieName, issued.Token, w.accessPath, true)
	w.set(c, CSRFAccessCookieName, issued.CSRF, w.accessPath, false)
}

// SetRefreshCookies attaches a refresh token and its CSRF companion.
func (w *CookieWriter) SetRefreshCookies(c *gin.Context, issued *Issued) {
	w.set(c, RefreshCookieName, issued.Token, w.refreshPath, true)
	w.set(c, CSRFRefreshCookieName, issued.CSRF, w.refreshPath, false)
}

// ClearCookies expires all four auth cookies. It cannot fail; logout relies
// on that.
func (w *CookieWriter) ClearCookies(c *gin.Context) {
	w.clear(c, AccessCookieName, w.accessPath, true)
	w.clear(c, CSRFAccessCookieName, w.accessPath, false)
	w.clear(c, RefreshCookieName, w.refreshPath, true)
	w.clear(c, CSRFRefreshCookieName, w.refreshPath, false)
}

func (w *CookieWriter) set(c *gin.Context, name, value, path string, httpOnly bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: httpOnly,
		Secure:   w.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (w *CookieWriter) clear(c *gin.Context, name, path string, httpOnly bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: httpOnly,
		Secure:   w.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
