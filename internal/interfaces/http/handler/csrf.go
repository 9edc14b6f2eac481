package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// mintCSRFToken generates a one-hour double-submit token
func mintCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// setCSRFCookie writes the double-submit cookie. HttpOnly keeps it out of
// page scripts; SameSite=Strict means only same-site navigation carries it,
// which is exactly the population allowed to post a decision form.
func setCSRFCookie(c *gin.Context, name, token string, maxAge time.Duration, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
