package middlewares

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/models"
	"github.com/Kariqs/camiu-api/sessions"
	"github.com/Kariqs/camiu-api/storage"
	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "camiu.sid"

	userKey    = "user"
	sessionKey = "session"
)

func tokenFromRequest(ctx *gin.Context) string {
	if header := ctx.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := ctx.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// LoadUser resolves the session token, if any, and stores the session and its
// user in the context. Requests without a valid session pass through untouched.
func LoadUser(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := tokenFromRequest(ctx)
		if token == "" {
			ctx.Next()
			return
		}

		sid, err := app.Tokens.Parse(token)
		if err != nil {
			ctx.Next()
			return
		}

		session, err := app.Sessions.Get(ctx.Request.Context(), sid)
		if err != nil {
			if !errors.Is(err, sessions.ErrNotFound) {
				log.Println("Session lookup error:", err)
			}
			ctx.Next()
			return
		}

		user, err := app.Store.GetUser(ctx.Request.Context(), session.UserID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				log.Println("Session user lookup error:", err)
			}
			ctx.Next()
			return
		}

		ctx.Set(sessionKey, session)
		ctx.Set(userKey, user)
		ctx.Next()
	}
}

func CurrentUser(ctx *gin.Context) (*models.User, bool) {
	value, exists := ctx.Get(userKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func CurrentSession(ctx *gin.Context) (*sessions.Session, bool) {
	value, exists := ctx.Get(sessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*sessions.Session)
	return session, ok
}

// RequireAuth rejects requests that LoadUser could not authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := CurrentUser(ctx); !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}
		ctx.Next()
	}
}
