package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/middlewares"
	"github.com/Kariqs/camiu-api/models"
	"github.com/Kariqs/camiu-api/storage"
	"github.com/gin-gonic/gin"
)

const (
	// Standard response messages
	msgInvalidInput          = "invalid input"
	msgUserAlreadyExists     = "username or email already exists"
	msgFailedToHashPassword  = "failed to hash password"
	msgInvalidCredentials    = "invalid username or password"
	msgFailedToCreateSession = "failed to create session"
	msgInternalServerError   = "Internal server error"
	msgAlreadyExists         = "resource already exists"
	msgCartEmpty             = "Cart is empty"
	msgForbidden             = "Forbidden"
	msgLoggedOut             = "Logged out"
)

type authResponse struct {
	*models.User
	Token string `json:"token"`
}

// startSession creates a server-side session, sets the session cookie and
// answers with the user and the bearer token.
func startSession(app *initializers.App, ctx *gin.Context, status int, user *models.User) {
	session, err := app.Sessions.Create(ctx.Request.Context(), user.ID, app.Config.SessionTTL)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, msgFailedToCreateSession, err)
		return
	}

	token, err := app.Tokens.Sign(session)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, msgFailedToCreateSession, err)
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middlewares.SessionCookie, token, int(app.Config.SessionTTL.Seconds()), "/", "", app.Config.CookieSecure, true)
	sendJSONResponse(ctx, status, authResponse{User: user, Token: token})
}

// Register creates an account and logs it in.
func Register(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var signUpData models.SignupData
		if !bindJSON(ctx, &signUpData, "Invalid registration data") {
			return
		}

		hashedPassword, err := models.HashPassword(signUpData.Password)
		if err != nil {
			respondWithError(ctx, http.StatusInternalServerError, msgFailedToHashPassword, err)
			return
		}

		user := &models.User{
			Username: signUpData.Username,
			Email:    signUpData.Email,
			Password: hashedPassword,
		}
		if err := app.Store.CreateUser(ctx.Request.Context(), user); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				sendErrorResponse(ctx, http.StatusBadRequest, msgUserAlreadyExists)
				return
			}
			respondWithError(ctx, http.StatusInternalServerError, msgInternalServerError, err)
			return
		}

		log.Println("User registered:", user.Username)
		startSession(app, ctx, http.StatusCreated, user)
	}
}

func Login(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var loginData models.LoginData
		if !bindJSON(ctx, &loginData, "Invalid login data") {
			return
		}

		user, err := app.Store.GetUserByLogin(ctx.Request.Context(), loginData.Username)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
				return
			}
			respondWithError(ctx, http.StatusInternalServerError, msgInternalServerError, err)
			return
		}

		if err := user.CheckPassword(loginData.Password); err != nil {
			sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}

		startSession(app, ctx, http.StatusOK, user)
	}
}

func Logout(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if session, ok := middlewares.CurrentSession(ctx); ok {
			if err := app.Sessions.Delete(ctx.Request.Context(), session.ID); err != nil {
				respondWithError(ctx, http.StatusInternalServerError, msgInternalServerError, err)
				return
			}
		}

		ctx.SetSameSite(http.SameSiteLaxMode)
		ctx.SetCookie(middlewares.SessionCookie, "", -1, "/", "", app.Config.CookieSecure, true)
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgLoggedOut})
	}
}

func GetUser(ctx *gin.Context) {
	user, ok := middlewares.CurrentUser(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Not authenticated")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, user)
}
