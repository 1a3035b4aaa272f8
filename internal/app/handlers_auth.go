package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Chandru2600/Vaidra/internal/sdk/middleware"
	"github.com/Chandru2600/Vaidra/internal/sdk/models"
	"github.com/Chandru2600/Vaidra/internal/sdk/sqldb"
	"github.com/Chandru2600/Vaidra/internal/services/sentry"
)

func (a *App) HandleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.toSentry(c, "register", "unmarshal", sentry.LevelWarning, err)
		writeError(c, ErrUnmarshal, nil)
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	errCode, validationErrors := validateRegisterInput(req)
	if errCode != "" {
		writeError(c, errCode, validationErrors)
		return
	}

	hashedPassword, err := a.hash.HashPassword(req.Password)
	if err != nil {
		a.toSentry(c, "register", "bcrypt", sentry.LevelError, err)
		writeError(c, ErrHashPassword, nil)
		return
	}

	newUser := models.NewUser{
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Name:           req.Name,
		Age:            req.Age,
		Gender:         req.Gender,
		Conditions:     req.Conditions,
		Allergies:      req.Allergies,
		Address:        req.Address,
	}

	createdUser, err := a.db.CreateUser(c.Request.Context(), newUser)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBDuplicatedEntry) {
			writeError(c, ErrEmailTaken, nil)
			return
		}
		a.toSentry(c, "register", "db", sentry.LevelError, err)
		writeError(c, ErrCreateUser, nil)
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		ID:    createdUser.ID,
		Email: createdUser.Email,
		Name:  createdUser.Name,
	})
}

// HandleLogin accepts form-encoded credentials under the conventional
// username/password field names; username carries the email.
func (a *App) HandleLogin(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if validationErrors := validateLoginInput(username, password); len(validationErrors) > 0 {
		writeError(c, ErrMissingFields, validationErrors)
		return
	}

	user, err := a.db.GetUserByEmail(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrInvalidCredentials, nil)
			return
		}
		a.toSentry(c, "login", "db", sentry.LevelError, err)
		writeError(c, ErrProcessLogin, nil)
		return
	}

	// Always return the same error for auth failures to avoid account enumeration.
	if !a.hash.CheckPasswordHash(password, user.HashedPassword) {
		writeError(c, ErrInvalidCredentials, nil)
		return
	}

	accessToken, err := a.tokens.Issue(user.ID)
	if err != nil {
		a.toSentry(c, "login", "token", sentry.LevelError, err)
		writeError(c, ErrGenerateTokens, nil)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: accessToken, TokenType: "bearer"})
}

func (a *App) HandleGetProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	user, err := a.db.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrUserNotFound, nil)
			return
		}
		a.toSentry(c, "get_profile", "db", sentry.LevelError, err)
		writeError(c, ErrProcessLogin, nil)
		return
	}

	c.JSON(http.StatusOK, profileResponse(user))
}

func (a *App) HandleUpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.toSentry(c, "update_profile", "unmarshal", sentry.LevelWarning, err)
		writeError(c, ErrUnmarshal, nil)
		return
	}

	upd := models.UserUpdate{
		Name:        req.Name,
		Age:         req.Age,
		Gender:      req.Gender,
		Conditions:  req.Conditions,
		Allergies:   req.Allergies,
		Address:     req.Address,
		LocationLat: req.LocationLat,
		LocationLng: req.LocationLng,
	}

	if err := a.db.UpdateUserProfile(c.Request.Context(), userID, upd); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrUserNotFound, nil)
			return
		}
		a.toSentry(c, "update_profile", "db", sentry.LevelError, err)
		writeError(c, ErrUpdateProfile, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func profileResponse(user models.User) ProfileResponse {
	return ProfileResponse{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role,
		Name:        user.Name,
		Age:         user.Age,
		Gender:      user.Gender,
		Conditions:  user.Conditions,
		Allergies:   user.Allergies,
		Address:     user.Address,
		LocationLat: user.LocationLat,
		LocationLng: user.LocationLng,
		CreatedAt:   user.CreatedAt,
	}
}
