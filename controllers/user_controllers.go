package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/wastezero-realtime/database"
	"github.com/yeremiapane/wastezero-realtime/middlewares"
	"github.com/yeremiapane/wastezero-realtime/models"
	"github.com/yeremiapane/wastezero-realtime/realtime"
	"github.com/yeremiapane/wastezero-realtime/utils"
	"golang.org/x/crypto/bcrypt"
)

type UserController struct {
	Store    database.Store
	Hub      *realtime.Hub
	TokenTTL time.Duration
}

func NewUserController(store database.Store, hub *realtime.Hub, tokenTTL time.Duration) *UserController {
	return &UserController{Store: store, Hub: hub, TokenTTL: tokenTTL}
}

// UserWithPresence is a user as listed in the chat sidebar.
type UserWithPresence struct {
	models.User
	IsOnline bool `json:"isOnline"`
}

// Register creates a volunteer or NGO account. Admins are not self-service.
func (uc *UserController) Register(c *gin.Context) {
	type request struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"omitempty,oneof=volunteer ngo"`
		Location string `json:"location"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := uc.Store.GetUserByEmail(c.Request.Context(), email); err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("email already registered"))
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		respondServiceError(c, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleVolunteer
	}
	user := models.User{
		Name:     req.Name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
		Location: req.Location,
	}
	if err := uc.Store.CreateUser(c.Request.Context(), &user); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User registered", user)
}

// Login verifies credentials, sets the token cookie and returns the token.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := uc.Store.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
			return
		}
		respondServiceError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	if user.IsBlocked {
		utils.RespondErrorData(c, http.StatusForbidden, errors.New("account blocked"), gin.H{
			"isBlocked":   true,
			"blockReason": user.BlockReason,
			"blockedAt":   user.BlockedAt,
		})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.TokenCookie, token, int(uc.TokenTTL.Seconds()), "/", "", false, true)

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the current token until it would have expired.
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString(middlewares.ContextToken)
	expiry := time.Now().Add(uc.TokenTTL)
	if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiry)

	c.SetCookie(middlewares.TokenCookie, "", -1, "/", "", false, true)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	if user == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user not found in context"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", UserWithPresence{
		User:     *user,
		IsOnline: uc.Hub.IsOnline(user.ID),
	})
}

// GetAllUsers lists everyone except the caller, with presence.
func (uc *UserController) GetAllUsers(c *gin.Context) {
	users, err := uc.Store.ListUsers(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]UserWithPresence, 0, len(users))
	for _, u := range users {
		out = append(out, UserWithPresence{User: u, IsOnline: uc.Hub.IsOnline(u.ID)})
	}
	utils.RespondJSON(c, http.StatusOK, "All users", out)
}

func (uc *UserController) GetOnlineUsers(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Online users", uc.Hub.OnlineUserIDs())
}

func (uc *UserController) BlockUser(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	uc.setBlocked(c, true, body.Reason)
}

func (uc *UserController) UnblockUser(c *gin.Context) {
	uc.setBlocked(c, false, "")
}

func (uc *UserController) setBlocked(c *gin.Context, blocked bool, reason string) {
	targetID := c.Param("id")
	if targetID == currentUserID(c) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("admins cannot block themselves"))
		return
	}

	user, err := uc.Store.SetUserBlocked(c.Request.Context(), targetID, blocked, reason, currentUserID(c))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
			return
		}
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("User %s blocked=%t by %s", user.ID, blocked, currentUserID(c))
	utils.RespondJSON(c, http.StatusOK, "User updated", user)
}
