package handler

import (
	"net/http"
	"time"

	"checksuite-service/internal/model"
	"checksuite-service/pkg/database"
	"checksuite-service/pkg/jwtutil"
	"checksuite-service/pkg/logger"
	"checksuite-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email       string  `json:"email"`
		Password    string  `json:"password"`
		WorkspaceID *string `json:"workspace_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Resolve the active workspace: either the one requested, or the user's
	// first membership.
	var membership model.WorkspaceMember
	query := database.GetDB().Preload("Workspace").Where("user_id = ?", user.ID)
	if req.WorkspaceID != nil {
		query = query.Where("workspace_id = ?", *req.WorkspaceID)
	}
	if result := query.Order("created_at ASC").First(&membership); result.Error != nil {
		log.Error("User has no workspace membership",
			zap.String("email", req.Email),
			zap.Error(result.Error))
		prometheus.RecordAuthError("workspace_access_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no accessible workspace"})
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID,
		membership.WorkspaceID, membership.Workspace.Name, membership.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("workspace_id", membership.WorkspaceID),
		zap.String("role", membership.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
		},
		"workspace": map[string]interface{}{
			"id":   membership.WorkspaceID,
			"name": membership.Workspace.Name,
			"role": membership.Role,
		},
	})
}

func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Email         string `json:"email"`
		Password      string `json:"password"`
		WorkspaceName string `json:"workspace_name,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		log.Error("Invalid registration data",
			zap.String("email", req.Email),
			zap.Bool("password_provided", req.Password != ""))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	// Check if user already exists - track DB query
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existingUser model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		log.Error("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	if req.WorkspaceName == "" {
		req.WorkspaceName = "My Workspace"
	}

	// Create the user together with their initial workspace and owner
	// membership - track DB insert operation
	defer prometheus.TrackDBOperation("insert")(time.Now())
	user := model.User{
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	workspace := model.Workspace{Name: req.WorkspaceName}

	tx := database.GetDB().Begin()
	if result := tx.Create(&user); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	if result := tx.Create(&workspace); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create workspace", zap.Error(result.Error))
		prometheus.RecordAuthError("workspace_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	membership := model.WorkspaceMember{
		WorkspaceID: workspace.ID,
		UserID:      user.ID,
		Role:        model.RoleOwner,
	}
	if result := tx.Create(&membership); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create workspace membership", zap.Error(result.Error))
		prometheus.RecordAuthError("membership_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit registration", zap.Error(err))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered",
		zap.String("email", user.Email),
		zap.String("workspace_id", workspace.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
		},
		"workspace": map[string]interface{}{
			"id":   workspace.ID,
			"name": workspace.Name,
		},
	})
}

// SwitchWorkspace issues a fresh token scoped to another workspace the caller
// is a member of.
func SwitchWorkspace(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		WorkspaceID string `json:"workspace_id"`
	}
	if err := c.Bind(&req); err != nil || req.WorkspaceID == "" {
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "workspace_id is required"})
	}

	userID := c.Get("user_id").(string)
	email := c.Get("email").(string)

	var membership model.WorkspaceMember
	result := database.GetDB().Preload("Workspace").
		Where("user_id = ? AND workspace_id = ?", userID, req.WorkspaceID).
		First(&membership)
	if result.Error != nil {
		log.Error("Workspace switch denied",
			zap.String("user_id", userID),
			zap.String("workspace_id", req.WorkspaceID))
		prometheus.RecordAuthError("workspace_access_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied to the specified workspace"})
	}

	token, err := jwtutil.GenerateToken(email, userID,
		membership.WorkspaceID, membership.Workspace.Name, membership.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User switched workspace",
		zap.String("user_id", userID),
		zap.String("workspace_id", membership.WorkspaceID))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"workspace": map[string]interface{}{
			"id":   membership.WorkspaceID,
			"name": membership.Workspace.Name,
			"role": membership.Role,
		},
	})
}

// ListMyWorkspaces returns every workspace the caller belongs to.
func ListMyWorkspaces(c echo.Context) error {
	log := logger.FromContext(c)
	userID := c.Get("user_id").(string)

	var memberships []model.WorkspaceMember
	if result := database.GetDB().Preload("Workspace").
		Where("user_id = ?", userID).Order("created_at ASC").
		Find(&memberships); result.Error != nil {
		log.Error("Failed to list workspaces", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list workspaces"})
	}

	workspaces := make([]map[string]interface{}, 0, len(memberships))
	for _, m := range memberships {
		workspaces = append(workspaces, map[string]interface{}{
			"id":   m.WorkspaceID,
			"name": m.Workspace.Name,
			"role": m.Role,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"workspaces": workspaces})
}

func MetricsHandler(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
