package handler

import (
    "crypto/subtle" // constant-time username compare
    "net/http"      // HTTP status codes
    "strings"       // trimming the login name
    "time"          // token expiry in responses

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing
    "go.uber.org/zap"

    "github.com/iliyamo/cinecito/internal/config"     // operator credentials and token TTL
    "github.com/iliyamo/cinecito/internal/pkg/logger" // failed logins are logged
    "github.com/iliyamo/cinecito/internal/utils"      // password check and token issuing
)

// AuthHandler logs the single operator in.  Credentials come from
// ADMIN_USER and ADMIN_PASSWORD_HASH; there is no user table.
type AuthHandler struct {
    Cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
    return &AuthHandler{Cfg: cfg}
}

// ----- DTOs -----

type loginReq struct {
    Username string `json:"username" validate:"required"`
    Password string `json:"password" validate:"required"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}

type loginResp struct {
    User   string    `json:"user"`
    Role   string    `json:"role"`
    Access tokenPart `json:"access"`
}

// Login verifies the operator credentials and returns an access token.
func (h *AuthHandler) Login(c echo.Context) error {
    if !h.Cfg.AuthEnabled() {
        return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "authentication is disabled"})
    }
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    req.Username = strings.TrimSpace(req.Username)
    if err := c.Validate(&req); err != nil {
        return err
    }

    // both checks always run so timing does not reveal which one failed
    userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.Cfg.AdminUser)) == 1
    passOK := utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password)
    if !userOK || !passOK {
        logger.Warn("login rejected", zap.String("user", req.Username), zap.String("remote_ip", c.RealIP()))
        return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "invalid credentials"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, h.Cfg.AdminUser, utils.RoleAdmin, h.Cfg.AccessTTLMin)
    if err != nil {
        logger.Error("issue access token failed", zap.Error(err))
        return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
    }
    return c.JSON(http.StatusOK, loginResp{
        User:   h.Cfg.AdminUser,
        Role:   utils.RoleAdmin,
        Access: tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// Me echoes the identity the JWT middleware put on the context.
func (h *AuthHandler) Me(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "user": c.Get("user_id"),
        "role": c.Get("role"),
    })
}
