package httphandler

import (
	"github.com/labstack/echo/v4"

	"github.com/lllypuk/styx/internal/application/appcore"
	userapp "github.com/lllypuk/styx/internal/application/user"
	"github.com/lllypuk/styx/internal/infrastructure/httpserver"
)

// RegisterRequest represents the registration body.
type RegisterRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// UpdateProfileRequest merges only the fields that are present.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
	Habits      *string `json:"habits"`
}

// UpdatePhotoRequest sets the profile photo.
type UpdatePhotoRequest struct {
	PhotoURL string `json:"photoUrl"`
}

// UserHandler handles registration and the caller's own profile.
type UserHandler struct {
	register      appcore.UseCase[userapp.RegisterUserCommand, userapp.Result]
	getProfile    appcore.UseCase[userapp.GetProfileQuery, userapp.Result]
	updateProfile appcore.UseCase[userapp.UpdateProfileCommand, userapp.Result]
	updatePhoto   appcore.UseCase[userapp.UpdatePhotoCommand, userapp.Result]
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(
	register appcore.UseCase[userapp.RegisterUserCommand, userapp.Result],
	getProfile appcore.UseCase[userapp.GetProfileQuery, userapp.Result],
	updateProfile appcore.UseCase[userapp.UpdateProfileCommand, userapp.Result],
	updatePhoto appcore.UseCase[userapp.UpdatePhotoCommand, userapp.Result],
) *UserHandler {
	return &UserHandler{
		register:      register,
		getProfile:    getProfile,
		updateProfile: updateProfile,
		updatePhoto:   updatePhoto,
	}
}

// RegisterRoutes registers user routes with the router.
func (h *UserHandler) RegisterRoutes(r *httpserver.Router) {
	r.Public().POST("/register", h.Register)

	r.Auth().GET("/profile", h.GetProfile)
	r.Auth().PUT("/profile", h.UpdateProfile)
	r.Auth().PUT("/profile/media", h.UpdatePhoto)
}

// Register handles POST /api/register.
// The subject comes from the body; the identity provider's post-login hook calls this route.
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return respondInvalidBody(c)
	}

	result, err := h.register.Execute(c.Request().Context(), userapp.RegisterUserCommand{
		SubjectID:   req.UserID,
		Email:       req.Email,
		DisplayName: req.Name,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(result.Value))
}

// GetProfile handles GET /api/profile.
func (h *UserHandler) GetProfile(c echo.Context) error {
	subject, ok := requireSubject(c)
	if !ok {
		return respondUnauthorized(c)
	}

	result, err := h.getProfile.Execute(c.Request().Context(), userapp.GetProfileQuery{SubjectID: subject})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(result.Value))
}

// UpdateProfile handles PUT /api/profile.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	subject, ok := requireSubject(c)
	if !ok {
		return respondUnauthorized(c)
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return respondInvalidBody(c)
	}

	result, err := h.updateProfile.Execute(c.Request().Context(), userapp.UpdateProfileCommand{
		SubjectID:   subject,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Habits:      req.Habits,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(result.Value))
}

// UpdatePhoto handles PUT /api/profile/media.
func (h *UserHandler) UpdatePhoto(c echo.Context) error {
	subject, ok := requireSubject(c)
	if !ok {
		return respondUnauthorized(c)
	}

	var req UpdatePhotoRequest
	if err := c.Bind(&req); err != nil {
		return respondInvalidBody(c)
	}

	result, err := h.updatePhoto.Execute(c.Request().Context(), userapp.UpdatePhotoCommand{
		SubjectID: subject,
		PhotoURL:  req.PhotoURL,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(result.Value))
}
