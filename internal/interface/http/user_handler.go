package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-library-api/internal/application"
	"github.com/oksasatya/go-library-api/pkg/apperror"
	"github.com/oksasatya/go-library-api/pkg/helpers"
	"github.com/oksasatya/go-library-api/pkg/response"
	"github.com/oksasatya/go-library-api/pkg/validation"
)

// multipartOverhead is the room left for form fields next to the image.
const multipartOverhead = 1 << 20

type UserHandler struct {
	Svc            *userapp.UserService
	Logger         *logrus.Logger
	Cookies        *helpers.Manager
	MaxUploadBytes int64
}

func NewUserHandler(svc *userapp.UserService, logger *logrus.Logger, cookieDomain string, cookieSecure bool, maxUploadBytes int64) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure), MaxUploadBytes: maxUploadBytes}
}

type registerRequest struct {
	Login    string `json:"login" form:"login" binding:"required,login"`
	Password string `json:"password" form:"password" binding:"required,pwd"`
	FullName string `json:"fullname" form:"fullname" binding:"required,max=255"`
	Country  string `json:"country" form:"country" binding:"required,max=100"`
	DOB      string `json:"dob" form:"dob" binding:"required,isodate"`
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Login    *string `json:"login" form:"login" binding:"omitempty,login"`
	Password *string `json:"password" form:"password" binding:"omitempty,pwd"`
	FullName *string `json:"fullname" form:"fullname" binding:"omitempty,min=1,max=255"`
	Country  *string `json:"country" form:"country" binding:"omitempty,min=1,max=100"`
	DOB      *string `json:"dob" form:"dob" binding:"omitempty,isodate"`
}

// profilePatch is the whole update: body fields plus the optional image.
type profilePatch struct {
	updateProfileRequest
	Image bool `json:"image"`
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm)
}

// bindBody decodes JSON or multipart form bodies and runs their validation rules.
func bindBody(c *gin.Context, req any) error {
	var err error
	if isMultipart(c) {
		err = c.ShouldBindWith(req, binding.FormMultipart)
	} else {
		err = c.ShouldBindJSON(req)
	}
	return validation.InvalidBody(err)
}

// readImage returns the "image" part of a multipart body, or nil when absent.
// A part without a usable content type is sniffed.
func (h *UserHandler) readImage(c *gin.Context) (*userapp.ImageUpload, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidBody, "Invalid form data: image could not be read", err)
	}
	if fh.Size > h.MaxUploadBytes {
		return nil, apperror.Newf(apperror.KindInvalidBody, "Invalid form data: image is larger than %d bytes", h.MaxUploadBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidBody, "Invalid form data: image could not be read", err)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(io.LimitReader(f, h.MaxUploadBytes))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidBody, "Invalid form data: image could not be read", err)
	}

	ct := fh.Header.Get("Content-Type")
	if ct == "" || strings.HasPrefix(ct, "application/octet-stream") {
		ct = mimetype.Detect(data).String()
	}
	return &userapp.ImageUpload{Data: data, ContentType: ct}, nil
}

func (h *UserHandler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+multipartOverhead)
}

// Register POST /api/user (JSON, or multipart with an optional "image" file)
func (h *UserHandler) Register(c *gin.Context) {
	h.limitBody(c)
	var req registerRequest
	if err := bindBody(c, &req); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	dob, err := parseDate(req.DOB)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	image, err := h.readImage(c)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), userapp.RegisterInput{
		Login:       req.Login,
		Password:    req.Password,
		FullName:    req.FullName,
		Country:     req.Country,
		DateOfBirth: dob,
		IP:          c.GetString("real_ip"),
	}, image)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}

	var meta any
	if res.ImageErr != nil {
		meta = gin.H{
			"image_error": apperror.MessageOf(res.ImageErr),
			"image_kind":  apperror.KindOf(res.ImageErr).String(),
		}
	}
	response.Success(c, http.StatusCreated, toUserView(res.User), "Created", meta)
}

// Login POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	_, pair, err := h.Svc.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"accessToken": pair.AccessToken}, "Authorized", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Refresh POST /api/refresh
func (h *UserHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(helpers.RefreshCookie)
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		h.Cookies.Clear(c)
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"accessToken": pair.AccessToken}, "token refreshed", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Logout POST /api/logout
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), c.GetString("userID")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// GetProfile GET /api/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "profile", nil)
}

// UpdateProfile PUT /api/me (JSON, or multipart with an optional "image" file)
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	h.limitBody(c)
	var req updateProfileRequest
	if err := bindBody(c, &req); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	image, err := h.readImage(c)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if err := validation.ValidateBody(&profilePatch{updateProfileRequest: req, Image: image != nil}); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	dob, err := parseOptionalDate(req.DOB)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString("userID"), userapp.UpdateProfileInput{
		Login:       req.Login,
		Password:    req.Password,
		FullName:    req.FullName,
		Country:     req.Country,
		DateOfBirth: dob,
	}, image)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "Updated", nil)
}

// DeleteImage DELETE /api/me/image
func (h *UserHandler) DeleteImage(c *gin.Context) {
	u, err := h.Svc.DeleteProfileImage(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "Image removed", nil)
}
