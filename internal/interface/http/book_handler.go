package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	bookapp "github.com/oksasatya/go-library-api/internal/application"
	"github.com/oksasatya/go-library-api/pkg/response"
	"github.com/oksasatya/go-library-api/pkg/validation"
)

type BookHandler struct {
	Svc    *bookapp.BookService
	Logger *logrus.Logger
}

func NewBookHandler(svc *bookapp.BookService, logger *logrus.Logger) *BookHandler {
	return &BookHandler{Svc: svc, Logger: logger}
}

type listBooksQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type searchBooksQuery struct {
	Q    string `form:"q" binding:"required,min=1,max=200"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

type bookURI struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

type createBookRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=255"`
	Release     string `json:"release" binding:"required,isodate"`
	Description string `json:"description" binding:"required"`
}

type updateBookRequest struct {
	ID          int64   `json:"id" binding:"required,gt=0"`
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	AuthorID    *string `json:"author_id" binding:"omitempty,uuid"`
	Release     *string `json:"release" binding:"omitempty,isodate"`
	Description *string `json:"description"`
}

// ValidationRules are the struct-level rules the handlers rely on; pass them to validation.Init.
func ValidationRules() []validation.AnyOf {
	return []validation.AnyOf{
		{Type: updateBookRequest{}, Fields: []string{"Title", "AuthorID", "Release", "Description"}},
		{Type: profilePatch{}, Fields: []string{"Login", "Password", "FullName", "Country", "DOB", "Image"}},
	}
}

// List GET /api/books?page=&limit=
func (h *BookHandler) List(c *gin.Context) {
	var q listBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, h.Logger, validation.InvalidBody(err))
		return
	}
	books, err := h.Svc.List(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toBookViews(books), "books", gin.H{"page": max(q.Page, 1), "count": len(books)})
}

// Search GET /api/books/search?q=
func (h *BookHandler) Search(c *gin.Context) {
	var q searchBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, h.Logger, validation.InvalidBody(err))
		return
	}
	books, err := h.Svc.Search(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toBookViews(books), "search results", gin.H{"count": len(books)})
}

// Get GET /api/book/:id
func (h *BookHandler) Get(c *gin.Context) {
	var uri bookURI
	if err := c.ShouldBindUri(&uri); err != nil {
		writeError(c, h.Logger, validation.InvalidBody(err))
		return
	}
	b, err := h.Svc.Get(c.Request.Context(), uri.ID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toBookView(b), "book", nil)
}

// Create POST /api/book (author is the caller)
func (h *BookHandler) Create(c *gin.Context) {
	var req createBookRequest
	if err := bindBody(c, &req); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	release, err := parseDate(req.Release)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), c.GetString("userID"), bookapp.CreateBookInput{
		Title:       req.Title,
		ReleaseDate: release,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toBookView(b), "Created", nil)
}

// Update PUT /api/book {id, ...at least one field}
func (h *BookHandler) Update(c *gin.Context) {
	var req updateBookRequest
	if err := bindBody(c, &req); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	release, err := parseOptionalDate(req.Release)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	b, err := h.Svc.Update(c.Request.Context(), bookapp.UpdateBookInput{
		ID:          req.ID,
		Title:       req.Title,
		AuthorID:    req.AuthorID,
		ReleaseDate: release,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toBookView(b), "Updated", nil)
}

// Delete DELETE /api/book/:id
func (h *BookHandler) Delete(c *gin.Context) {
	var uri bookURI
	if err := c.ShouldBindUri(&uri); err != nil {
		writeError(c, h.Logger, validation.InvalidBody(err))
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), uri.ID); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Deleted", nil)
}
