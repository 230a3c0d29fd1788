package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-catalog/internal/application"
	"github.com/oksasatya/library-catalog/internal/domain/entity"
	"github.com/oksasatya/library-catalog/internal/interface/middleware"
	"github.com/oksasatya/library-catalog/pkg/response"
	"github.com/oksasatya/library-catalog/pkg/validation"
)

type BookHandler struct {
	Svc    *application.BookService
	Logger *logrus.Logger
}

func NewBookHandler(svc *application.BookService, logger *logrus.Logger) *BookHandler {
	return &BookHandler{Svc: svc, Logger: logger}
}

type createBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// updateBookRequest distinguishes absent fields (nil) from empty ones.
type updateBookRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
}

func (h *BookHandler) List(c *gin.Context) {
	books, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *BookHandler) Get(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	books, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *BookHandler) Create(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, "Invalid request body", validation.ToDetails(err))
		return
	}
	u, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, h.Logger, application.ErrMissingToken)
		return
	}

	b, err := h.Svc.Create(c.Request.Context(), application.CreateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
	}, u.ID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, response.BookBody{Message: "Book added successfully", Book: *b})
}

func (h *BookHandler) Update(c *gin.Context) {
	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, "Invalid request body", validation.ToDetails(err))
		return
	}

	b, err := h.Svc.Update(c.Request.Context(), c.Param("id"), entity.BookPatch{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, response.BookBody{Message: "Book updated successfully", Book: *b})
}

func (h *BookHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Book deleted successfully")
}

// UploadCover accepts a multipart "cover" file. The content type is sniffed
// from the bytes, not taken from the client.
func (h *BookHandler) UploadCover(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, application.MaxCoverBytes+1<<20)

	fh, err := c.FormFile("cover")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			invalidBody(c, "Cover must be at most 5 MiB", map[string]string{"cover": "too large"})
			return
		}
		invalidBody(c, "Cover file is required", map[string]string{"cover": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeError(c, h.Logger, err)
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)

	b, err := h.Svc.SetCover(c.Request.Context(), c.Param("id"), contentType, fh.Size, io.MultiReader(bytes.NewReader(head), f))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, response.BookBody{Message: "Cover uploaded successfully", Book: *b})
}
