package handler

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/duvallb/records-request-api/internal/dto"
	"github.com/duvallb/records-request-api/internal/models"
	appErrors "github.com/duvallb/records-request-api/pkg/errors"
	"github.com/duvallb/records-request-api/pkg/response"
)

type fileService interface {
	Upload(ctx context.Context, actor *models.JWTClaims, requestID, originalName, contentType string, size int64, r io.Reader) (*models.AttachedFile, string, error)
	SignedDownloadToken(ctx context.Context, actor *models.JWTClaims, fileID string) (string, error)
	OpenByToken(ctx context.Context, token string) (*models.AttachedFile, *os.File, error)
	ListForRequest(ctx context.Context, actor *models.JWTClaims, requestID string) ([]models.AttachedFile, error)
	MaxBytes() int64
}

// FileHandler wires upload and signed download endpoints.
type FileHandler struct {
	service fileService
}

// NewFileHandler constructs the handler.
func NewFileHandler(service fileService) *FileHandler {
	return &FileHandler{service: service}
}

// Upload godoc
// @Summary Attach a file to a request
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Request ID"
// @Param file formData file true "File to upload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /requests/{id}/files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	// Bound the multipart parse itself before the service re-checks the
	// actual byte count.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxBytes()+1<<10)

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "multipart field 'file' is required"))
		return
	}

	src, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer src.Close()

	file, token, err := h.service.Upload(c.Request.Context(), claims, c.Param("id"), header.Filename, header.Header.Get("Content-Type"), header.Size, src)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FileUploadResponse{
		File:        *file,
		DownloadURL: downloadPath(file.ID, token),
	})
}

// List godoc
// @Summary List files attached to a request
// @Tags Files
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/files [get]
func (h *FileHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	files, err := h.service.ListForRequest(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, files, nil)
}

// Download godoc
// @Summary Download a file
// @Description Streams the blob for a signed token. Authenticated callers
// without a token get one minted after an authorization check.
// @Tags Files
// @Produce octet-stream
// @Param id path string true "File ID"
// @Param token query string false "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{id}/download [get]
func (h *FileHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		claims := claimsFromContext(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		signed, err := h.service.SignedDownloadToken(c.Request.Context(), claims, c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		token = signed
	}

	file, blob, err := h.service.OpenByToken(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer blob.Close()

	if file.ID != c.Param("id") {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
		return
	}

	c.DataFromReader(http.StatusOK, file.SizeBytes, file.ContentType, blob, map[string]string{
		"Content-Disposition": `attachment; filename="` + file.OriginalName + `"`,
	})
}

func downloadPath(fileID, token string) string {
	if token == "" {
		return ""
	}
	return "/api/v1/files/" + fileID + "/download?token=" + token
}
