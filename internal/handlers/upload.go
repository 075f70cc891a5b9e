package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/milesync/milesync-backend/internal/services"
	"github.com/milesync/milesync-backend/internal/types"
)

const (
	maxUploadBytes     = 10 << 20
	maxParallelUploads = 4
)

type UploadHandler struct {
	pdfService services.PDFService
}

func NewUploadHandler(pdfService services.PDFService) *UploadHandler {
	return &UploadHandler{pdfService: pdfService}
}

type uploadResult struct {
	FileName string              `json:"file_name"`
	Upload   *types.UploadedFile `json:"upload,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// UploadPDF accepts one or more PDF mileage logs under the "files" form field
// (or a single "pdf" field) and processes them concurrently. A failed file
// reports its own error without failing the batch.
func (uh *UploadHandler) UploadPDF(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["pdf"]
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	results := make([]uploadResult, len(files))
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(maxParallelUploads)
	for i, header := range files {
		i, header := i, header
		g.Go(func() error {
			results[i] = uploadResult{FileName: header.Filename}
			data, err := readUpload(header)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			upload, err := uh.pdfService.ProcessUpload(ctx, header.Filename, header.Header.Get("Content-Type"), data)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Upload = upload
			return nil
		})
	}
	_ = g.Wait()

	RespondOK(c, gin.H{"results": results})
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	if header.Size > maxUploadBytes {
		return nil, fmt.Errorf("file exceeds %d byte limit", maxUploadBytes)
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening upload: %w", err)
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, maxUploadBytes))
}
