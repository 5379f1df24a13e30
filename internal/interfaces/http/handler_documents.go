package http

import (
	"io"
	"net/http"
	"strconv"

	"punto_kennedy_crm/internal/entities"
	"punto_kennedy_crm/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadDocument stores the file in Drive and records its metadata.
func (h *Handler) UploadDocument(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student id"})
		return
	}
	student, err := h.students.GetByID(c.Request.Context(), studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	if h.blobs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Document storage not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	if fileHeader.Size > MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	fileID, err := h.blobs.Upload(c.Request.Context(), fileHeader.Filename, mimeType, file)
	if err != nil {
		h.log.Errorw("drive upload failed", "student_id", studentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	doc := entities.Document{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		Phone:       usecases.NormalizePhone(student.Phone),
		DocType:     SanitizeString(c.PostForm("doc_type")),
		DriveFileID: fileID,
		FileName:    SanitizeString(fileHeader.Filename),
		MimeType:    mimeType,
	}
	if err := h.documents.Create(c.Request.Context(), &doc); err != nil {
		h.log.Errorw("document metadata insert failed", "student_id", studentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record document"})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) ListStudentDocuments(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student id"})
		return
	}
	docs, err := h.documents.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.log.Errorw("list documents failed", "student_id", studentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, docs)
}

// DownloadDocument streams the stored bytes from Drive.
func (h *Handler) DownloadDocument(c *gin.Context) {
	doc, err := h.documents.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	if h.blobs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Document storage not configured"})
		return
	}

	rc, err := h.blobs.Download(c.Request.Context(), doc.DriveFileID)
	if err != nil {
		h.log.Errorw("drive download failed", "document_id", doc.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Download failed"})
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.log.Warnw("document stream interrupted", "document_id", doc.ID, "error", err)
	}
}
