package http

import (
	"net/http"
	"strconv"

	"punto_kennedy_crm/internal/entities"
	"punto_kennedy_crm/internal/usecases"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		h.log.Errorw("list students failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list students"})
		return
	}
	c.JSON(http.StatusOK, students)
}

func (h *Handler) SearchStudents(c *gin.Context) {
	query := SanitizeString(c.Query("q"))
	if !ValidateLength(query, 1, MaxNameLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search query"})
		return
	}
	students, err := h.students.Search(c.Request.Context(), query)
	if err != nil {
		h.log.Errorw("student search failed", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	c.JSON(http.StatusOK, students)
}

func (h *Handler) GetStudent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student id"})
		return
	}
	student, err := h.students.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, student)
}

type studentPayload struct {
	FullName string `json:"full_name" binding:"required"`
	DNI      string `json:"dni"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	Site     string `json:"site"`
	Career   string `json:"career"`
	Notes    string `json:"notes"`
}

func (p *studentPayload) toEntity() entities.Student {
	return entities.Student{
		FullName: SanitizeString(p.FullName),
		DNI:      p.DNI,
		Phone:    usecases.NormalizePhone(p.Phone),
		Email:    SanitizeString(p.Email),
		Status:   SanitizeString(p.Status),
		Site:     SanitizeString(p.Site),
		Career:   SanitizeString(p.Career),
		Notes:    SanitizeString(p.Notes),
	}
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var payload studentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !ValidateLength(payload.FullName, 1, MaxNameLength) || !ValidDNI(payload.DNI) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid name or DNI"})
		return
	}

	student := payload.toEntity()
	if student.Status == "" {
		student.Status = "interesado"
	}
	if err := h.students.Create(c.Request.Context(), &student); err != nil {
		h.log.Errorw("create student failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create student"})
		return
	}
	c.JSON(http.StatusCreated, student)
}

func (h *Handler) UpdateStudent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student id"})
		return
	}
	existing, err := h.students.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	var payload studentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !ValidateLength(payload.FullName, 1, MaxNameLength) || !ValidDNI(payload.DNI) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid name or DNI"})
		return
	}

	student := payload.toEntity()
	student.ID = id
	if err := h.students.Update(c.Request.Context(), &student); err != nil {
		h.log.Errorw("update student failed", "student_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update student"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student id"})
		return
	}
	if err := h.students.Delete(c.Request.Context(), id); err != nil {
		h.log.Errorw("delete student failed", "student_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete student"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetStudentConversation returns the normalized transcript for the student's
// phone number.
func (h *Handler) GetStudentConversation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student id"})
		return
	}
	student, err := h.students.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	phone := usecases.NormalizePhone(student.Phone)
	if phone == "" {
		c.JSON(http.StatusOK, gin.H{"transcript": []entities.TranscriptEntry{}})
		return
	}

	messages, err := h.chats.RecentByPhone(c.Request.Context(), phone, 100)
	if err != nil {
		h.log.Errorw("conversation lookup failed", "student_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": usecases.BuildTranscript(messages)})
}
