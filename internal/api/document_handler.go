package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"fitreport/internal/api/middleware"
	"fitreport/internal/database"
	"fitreport/internal/datastore"
	"fitreport/internal/metrics"
)

// DocumentHandler serves document CRUD and the notification count.
// Transition rules are not checked here; values are stored as sent.
type DocumentHandler struct {
	documents datastore.Table[database.Document]
}

func NewDocumentHandler(store *datastore.Client) *DocumentHandler {
	return &DocumentHandler{documents: datastore.From[database.Document](store)}
}

// List returns every document, newest first.
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.Select(c.Request.Context(), datastore.Query{
		Orders: []datastore.Order{datastore.Desc("created_at")},
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("list documents failed", slog.Any("error", err))
		Internal(c, msgDocListFailed)
		return
	}
	for i := range docs {
		if ts := docs[i].ProgressStartDate; ts != nil {
			utc := ts.UTC()
			docs[i].ProgressStartDate = &utc
		}
	}
	c.JSON(http.StatusOK, docs)
}

type createDocumentRequest struct {
	UserID             string                  `json:"user_id" binding:"required,max=10"`
	UserName           string                  `json:"user_name" binding:"max=50"`
	DocumentType       string                  `json:"document_type" binding:"required,max=50"`
	Title              string                  `json:"title" binding:"required,max=255"`
	CompanyName        string                  `json:"company_name" binding:"max=50"`
	RepresentativeName string                  `json:"representative_name" binding:"max=50"`
	ManagerName        string                  `json:"manager_name" binding:"max=50"`
	ProgressDetails    string                  `json:"progress_details" binding:"omitempty,oneof=검수자 대표실무자 담당실무자"`
	Status             string                  `json:"status" binding:"omitempty,oneof=waiting in_progress approved rejected revision submitted stopped"`
	ProgressStatus     string                  `json:"progress_status" binding:"omitempty,oneof=in_progress stopped not_started"`
	SubmittedDate      string                  `json:"submitted_date"`
	Reason             string                  `json:"reason"`
	ReasonRead         *bool                   `json:"reason_read"`
	AttachedFiles      []database.AttachedFile `json:"attached_files" binding:"omitempty,dive"`
}

// Create stores a new document. Missing status fields default to waiting/not_started.
func (h *DocumentHandler) Create(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, validationMessage(err))
		return
	}

	doc := database.Document{
		UserID:             req.UserID,
		UserName:           req.UserName,
		DocumentType:       req.DocumentType,
		Title:              req.Title,
		CompanyName:        req.CompanyName,
		RepresentativeName: req.RepresentativeName,
		ManagerName:        req.ManagerName,
		ProgressDetails:    req.ProgressDetails,
		Status:             req.Status,
		ProgressStatus:     req.ProgressStatus,
		SubmittedDate:      req.SubmittedDate,
		Reason:             req.Reason,
		ReasonRead:         true,
		AttachedFiles:      req.AttachedFiles,
	}
	if doc.Status == "" {
		doc.Status = "waiting"
	}
	if doc.ProgressStatus == "" {
		doc.ProgressStatus = "not_started"
	}
	if req.ReasonRead != nil {
		doc.ReasonRead = *req.ReasonRead
	}

	if err := h.documents.Insert(c.Request.Context(), &doc); err != nil {
		middleware.LoggerFromContext(c).Error("create document failed", slog.Any("error", err))
		Internal(c, msgDocCreateFailed)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

type updateDocumentRequest struct {
	UserName           *string                  `json:"user_name"`
	DocumentType       *string                  `json:"document_type" binding:"omitempty,max=50"`
	Title              *string                  `json:"title" binding:"omitempty,max=255"`
	CompanyName        *string                  `json:"company_name"`
	RepresentativeName *string                  `json:"representative_name"`
	ManagerName        *string                  `json:"manager_name"`
	ProgressDetails    *string                  `json:"progress_details"`
	Status             *string                  `json:"status" binding:"omitempty,oneof=waiting in_progress approved rejected revision submitted stopped"`
	ProgressStatus     *string                  `json:"progress_status" binding:"omitempty,oneof=in_progress stopped not_started"`
	SubmittedDate      *string                  `json:"submitted_date"`
	CompletedDate      *string                  `json:"completed_date"`
	ProgressStartDate  *time.Time               `json:"progress_start_date"`
	ProgressEndTime    *string                  `json:"progress_end_time"`
	StoppedTime        *string                  `json:"stopped_time"`
	Reason             *string                  `json:"reason"`
	ReasonRead         *bool                    `json:"reason_read"`
	AttachedFiles      *[]database.AttachedFile `json:"attached_files"`
}

func (r updateDocumentRequest) values() map[string]any {
	values := map[string]any{}
	strs := map[string]*string{
		"user_name":           r.UserName,
		"document_type":       r.DocumentType,
		"title":               r.Title,
		"company_name":        r.CompanyName,
		"representative_name": r.RepresentativeName,
		"manager_name":        r.ManagerName,
		"progress_details":    r.ProgressDetails,
		"status":              r.Status,
		"progress_status":     r.ProgressStatus,
		"submitted_date":      r.SubmittedDate,
		"completed_date":      r.CompletedDate,
		"progress_end_time":   r.ProgressEndTime,
		"stopped_time":        r.StoppedTime,
		"reason":              r.Reason,
	}
	for column, v := range strs {
		if v != nil {
			values[column] = *v
		}
	}
	if r.ProgressStartDate != nil {
		values["progress_start_date"] = *r.ProgressStartDate
	}
	if r.ReasonRead != nil {
		values["reason_read"] = *r.ReasonRead
	}
	if r.AttachedFiles != nil {
		values["attached_files"] = datatypes.NewJSONSlice(*r.AttachedFiles)
	}
	return values
}

// Update writes the provided columns and returns the stored document.
func (h *DocumentHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, validationMessage(err))
		return
	}
	values := req.values()
	if len(values) == 0 {
		BadRequest(c, msgNothingToUpdate)
		return
	}

	logger := middleware.LoggerFromContext(c).With(slog.Uint64("document_id", uint64(id)))
	updated, err := h.documents.Update(c.Request.Context(), values, datastore.Eq("id", id))
	if err == nil && len(updated) == 0 {
		err = datastore.ErrNotFound
	}
	if err != nil {
		logger.Error("update document failed", slog.Any("error", err))
		Internal(c, msgDocUpdateFailed)
		return
	}

	if req.Status != nil {
		metrics.DocumentStatusChanged(*req.Status)
		logger.Info("document status updated", slog.String("status", *req.Status))
	}
	c.JSON(http.StatusOK, updated[0])
}

// Delete removes one document.
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, err := h.documents.Delete(c.Request.Context(), datastore.Eq("id", id)); err != nil {
		middleware.LoggerFromContext(c).Error("delete document failed", slog.Uint64("document_id", uint64(id)), slog.Any("error", err))
		Internal(c, msgDocDeleteFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// NotificationCount counts documents waiting on the submitter (revision or rejected).
func (h *DocumentHandler) NotificationCount(c *gin.Context) {
	ctx := c.Request.Context()
	revision, err := h.documents.Count(ctx, datastore.Eq("status", "revision"))
	var rejected int64
	if err == nil {
		rejected, err = h.documents.Count(ctx, datastore.Eq("status", "rejected"))
	}
	if err != nil {
		middleware.LoggerFromContext(c).Error("notification count failed", slog.Any("error", err))
		Internal(c, msgNotificationFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    revision + rejected,
		"revision": revision,
		"rejected": rejected,
	})
}
