package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/api/responses"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/core/reconciliation"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/storage"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/workbook"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Response headers carrying the matched record counts of a reconcile run.
const (
	HeaderBooksMatched  = "X-Reco-Books-Matched"
	HeaderGSTR2BMatched = "X-Reco-GSTR2B-Matched"
)

// ReconcileHandler handles the reconciliation API requests.
type ReconcileHandler struct {
	service reconciliation.Service
	store   *storage.Store
	logger  *zap.Logger
}

// NewReconcileHandler creates a new reconciliation handler.
func NewReconcileHandler(service reconciliation.Service, store *storage.Store, logger *zap.Logger) *ReconcileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileHandler{
		service: service,
		store:   store,
		logger:  logger,
	}
}

// HandleReconcile reconciles the uploaded workbook and returns the annotated copy.
func (h *ReconcileHandler) HandleReconcile(c *gin.Context) {
	run, ok := h.receiveUpload(c)
	if !ok {
		return
	}
	defer h.cleanup(run)

	summary, err := h.service.ReconcileFile(run.InputPath, run.OutputPath)
	if err != nil {
		h.logger.Warn("reconciliation failed", zap.String("run", run.ID), zap.Error(err))
		responses.Error(c, statusFor(err), messageFor(err), err.Error())
		return
	}

	c.Header(HeaderBooksMatched, strconv.Itoa(summary.Books.Matched))
	c.Header(HeaderGSTR2BMatched, strconv.Itoa(summary.GSTR2B.Matched))
	responses.Attachment(c, run.OutputPath, run.OutputName)
}

// HandleAnalysis reconciles the uploaded workbook and returns the unmatched records
// with the likely reason, without producing a file.
func (h *ReconcileHandler) HandleAnalysis(c *gin.Context) {
	run, ok := h.receiveUpload(c)
	if !ok {
		return
	}
	defer h.cleanup(run)

	analysis, err := h.service.AnalyzeFile(run.InputPath)
	if err != nil {
		h.logger.Warn("analysis failed", zap.String("run", run.ID), zap.Error(err))
		responses.Error(c, statusFor(err), messageFor(err), err.Error())
		return
	}
	responses.Success(c, analysis, fmt.Sprintf("%d unmatched records analysed", len(analysis.Findings)))
}

// HandleTemplate returns a blank input workbook.
func (h *ReconcileHandler) HandleTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := workbook.WriteTemplate(&buf); err != nil {
		responses.Error(c, http.StatusInternalServerError, "Could not generate the template", err.Error())
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+workbook.TemplateFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// receiveUpload validates the "file" form field and stores it in a fresh run directory.
func (h *ReconcileHandler) receiveUpload(c *gin.Context) (*storage.Run, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responses.Error(c, http.StatusRequestEntityTooLarge, tooLargeMessage(tooLarge.Limit))
			return nil, false
		}
		responses.Error(c, http.StatusBadRequest, "No file part")
		return nil, false
	}
	if fileHeader.Filename == "" {
		responses.Error(c, http.StatusBadRequest, "No selected file")
		return nil, false
	}
	if !storage.AllowedFile(fileHeader.Filename) {
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Unsupported file extension: %s", ext), "only .xlsx and .xls files are accepted")
		return nil, false
	}

	name := storage.SecureFilename(fileHeader.Filename)
	if !storage.AllowedFile(name) {
		responses.Error(c, http.StatusBadRequest, "Invalid file name")
		return nil, false
	}

	run, err := h.store.NewRun(name)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Could not store the upload", err.Error())
		return nil, false
	}
	if err := c.SaveUploadedFile(fileHeader, run.InputPath); err != nil {
		h.cleanup(run)
		responses.Error(c, http.StatusInternalServerError, "Could not store the upload", err.Error())
		return nil, false
	}

	h.logger.Info("upload received", zap.String("run", run.ID), zap.String("file", name), zap.Int64("size", fileHeader.Size))
	return run, true
}

func (h *ReconcileHandler) cleanup(run *storage.Run) {
	if err := h.store.Cleanup(run); err != nil {
		h.logger.Warn("failed to remove run files", zap.String("run", run.ID), zap.Error(err))
	}
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var notFound *domain.SheetNotFoundError
	switch {
	case errors.As(err, &notFound), errors.Is(err, domain.ErrUnsupportedWorkbook):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	var notFound *domain.SheetNotFoundError
	if errors.As(err, &notFound) {
		return notFound.Error()
	}
	if errors.Is(err, domain.ErrUnsupportedWorkbook) {
		return "The uploaded file is not a readable Excel workbook."
	}
	return "Error Processing File"
}
