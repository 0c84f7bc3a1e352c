package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/summary"
	"github.com/cmlabs-hris/attendance-summary-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceSummaryHandler interface {
	Build(w http.ResponseWriter, r *http.Request)
	Recalculate(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Exists(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Import(w http.ResponseWriter, r *http.Request)
	Events(w http.ResponseWriter, r *http.Request)
}

type AttendanceSummaryHandlerImpl struct {
	summaryService summary.Service
	maxImportSize  int64
}

func NewAttendanceSummaryHandler(summaryService summary.Service, maxImportSize int64) AttendanceSummaryHandler {
	return &AttendanceSummaryHandlerImpl{
		summaryService: summaryService,
		maxImportSize:  maxImportSize,
	}
}

// periodFromQuery reads company_name, month and year from the query string.
func periodFromQuery(r *http.Request) (period.Request, error) {
	q := r.URL.Query()
	req := period.Request{
		CompanyName: q.Get("company_name"),
		Month:       period.Month(q.Get("month")),
	}

	if yearStr := q.Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return period.Request{}, validator.ValidationErrors{{Field: "year", Message: "must be a number"}}
		}
		req.Year = year
	}

	return req, nil
}

// Build implements AttendanceSummaryHandler.
func (h *AttendanceSummaryHandlerImpl) Build(w http.ResponseWriter, r *http.Request) {
	var req period.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Build summaries decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.summaryService.BuildSummaries(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance summaries created successfully", result)
}

// Recalculate implements AttendanceSummaryHandler.
func (h *AttendanceSummaryHandlerImpl) Recalculate(w http.ResponseWriter, r *http.Request) {
	var req period.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Recalculate summaries decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.summaryService.Recalculate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance summaries recalculated successfully", result)
}

// List implements AttendanceSummaryHandler.
func (h *AttendanceSummaryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := summary.SummaryFilter{
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	var errs validator.ValidationErrors

	if companyName := q.Get("company_name"); companyName != "" {
		filter.CompanyName = &companyName
	}
	if empCode := q.Get("emp_code"); empCode != "" {
		filter.EmpCode = &empCode
	}
	if monthStr := q.Get("month"); monthStr != "" {
		if m, err := strconv.Atoi(monthStr); err == nil {
			filter.Month = &m
		} else {
			errs.Add("month", "must be a number")
		}
	}
	if yearStr := q.Get("year"); yearStr != "" {
		if y, err := strconv.Atoi(yearStr); err == nil {
			filter.Year = &y
		} else {
			errs.Add("year", "must be a number")
		}
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	// Pagination
	page := 1
	if pageStr := q.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	filter.Page = page

	limit := 20
	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	filter.Limit = limit

	result, err := h.summaryService.ListSummaries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Get implements AttendanceSummaryHandler.
func (h *AttendanceSummaryHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.summaryService.GetSummary(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements AttendanceSummaryHandler.
func (h *AttendanceSummaryHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req summary.UpdateSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update summary decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.summaryService.UpdateSummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance summary updated successfully", result)
}

// Delete implements AttendanceSummaryHandler.
func (h *AttendanceSummaryHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.summaryService.DeleteSummary(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance summary deleted successfully", nil)
}

// Exists implements AttendanceSummaryHandler.
func (h *AttendanceSummaryHandlerImpl) Exists(w http.ResponseWriter, r *http.Request) {
	req, err := periodFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.summaryService.Exists(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export implements AttendanceSummaryHandler.
func (h *AttendanceSummaryHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	req, err := periodFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var file summary.ExportFile
	switch format := r.URL.Query().Get("format"); format {
	case "", "xlsx":
		file, err = h.summaryService.Export(r.Context(), req)
	case "pdf":
		file, err = h.summaryService.ExportPDF(r.Context(), req)
	default:
		err = validator.ValidationErrors{{Field: "format", Message: "must be xlsx or pdf"}}
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Content); err != nil {
		slog.Error("Failed to write export", "filename", file.Filename, "error", err)
	}
}

// Import implements AttendanceSummaryHandler.
func (h *AttendanceSummaryHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImportSize)

	if err := r.ParseMultipartForm(h.maxImportSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.HandleError(w, summary.ErrImportFileTooLarge)
			return
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Field 'file' is required", nil)
		return
	}
	defer file.Close()

	result, err := h.summaryService.Import(r.Context(), file, header.Filename)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance summary workbook imported", result)
}

// Events streams summary change events of the caller's tenant over SSE.
func (h *AttendanceSummaryHandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	events, cleanup, err := h.summaryService.Subscribe(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer cleanup()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("Failed to encode summary event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
