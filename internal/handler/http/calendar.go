package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-summary-go/internal/handler/http/response"
)

type CalendarHandler interface {
	GetNonWorkingDays(w http.ResponseWriter, r *http.Request)
}

type CalendarHandlerImpl struct {
	calendarService calendar.Service
}

func NewCalendarHandler(calendarService calendar.Service) CalendarHandler {
	return &CalendarHandlerImpl{calendarService: calendarService}
}

// GetNonWorkingDays implements CalendarHandler.
func (h *CalendarHandlerImpl) GetNonWorkingDays(w http.ResponseWriter, r *http.Request) {
	req, err := periodFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.calendarService.GetNonWorkingDays(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
