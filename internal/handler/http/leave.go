package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-summary-go/internal/handler/http/response"
)

type LeaveHandler interface {
	GetStatusMap(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.Service
}

func NewLeaveHandler(leaveService leave.Service) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// GetStatusMap implements LeaveHandler.
func (h *LeaveHandlerImpl) GetStatusMap(w http.ResponseWriter, r *http.Request) {
	req, err := periodFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.GetStatusMap(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
