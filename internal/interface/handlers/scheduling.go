package handlers

import (
	"net/http"

	"track-wise-service/internal/usecase"

	"github.com/gin-gonic/gin"
)

// SchedulingHandler exposes the polling schedule
type SchedulingHandler struct {
	service *usecase.SearchSchedulingService
}

// NewSchedulingHandler creates a new scheduling handler
func NewSchedulingHandler(service *usecase.SearchSchedulingService) *SchedulingHandler {
	return &SchedulingHandler{service: service}
}

type containerScheduleView struct {
	ContainerNumber string `json:"container_number"`
	SearchTime      string `json:"search_time"`
}

// Get lists the current slots ordered by search time
func (h *SchedulingHandler) Get(c *gin.Context) {
	scheduling, err := h.service.GetSearchScheduling(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	start, end := scheduling.StartSearchTime, scheduling.EndSearchTime
	slots := scheduling.DueBetween(start, end)
	items := make([]containerScheduleView, 0, len(slots))
	for _, cs := range slots {
		items = append(items, containerScheduleView{
			ContainerNumber: cs.ContainerNumber,
			SearchTime:      cs.SearchTime.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                scheduling.ID,
		"start_search_time": start.String(),
		"end_search_time":   end.String(),
		"version":           scheduling.Version,
		"containers":        items,
	})
}
