package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/usecase"
	"track-wise-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ContainerHandler serves the container registration endpoints
type ContainerHandler struct {
	service *usecase.ContainerService
	logger  logger.Logger
}

// NewContainerHandler creates a new container handler
func NewContainerHandler(service *usecase.ContainerService, logger logger.Logger) *ContainerHandler {
	return &ContainerHandler{service: service, logger: logger}
}

// Create registers a container after checking it at the carrier
func (h *ContainerHandler) Create(c *gin.Context) {
	var in entity.CreateContainerRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	container, err := h.service.RegisterContainer(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Container registered",
		"data":    entity.NewContainerView(container),
	})
}

// Get returns a container by id
func (h *ContainerHandler) Get(c *gin.Context) {
	container, err := h.service.GetContainerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewContainerView(container))
}

// GetByNumber returns the tracked registration of a container number
func (h *ContainerHandler) GetByNumber(c *gin.Context) {
	container, err := h.service.GetContainerByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewContainerView(container))
}

// List returns one page of the container grid
func (h *ContainerHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	res, err := h.service.GetPaginatedGrid(c.Request.Context(), c.Query("search"), page, size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Update changes the booking and house bill of lading references
func (h *ContainerHandler) Update(c *gin.Context) {
	var in entity.UpdateContainerRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	container, err := h.service.UpdateContainer(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewContainerView(container))
}

// Delete removes a container and releases its slot when nothing else tracks the number
func (h *ContainerHandler) Delete(c *gin.Context) {
	res, err := h.service.DeleteContainerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListPollRuns returns the poll attempts of one dispatch cycle when cycle_id
// is given, otherwise the latest attempts for container_number
func (h *ContainerHandler) ListPollRuns(c *gin.Context) {
	var (
		runs []*entity.PollRun
		err  error
	)
	switch {
	case c.Query("cycle_id") != "":
		runs, err = h.service.ListCyclePollRuns(c.Request.Context(), c.Query("cycle_id"))
	case c.Query("container_number") != "":
		runs, err = h.service.ListPollRuns(c.Request.Context(), c.Query("container_number"))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "container_number or cycle_id is required"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": runs})
}

func (h *ContainerHandler) respondError(c *gin.Context, err error) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func errorStatus(err error) int {
	var validation *entity.ValidationError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, entity.ErrAlreadyTracked):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFoundAtCarrier),
		errors.Is(err, entity.ErrContainerNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
