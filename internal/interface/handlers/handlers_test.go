package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"track-wise-service/internal/domain/entity"
	repo "track-wise-service/internal/interface/repository"
	"track-wise-service/internal/usecase"
	"track-wise-service/pkg/logger"
	"track-wise-service/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memContainerRepo struct {
	containers map[string]*entity.Container
	order      []string
}

func (r *memContainerRepo) GetByNumberAndStatus(_ context.Context, number string, status entity.ShippingStatus) (*entity.Container, error) {
	for _, id := range r.order {
		if c, ok := r.containers[id]; ok && c.Number == number && c.ShippingStatus == status {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memContainerRepo) GetAllByNumber(_ context.Context, number string) ([]*entity.Container, error) {
	var out []*entity.Container
	for _, id := range r.order {
		if c, ok := r.containers[id]; ok && c.Number == number {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memContainerRepo) Save(_ context.Context, c *entity.Container) error {
	c.ID = fmt.Sprintf("%024d", len(r.order)+1)
	r.containers[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

func (r *memContainerRepo) Update(_ context.Context, c *entity.Container) (bool, error) {
	if c.ID == "" {
		return false, entity.ErrMissingID
	}
	if _, ok := r.containers[c.ID]; !ok {
		return false, nil
	}
	r.containers[c.ID] = c
	return true, nil
}

func (r *memContainerRepo) GetByID(_ context.Context, id string) (*entity.Container, error) {
	return r.containers[id], nil
}

func (r *memContainerRepo) FindAllForGrid(_ context.Context, _ string, _, _ int) ([]*entity.Container, error) {
	var out []*entity.Container
	for _, id := range r.order {
		if c, ok := r.containers[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memContainerRepo) CountAllForGrid(_ context.Context, _ string) (int64, error) {
	return int64(len(r.containers)), nil
}

func (r *memContainerRepo) DeleteByID(_ context.Context, id string) (bool, error) {
	if _, ok := r.containers[id]; !ok {
		return false, nil
	}
	delete(r.containers, id)
	return true, nil
}

type memSchedulingRepo struct {
	stored *entity.SearchScheduling
}

func (r *memSchedulingRepo) Get(context.Context) (*entity.SearchScheduling, error) {
	if r.stored == nil {
		return nil, nil
	}
	cp := *r.stored
	cp.Containers = append([]entity.ContainerSchedule{}, r.stored.Containers...)
	return &cp, nil
}

func (r *memSchedulingRepo) Save(ctx context.Context, s *entity.SearchScheduling) error {
	s.Version = 1
	r.stored = s
	return nil
}

func (r *memSchedulingRepo) Update(ctx context.Context, s *entity.SearchScheduling) error {
	s.Version++
	r.stored = s
	return nil
}

type stubCarrier struct {
	resp *entity.TrackingResponse
	err  error
}

func (c *stubCarrier) GetTrackingInfo(context.Context, string) (*entity.TrackingResponse, error) {
	return c.resp, c.err
}

func tracking(number string) *entity.TrackingResponse {
	date := "01/03/2025"
	return &entity.TrackingResponse{
		IsSuccess: true,
		Data: &entity.TrackingData{BillOfLadings: []entity.BillOfLading{{
			BillOfLadingNumber:  "MEDUAB123456",
			GeneralTrackingInfo: &entity.GeneralTrackingInfo{ShippedFrom: "SANTOS, BR", ShippedTo: "ROTTERDAM, NL"},
			ContainersInfo: []entity.ContainerInfo{{
				ContainerNumber: number,
				Events: []entity.TrackingEvent{
					{Order: 1, Date: &date, Location: "SANTOS, BR", Description: "Export received at CY"},
				},
			}},
		}}},
	}
}

func newTestRouter(carrier *stubCarrier) (*gin.Engine, *memContainerRepo) {
	gin.SetMode(gin.TestMode)

	log := logger.NewNopLogger()
	containers := &memContainerRepo{containers: make(map[string]*entity.Container)}
	window := entity.SchedulingWindow{ID: "default", Start: entity.NewTimeOfDay(8, 0, 0), End: entity.NewTimeOfDay(20, 0, 0)}
	scheduling := usecase.NewSearchSchedulingService(&memSchedulingRepo{}, window, metrics.NewTestMetrics(), log)
	service := usecase.NewContainerService(containers, carrier, repo.NewNopPollRunRepository(), scheduling, log)

	r := NewRouter(
		NewContainerHandler(service, log),
		NewSchedulingHandler(scheduling),
		http.NotFoundHandler(),
		log,
	)
	return r, containers
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndFetchContainer(t *testing.T) {
	r, _ := newTestRouter(&stubCarrier{resp: tracking("MSCU1234567")})

	w := doJSON(r, http.MethodPost, "/api/v1/containers", gin.H{"number": "MSCU1234567", "shipowner": "MSC"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data entity.ContainerView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "MSCU1234567", created.Data.Number)
	require.Len(t, created.Data.Events, 1)

	w = doJSON(r, http.MethodGet, "/api/v1/containers/"+created.Data.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/containers/number/MSCU1234567", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/search-scheduling", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"search_time":"08:00:00"`)

	w = doJSON(r, http.MethodGet, "/api/v1/containers?page=1&page_size=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page entity.GridPaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 5, page.PageSize)
}

func TestCreateContainerErrors(t *testing.T) {
	tests := []struct {
		name    string
		carrier *stubCarrier
		body    gin.H
		want    int
	}{
		{"malformed body", &stubCarrier{}, gin.H{"number": "MSCU1234567"}, http.StatusBadRequest},
		{"invalid number", &stubCarrier{}, gin.H{"number": "bad", "shipowner": "MSC"}, http.StatusBadRequest},
		{"unknown at carrier", &stubCarrier{resp: &entity.TrackingResponse{}}, gin.H{"number": "MSCU1234567", "shipowner": "MSC"}, http.StatusNotFound},
		{"carrier down", &stubCarrier{err: errors.New("dial tcp: timeout")}, gin.H{"number": "MSCU1234567", "shipowner": "MSC"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(tt.carrier)
			w := doJSON(r, http.MethodPost, "/api/v1/containers", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestCreateContainerTwiceIsRejected(t *testing.T) {
	r, _ := newTestRouter(&stubCarrier{resp: tracking("MSCU1234567")})
	body := gin.H{"number": "MSCU1234567", "shipowner": "MSC"}

	require.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/api/v1/containers", body).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/api/v1/containers", body).Code)
}

func TestUpdateAndDeleteContainer(t *testing.T) {
	r, containers := newTestRouter(&stubCarrier{resp: tracking("MSCU1234567")})
	require.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/api/v1/containers", gin.H{"number": "MSCU1234567", "shipowner": "MSC"}).Code)
	id := containers.order[0]

	w := doJSON(r, http.MethodPut, "/api/v1/containers/"+id, gin.H{"booking_number": "BK-7"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "BK-7", containers.containers[id].BookingNumber)

	w = doJSON(r, http.MethodDelete, "/api/v1/containers/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res entity.DeleteContainerResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, id, res.ContainerID)

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/api/v1/containers/"+id, nil).Code)
}

func TestPollRunsRequiresContainerNumber(t *testing.T) {
	r, _ := newTestRouter(&stubCarrier{})

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/api/v1/poll-runs", nil).Code)

	w := doJSON(r, http.MethodGet, "/api/v1/poll-runs?container_number=MSCU1234567", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestPollRunsByCycle(t *testing.T) {
	r, _ := newTestRouter(&stubCarrier{})

	w := doJSON(r, http.MethodGet, "/api/v1/poll-runs?cycle_id=0b7f3c1e", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(&stubCarrier{})

	w := doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Healthy", w.Body.String())
}
