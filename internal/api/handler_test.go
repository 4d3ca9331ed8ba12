package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hostel-allocation-backend/config"
	"hostel-allocation-backend/internal/alloc"
	dbpkg "hostel-allocation-backend/internal/db"
	"hostel-allocation-backend/internal/model"
	"hostel-allocation-backend/internal/notify"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:api_%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(gdb))

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	// Keep the limiter out of the way for test traffic.
	cfg.Server.RateLimitPerSec = 10000
	cfg.Server.RateLimitBurst = 10000

	log := logrus.New()
	log.SetOutput(io.Discard)

	emitter := notify.NewStoreEmitter(gdb, nil, log)
	engine := alloc.New(gdb, cfg, emitter, log)
	return NewRouter(engine, cfg, nil), gdb
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func seedPendingApplication(t *testing.T, gdb *gorm.DB, applicantID int64) int64 {
	t.Helper()
	require.NoError(t, gdb.Create(&model.Applicant{
		ID:          applicantID,
		RollNo:      fmt.Sprintf("ROLL-%d", applicantID),
		Name:        fmt.Sprintf("Applicant %d", applicantID),
		CGPA:        3.5,
		Year:        2,
		HomeAddress: "Gazipur",
	}).Error)
	app := model.Application{
		ApplicantID: applicantID,
		Status:      model.ApplicationPending,
		SubmittedAt: time.Now(),
	}
	require.NoError(t, gdb.Create(&app).Error)
	return app.ID
}

func TestApproveApplicationInvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(nil, nil)
	r.POST("/api/applications/:application_id/approve", handler.ApproveApplication)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/applications/abc/approve", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid application ID"}`, w.Body.String())
}

func TestApproveApplicationFlow(t *testing.T) {
	router, gdb := setupTestRouter(t)

	require.NoError(t, gdb.Create(&model.Room{
		ID: 1, BuildingName: "Main Building", FloorNumber: 2, RoomNumber: 201, Capacity: 2,
	}).Error)
	appID := seedPendingApplication(t, gdb, 1)

	w := doRequest(router, "POST", fmt.Sprintf("/api/applications/%d/approve", appID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var outcome alloc.ApproveOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.True(t, outcome.Allocated)
	assert.InDelta(t, 62.49, outcome.Score, 0.001)

	// Approving the same application again conflicts.
	w = doRequest(router, "POST", fmt.Sprintf("/api/applications/%d/approve", appID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown application.
	w = doRequest(router, "POST", "/api/applications/9999/approve", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The applicant's seat view reflects the allocation.
	w = doRequest(router, "GET", "/api/applicants/1/seat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var seat struct {
		HasSeat bool       `json:"hasSeat"`
		Room    model.Room `json:"room"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &seat))
	assert.True(t, seat.HasSeat)
	assert.Equal(t, int64(1), seat.Room.ID)

	// An applicant without a seat gets hasSeat=false, not an error.
	require.NoError(t, gdb.Create(&model.Applicant{
		ID: 2, RollNo: "ROLL-2", Name: "Applicant 2",
	}).Error)
	w = doRequest(router, "GET", "/api/applicants/2/seat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hasSeat":false}`, w.Body.String())
}

func TestRejectApplicationFlow(t *testing.T) {
	router, gdb := setupTestRouter(t)
	appID := seedPendingApplication(t, gdb, 1)

	w := doRequest(router, "POST", fmt.Sprintf("/api/applications/%d/reject", appID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var app model.Application
	require.NoError(t, gdb.First(&app, appID).Error)
	assert.Equal(t, model.ApplicationRejected, app.Status)

	w = doRequest(router, "POST", fmt.Sprintf("/api/applications/%d/reject", appID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDismissSeatFlow(t *testing.T) {
	router, gdb := setupTestRouter(t)

	require.NoError(t, gdb.Create(&model.Room{
		ID: 1, BuildingName: "Main Building", FloorNumber: 1, RoomNumber: 101, Capacity: 1,
	}).Error)
	appID := seedPendingApplication(t, gdb, 1)
	w := doRequest(router, "POST", fmt.Sprintf("/api/applications/%d/approve", appID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "POST", "/api/applicants/1/dismiss", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result alloc.VacateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.AutofillRequested)
	assert.Zero(t, result.PromotedApplicantID)

	// No seat left to dismiss.
	w = doRequest(router, "POST", "/api/applicants/1/dismiss", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown applicant.
	w = doRequest(router, "POST", "/api/applicants/77/withdraw", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationEndpoints(t *testing.T) {
	router, gdb := setupTestRouter(t)

	require.NoError(t, gdb.Create(&model.Room{
		ID: 1, BuildingName: "Main Building", FloorNumber: 1, RoomNumber: 101, Capacity: 1,
	}).Error)
	appID := seedPendingApplication(t, gdb, 1)
	w := doRequest(router, "POST", fmt.Sprintf("/api/applications/%d/approve", appID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/api/applicants/1/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notifications []model.Notification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notifications))
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotifySeatApproval, notifications[0].Type)
	assert.False(t, notifications[0].Read)

	path := fmt.Sprintf("/api/applicants/1/notifications/%d/read", notifications[0].ID)
	w = doRequest(router, "POST", path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var row model.Notification
	require.NoError(t, gdb.First(&row, notifications[0].ID).Error)
	assert.True(t, row.Read)

	// A notification belonging to someone else is not reachable.
	w = doRequest(router, "POST", fmt.Sprintf("/api/applicants/2/notifications/%d/read", notifications[0].ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutPushSubscription(t *testing.T) {
	router, gdb := setupTestRouter(t)

	w := doRequest(router, "PUT", "/api/applicants/1/push-subscription", []byte(`{`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())

	body := []byte(`{"endpoint":"https://example.com/push","p256dh":"key","auth":"secret"}`)
	w = doRequest(router, "PUT", "/api/applicants/1/push-subscription", body)
	require.Equal(t, http.StatusOK, w.Code)

	var sub model.PushSubscription
	require.NoError(t, gdb.First(&sub, "endpoint = ?", "https://example.com/push").Error)
	assert.Equal(t, int64(1), sub.ApplicantID)

	// Re-registering the same endpoint moves it to the new applicant.
	body = []byte(`{"endpoint":"https://example.com/push","p256dh":"key2","auth":"secret2"}`)
	w = doRequest(router, "PUT", "/api/applicants/2/push-subscription", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, gdb.First(&sub, "endpoint = ?", "https://example.com/push").Error)
	assert.Equal(t, int64(2), sub.ApplicantID)

	var count int64
	require.NoError(t, gdb.Model(&model.PushSubscription{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetVAPIDPublicKeyUnconfigured(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, "GET", "/api/vapid_public_key", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReallocationEndpoints(t *testing.T) {
	router, gdb := setupTestRouter(t)

	require.NoError(t, gdb.Create(&model.Room{
		ID: 1, BuildingName: "Main Building", FloorNumber: 1, RoomNumber: 101, Capacity: 2,
	}).Error)
	require.NoError(t, gdb.Create(&model.Applicant{
		ID: 1, RollNo: "ROLL-1", Name: "Applicant 1",
	}).Error)
	require.NoError(t, gdb.Create(&model.WaitingEntry{
		ApplicantID: 1, Score: 70, AddedOn: time.Now(),
	}).Error)

	w := doRequest(router, "POST", "/api/reallocations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var run model.AllocationRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, 1, run.Assigned)
	assert.Equal(t, 0, run.Waitlisted)

	w = doRequest(router, "GET", "/api/reallocations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var runs []model.AllocationRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}

func TestGetRoomsFilters(t *testing.T) {
	router, gdb := setupTestRouter(t)

	require.NoError(t, gdb.Create(&model.Room{
		ID: 1, BuildingName: "Main Building", FloorNumber: 1, RoomNumber: 101, Capacity: 2,
	}).Error)
	require.NoError(t, gdb.Create(&model.Room{
		ID: 2, BuildingName: "Extension 1", FloorNumber: 2, RoomNumber: 201, Capacity: 2,
	}).Error)

	w := doRequest(router, "GET", "/api/rooms?building=Extension+1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rooms []model.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, int64(2), rooms[0].ID)

	w = doRequest(router, "GET", "/api/rooms?floor=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRoomOccupants(t *testing.T) {
	router, gdb := setupTestRouter(t)

	require.NoError(t, gdb.Create(&model.Room{
		ID: 1, BuildingName: "Main Building", FloorNumber: 1, RoomNumber: 101, Capacity: 2,
	}).Error)
	for id := int64(1); id <= 2; id++ {
		appID := seedPendingApplication(t, gdb, id)
		w := doRequest(router, "POST", fmt.Sprintf("/api/applications/%d/approve", appID), nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(router, "GET", "/api/rooms/1/occupants", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var occupants []struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		ExpiryDate string `json:"expiryDate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &occupants))
	require.Len(t, occupants, 2)
	expected := time.Now().AddDate(0, 48, 0).Format("2006-01-02")
	for _, o := range occupants {
		assert.NotEmpty(t, o.Name)
		assert.Equal(t, expected, o.ExpiryDate)
	}

	w = doRequest(router, "GET", "/api/rooms/abc/occupants", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
