package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"reservation-system/internal/entities"
	"reservation-system/internal/repositories/memory"
	"reservation-system/internal/services"
	"reservation-system/pkg/eventbus"
	"reservation-system/pkg/filestorage"
	"reservation-system/pkg/service"
	"reservation-system/pkg/validation"
)

type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Body    json.RawMessage   `json:"body"`
	Total   *int              `json:"total"`
	Details map[string]string `json:"details"`
}

type RouterTestSuite struct {
	suite.Suite
	Echo       *echo.Echo
	Bus        *eventbus.Bus
	AdminToken string
	TechToken  string
	ArchiveDir string
}

func (s *RouterTestSuite) SetupTest() {
	nopLogger := zap.NewNop()
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.July, 29, 10, 0, 0, 0, time.UTC))

	store := memory.NewStore()
	repos := services.Repositories{
		Tx:           store,
		Users:        memory.NewUserRepository(store),
		Companies:    memory.NewCompanyRepository(store),
		Equipment:    memory.NewEquipmentRepository(store),
		Reservations: memory.NewReservationRepository(store),
	}

	ctx := context.Background()
	require.NoError(s.T(), repos.Users.CreateUser(ctx, &entities.User{ID: "admin-1", Name: "Admin", Role: entities.RoleAdmin}))
	require.NoError(s.T(), repos.Users.CreateUser(ctx, &entities.User{ID: "tech-1", Name: "Tom", Role: entities.RoleTechnician}))
	require.NoError(s.T(), repos.Companies.CreateCompany(ctx, &entities.Company{ID: "co-1", Name: "Acme"}))
	require.NoError(s.T(), repos.Equipment.CreateEquipment(ctx, &entities.Equipment{ID: "eq-1", GageID: "G-1001", Description: "Caliper"}))
	require.NoError(s.T(), repos.Equipment.CreateEquipment(ctx, &entities.Equipment{ID: "eq-2", GageID: "G-1002", Description: "Micrometer"}))

	s.Bus = eventbus.New(nopLogger)
	reg := services.NewRegistry(repos, s.Bus, clock, nopLogger, time.Minute)
	jwtSvc := service.NewJWTService("test-secret", "test", time.Hour, clock)

	e := echo.New()
	e.Validator = validation.New()
	s.ArchiveDir = s.T().TempDir()
	archive, err := filestorage.NewLocalFileStorage(s.ArchiveDir, clock)
	require.NoError(s.T(), err)
	InitRouter(e, reg, jwtSvc, archive, clock, nopLogger)
	s.Echo = e

	s.AdminToken, err = jwtSvc.GenerateAccessToken("admin-1")
	require.NoError(s.T(), err)
	s.TechToken, err = jwtSvc.GenerateAccessToken("tech-1")
	require.NoError(s.T(), err)
}

func (s *RouterTestSuite) TearDownTest() {
	s.Bus.Wait()
}

func (s *RouterTestSuite) do(method, target, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (s *RouterTestSuite) booking(equipmentID, pickup, ret string) map[string]interface{} {
	return map[string]interface{}{
		"equipmentId":  equipmentID,
		"technicianId": "tech-1",
		"companyId":    "co-1",
		"pickupDate":   pickup,
		"returnDate":   ret,
	}
}

func (s *RouterTestSuite) TestHealthzIsPublic() {
	rec, _ := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(s.T(), http.StatusOK, rec.Code)
}

func (s *RouterTestSuite) TestAuthBoundary() {
	s.T().Run("missing token", func(t *testing.T) {
		rec, env := s.do(http.MethodGet, "/api/equipment", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, env.Status)
	})

	s.T().Run("garbage token", func(t *testing.T) {
		rec, _ := s.do(http.MethodGet, "/api/equipment", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	s.T().Run("technician may read", func(t *testing.T) {
		rec, env := s.do(http.MethodGet, "/api/equipment", s.TechToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, env.Total)
		assert.Equal(t, 2, *env.Total)
	})

	s.T().Run("technician may not edit the catalogue", func(t *testing.T) {
		rec, _ := s.do(http.MethodPost, "/api/equipment", s.TechToken, map[string]string{"gageId": "G-9", "description": "x"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func (s *RouterTestSuite) TestReservationFlow() {
	var createdID string

	s.T().Run("create succeeds", func(t *testing.T) {
		rec, env := s.do(http.MethodPost, "/api/reservations", s.TechToken, s.booking("eq-1", "2024-08-05", "2024-08-07"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var r entities.Reservation
		require.NoError(t, json.Unmarshal(env.Body, &r))
		assert.NotEmpty(t, r.ID)
		assert.False(t, r.Staged)
		createdID = r.ID
	})
	require.NotEmpty(s.T(), createdID)

	s.T().Run("touching return day conflicts", func(t *testing.T) {
		rec, env := s.do(http.MethodPost, "/api/reservations", s.TechToken, s.booking("eq-1", "2024-08-07", "2024-08-09"))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, `Equipment "G-1001" is already booked for the selected dates.`, env.Message)
	})

	s.T().Run("availability reports the conflict", func(t *testing.T) {
		rec, env := s.do(http.MethodGet, "/api/availability?equipment_id=eq-1&pickup=2024-08-06&return=2024-08-06", s.TechToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res struct {
			Available bool `json:"available"`
		}
		require.NoError(t, json.Unmarshal(env.Body, &res))
		assert.False(t, res.Available)
	})

	s.T().Run("excluding itself the window is free", func(t *testing.T) {
		rec, env := s.do(http.MethodGet, "/api/availability?equipment_id=eq-1&pickup=2024-08-06&return=2024-08-06&exclude_id="+createdID, s.TechToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var res struct {
			Available bool `json:"available"`
		}
		require.NoError(t, json.Unmarshal(env.Body, &res))
		assert.True(t, res.Available)
	})

	s.T().Run("update moves the window", func(t *testing.T) {
		body := s.booking("eq-1", "2024-08-10", "2024-08-12")
		rec, _ := s.do(http.MethodPut, "/api/reservations/"+createdID, s.TechToken, body)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	s.T().Run("technician listing splits phases", func(t *testing.T) {
		rec, env := s.do(http.MethodGet, "/api/technicians/tech-1/reservations", s.TechToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var res struct {
			Upcoming []entities.Reservation `json:"upcoming"`
			Past     []entities.Reservation `json:"past"`
		}
		require.NoError(t, json.Unmarshal(env.Body, &res))
		assert.Len(t, res.Upcoming, 1)
		assert.Empty(t, res.Past)
	})

	s.T().Run("delete then delete again", func(t *testing.T) {
		rec, _ := s.do(http.MethodDelete, "/api/reservations/"+createdID, s.TechToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, _ = s.do(http.MethodDelete, "/api/reservations/"+createdID, s.TechToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func (s *RouterTestSuite) TestBatchIsAllOrNothing() {
	rec, _ := s.do(http.MethodPost, "/api/reservations", s.TechToken, s.booking("eq-2", "2024-08-05", "2024-08-05"))
	require.Equal(s.T(), http.StatusCreated, rec.Code)

	batch := map[string]interface{}{
		"equipmentIds": []string{"eq-1", "eq-2"},
		"technicianId": "tech-1",
		"companyId":    "co-1",
		"pickupDate":   "2024-08-05",
		"returnDate":   "2024-08-06",
	}
	rec, env := s.do(http.MethodPost, "/api/reservations/batch", s.TechToken, batch)
	assert.Equal(s.T(), http.StatusConflict, rec.Code)
	assert.Contains(s.T(), env.Message, "G-1002")

	rec, env = s.do(http.MethodGet, "/api/reservations", s.TechToken, nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	require.NotNil(s.T(), env.Total)
	assert.Equal(s.T(), 1, *env.Total)
}

func (s *RouterTestSuite) TestValidationErrors() {
	s.T().Run("bad query date", func(t *testing.T) {
		rec, env := s.do(http.MethodGet, "/api/reservations?from=05/08/2024", s.TechToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, env.Details, "from")
	})

	s.T().Run("return before pickup", func(t *testing.T) {
		rec, _ := s.do(http.MethodPost, "/api/reservations", s.TechToken, s.booking("eq-1", "2024-08-07", "2024-08-05"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	s.T().Run("unknown calendar mode", func(t *testing.T) {
		rec, _ := s.do(http.MethodGet, "/api/calendar?mode=year", s.TechToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	s.T().Run("staging needs a date", func(t *testing.T) {
		rec, _ := s.do(http.MethodGet, "/api/staging", s.TechToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func (s *RouterTestSuite) TestStaging() {
	rec, env := s.do(http.MethodPost, "/api/reservations", s.TechToken, s.booking("eq-1", "2024-08-05", "2024-08-07"))
	require.Equal(s.T(), http.StatusCreated, rec.Code)
	var r entities.Reservation
	require.NoError(s.T(), json.Unmarshal(env.Body, &r))

	rec, _ = s.do(http.MethodPut, "/api/staging/"+r.ID, s.TechToken, map[string]bool{"staged": true})
	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())

	rec, env = s.do(http.MethodGet, "/api/staging?date=2024-08-05", s.TechToken, nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	var list struct {
		Items []struct {
			ReservationID string `json:"reservationId"`
			Staged        bool   `json:"staged"`
		} `json:"items"`
		Stats struct {
			StagedCount int     `json:"stagedCount"`
			TotalCount  int     `json:"totalCount"`
			Percent     float64 `json:"percent"`
		} `json:"stats"`
	}
	require.NoError(s.T(), json.Unmarshal(env.Body, &list))
	require.Len(s.T(), list.Items, 1)
	assert.True(s.T(), list.Items[0].Staged)
	assert.Equal(s.T(), 1, list.Stats.StagedCount)
	assert.Equal(s.T(), 100.0, list.Stats.Percent)

	rec, _ = s.do(http.MethodGet, "/api/staging/export?date=2024-08-05", s.TechToken, nil)
	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Header().Get(echo.HeaderContentDisposition), "staging_2024-08-05.xlsx")
	assert.NotZero(s.T(), rec.Body.Len())
}

func (s *RouterTestSuite) TestCalendarWeek() {
	rec, _ := s.do(http.MethodPost, "/api/reservations", s.TechToken, s.booking("eq-1", "2024-08-05", "2024-08-06"))
	require.Equal(s.T(), http.StatusCreated, rec.Code)

	rec, env := s.do(http.MethodGet, "/api/calendar?anchor=2024-08-07&mode=week", s.TechToken, nil)
	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())

	var cal struct {
		Mode string   `json:"mode"`
		Days []string `json:"days"`
	}
	require.NoError(s.T(), json.Unmarshal(env.Body, &cal))
	assert.Equal(s.T(), "week", cal.Mode)
	require.Len(s.T(), cal.Days, 7)
	assert.Equal(s.T(), "2024-08-04", cal.Days[0])
}

func (s *RouterTestSuite) TestCatalogueAdmin() {
	s.T().Run("company in use cannot be deleted", func(t *testing.T) {
		rec, _ := s.do(http.MethodPost, "/api/reservations", s.TechToken, s.booking("eq-1", "2024-08-05", "2024-08-06"))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec, _ = s.do(http.MethodDelete, "/api/companies/co-1", s.AdminToken, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	s.T().Run("equipment delete cascades", func(t *testing.T) {
		rec, env := s.do(http.MethodDelete, "/api/equipment/eq-1", s.AdminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var res map[string]int64
		require.NoError(t, json.Unmarshal(env.Body, &res))
		assert.Equal(t, int64(1), res["deletedReservations"])
	})

	s.T().Run("duplicate gage id", func(t *testing.T) {
		rec, _ := s.do(http.MethodPost, "/api/equipment", s.AdminToken, map[string]string{"gageId": "G-1002", "description": "dup"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func (s *RouterTestSuite) TestImportEquipmentCSV() {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "equipment.csv")
	require.NoError(s.T(), err)
	_, err = part.Write([]byte("Gage ID,Description,Manufacturer,Model,Range,UOM\nG-1002,Micrometer 2,Mitutoyo,293,0-25,mm\nG-2001,Bore gauge,Mitutoyo,511,10-18,mm\n,missing key,,,,\n"))
	require.NoError(s.T(), err)
	require.NoError(s.T(), writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/equipment/import", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.AdminToken)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())

	var env envelope
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &env))
	var res struct {
		CreatedCount int `json:"createdCount"`
		UpdatedCount int `json:"updatedCount"`
		Errors       []struct {
			Row int `json:"row"`
		} `json:"errors"`
	}
	require.NoError(s.T(), json.Unmarshal(env.Body, &res))
	assert.Equal(s.T(), 1, res.CreatedCount)
	assert.Equal(s.T(), 1, res.UpdatedCount)
	require.Len(s.T(), res.Errors, 1)
	assert.Equal(s.T(), 4, res.Errors[0].Row)

	archived, err := filepath.Glob(filepath.Join(s.ArchiveDir, "imports", "equipment", "2024", "07", "29", "*.csv"))
	require.NoError(s.T(), err)
	assert.Len(s.T(), archived, 1)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
