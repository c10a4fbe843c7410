package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"reservation-system/internal/dto"
	"reservation-system/internal/events"
	"reservation-system/internal/repositories"
	apperrors "reservation-system/pkg/errors"
	"reservation-system/pkg/eventbus"
	"reservation-system/pkg/types"
	"reservation-system/pkg/utils"
)

type ReservationServiceSuite struct {
	suite.Suite
	env *testEnv
	ctx context.Context
}

func (s *ReservationServiceSuite) SetupTest() {
	s.env = newTestEnv(s.T())
	s.ctx = context.Background()
}

func TestReservationServiceSuite(t *testing.T) {
	suite.Run(t, new(ReservationServiceSuite))
}

func (s *ReservationServiceSuite) TestCreate_SharedBoundaryDayConflicts() {
	s.env.book(s.T(), "eq-1", "tech-1", "2024-07-28", "2024-07-30")

	_, err := s.env.reservationService.CreateReservation(s.ctx, booking("eq-1", "tech-2", "2024-07-30", "2024-08-01"))
	s.Require().ErrorIs(err, apperrors.ErrConflict)
	s.Contains(apperrors.Message(err), `"G-1001"`)

	res, err := s.env.reservationService.CreateReservation(s.ctx, booking("eq-1", "tech-2", "2024-07-31", "2024-08-01"))
	s.Require().NoError(err)
	s.False(res.Staged)
	s.NotEmpty(res.ID)
	s.Equal(fixedNow, res.CreatedAt)
}

func (s *ReservationServiceSuite) TestCreate_OtherEquipmentDoesNotConflict() {
	s.env.book(s.T(), "eq-1", "tech-1", "2024-07-28", "2024-07-30")
	s.env.book(s.T(), "eq-2", "tech-1", "2024-07-28", "2024-07-30")
}

func (s *ReservationServiceSuite) TestCreate_Rejections() {
	tests := []struct {
		name string
		data dto.CreateReservationDTO
		kind error
	}{
		{"missing company", dto.CreateReservationDTO{EquipmentID: "eq-1", TechnicianID: "tech-1", PickupDate: "2024-08-01", ReturnDate: "2024-08-02"}, apperrors.ErrValidation},
		{"malformed date", booking("eq-1", "tech-1", "08/01/2024", "2024-08-02"), apperrors.ErrValidation},
		{"return before pickup", booking("eq-1", "tech-1", "2024-08-05", "2024-08-02"), apperrors.ErrValidation},
		{"unknown equipment", booking("eq-9", "tech-1", "2024-08-01", "2024-08-02"), apperrors.ErrNotFound},
		{"unknown technician", booking("eq-1", "tech-9", "2024-08-01", "2024-08-02"), apperrors.ErrNotFound},
		{"unknown company", dto.CreateReservationDTO{EquipmentID: "eq-1", TechnicianID: "tech-1", CompanyID: "co-9", PickupDate: "2024-08-01", ReturnDate: "2024-08-02"}, apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.env.reservationService.CreateReservation(s.ctx, tt.data)
			s.Require().Error(err)
			s.ErrorIs(err, tt.kind)
		})
	}

	all, err := s.env.reservationService.ListReservations(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *ReservationServiceSuite) TestCreate_SingleDayReservation() {
	res := s.env.book(s.T(), "eq-1", "tech-1", "2024-08-01", "2024-08-01")
	s.True(res.PickupDate.Equal(res.ReturnDate))
}

func (s *ReservationServiceSuite) TestBatch_AllOrNothing() {
	s.env.book(s.T(), "eq-2", "tech-2", "2024-08-02", "2024-08-03")

	_, err := s.env.reservationService.CreateBatchReservations(s.ctx, dto.CreateBatchReservationDTO{
		EquipmentIDs: []string{"eq-1", "eq-2", "eq-3"},
		TechnicianID: "tech-1",
		CompanyID:    "co-1",
		PickupDate:   "2024-08-01",
		ReturnDate:   "2024-08-02",
	})
	s.Require().ErrorIs(err, apperrors.ErrConflict)
	s.Contains(apperrors.Message(err), "G-1002")

	all, err := s.env.reservationService.ListReservations(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.Len(all, 1, "no partial batch may be committed")
}

func (s *ReservationServiceSuite) TestBatch_DeduplicatesEquipment() {
	created, err := s.env.reservationService.CreateBatchReservations(s.ctx, dto.CreateBatchReservationDTO{
		EquipmentIDs: []string{"eq-3", "eq-1", "eq-3"},
		TechnicianID: "tech-1",
		CompanyID:    "co-1",
		PickupDate:   "2024-08-01",
		ReturnDate:   "2024-08-02",
		Notes:        "site visit",
	})
	s.Require().NoError(err)
	s.Require().Len(created, 2)
	s.Equal("eq-3", created[0].EquipmentID)
	s.Equal("eq-1", created[1].EquipmentID)
	for _, r := range created {
		s.Equal("site visit", r.Notes)
		s.False(r.Staged)
	}
}

func (s *ReservationServiceSuite) TestBatch_UnknownEquipmentRollsBack() {
	_, err := s.env.reservationService.CreateBatchReservations(s.ctx, dto.CreateBatchReservationDTO{
		EquipmentIDs: []string{"eq-1", "eq-404"},
		TechnicianID: "tech-1",
		CompanyID:    "co-1",
		PickupDate:   "2024-08-01",
		ReturnDate:   "2024-08-02",
	})
	s.Require().ErrorIs(err, apperrors.ErrNotFound)

	n, err := s.env.reservations.CountReservations(s.ctx, repositories.ReservationFilter{})
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *ReservationServiceSuite) TestBatch_EmptyListIsValidationError() {
	_, err := s.env.reservationService.CreateBatchReservations(s.ctx, dto.CreateBatchReservationDTO{
		TechnicianID: "tech-1",
		CompanyID:    "co-1",
		PickupDate:   "2024-08-01",
		ReturnDate:   "2024-08-02",
	})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReservationServiceSuite) TestUpdate_ExcludesItself() {
	res := s.env.book(s.T(), "eq-1", "tech-1", "2024-08-01", "2024-08-03")
	s.env.book(s.T(), "eq-1", "tech-2", "2024-08-10", "2024-08-12")
	s.Require().NoError(s.env.stagingService.SetStaged(s.ctx, res.ID, true))

	update := dto.UpdateReservationDTO{
		EquipmentID:  "eq-1",
		TechnicianID: "tech-1",
		CompanyID:    "co-2",
		PickupDate:   "2024-08-02",
		ReturnDate:   "2024-08-04",
		Notes:        "moved",
	}
	updated, err := s.env.reservationService.UpdateReservation(s.ctx, res.ID, update)
	s.Require().NoError(err)
	s.Equal("co-2", updated.CompanyID)
	s.True(updated.Staged, "staged is kept when not supplied")
	s.Equal(res.CreatedAt, updated.CreatedAt)

	update.PickupDate, update.ReturnDate = "2024-08-09", "2024-08-10"
	_, err = s.env.reservationService.UpdateReservation(s.ctx, res.ID, update)
	s.ErrorIs(err, apperrors.ErrConflict)

	stored, err := s.env.reservationService.FindReservation(s.ctx, res.ID)
	s.Require().NoError(err)
	s.Equal("2024-08-02", stored.PickupDate.String())
}

func (s *ReservationServiceSuite) TestUpdate_Missing() {
	_, err := s.env.reservationService.UpdateReservation(s.ctx, "nope", dto.UpdateReservationDTO{
		EquipmentID: "eq-1", TechnicianID: "tech-1", CompanyID: "co-1", PickupDate: "2024-08-01", ReturnDate: "2024-08-02",
	})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ReservationServiceSuite) TestDelete() {
	res := s.env.book(s.T(), "eq-1", "tech-1", "2024-08-01", "2024-08-03")
	s.Require().NoError(s.env.reservationService.DeleteReservation(s.ctx, res.ID))
	s.ErrorIs(s.env.reservationService.DeleteReservation(s.ctx, res.ID), apperrors.ErrNotFound)

	// the slot is free again
	s.env.book(s.T(), "eq-1", "tech-2", "2024-08-01", "2024-08-03")
}

func (s *ReservationServiceSuite) TestListings() {
	s.env.book(s.T(), "eq-1", "tech-1", "2024-08-05", "2024-08-06")
	s.env.book(s.T(), "eq-2", "tech-1", "2024-07-01", "2024-07-02")
	s.env.book(s.T(), "eq-1", "tech-1", "2024-07-20", "2024-07-29")
	s.env.book(s.T(), "eq-3", "tech-2", "2024-07-30", "2024-07-31")

	all, err := s.env.reservationService.ListReservations(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.Require().Len(all, 4)
	for i := 1; i < len(all); i++ {
		s.False(all[i].PickupDate.Before(all[i-1].PickupDate), "sorted by pickup")
	}

	from, to := types.MustParseDate("2024-07-29"), types.MustParseDate("2024-07-30")
	window, err := s.env.reservationService.ListReservations(s.ctx, &from, &to)
	s.Require().NoError(err)
	s.Len(window, 2)

	_, err = s.env.reservationService.ListReservations(s.ctx, &to, &from)
	s.ErrorIs(err, apperrors.ErrValidation)

	split, err := s.env.reservationService.ClassifyReservationsForTechnician(s.ctx, "tech-1")
	s.Require().NoError(err)
	s.Len(split.Upcoming, 2, "a rental returning today is still current")
	s.Len(split.Past, 1)
	s.Equal("2024-07-20", split.Upcoming[0].PickupDate.String(), "upcoming soonest first")

	active, err := s.env.reservationService.ListReservationsForEquipment(s.ctx, "eq-1", true)
	s.Require().NoError(err)
	s.Len(active, 2)

	s.env.clock.Advance(24 * time.Hour)
	active, err = s.env.reservationService.ListReservationsForEquipment(s.ctx, "eq-1", true)
	s.Require().NoError(err)
	s.Len(active, 1)

	history, err := s.env.reservationService.ListReservationsForEquipment(s.ctx, "eq-1", false)
	s.Require().NoError(err)
	s.Len(history, 2)

	_, err = s.env.reservationService.ListReservationsForTechnician(s.ctx, "ghost")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ReservationServiceSuite) TestClassify_PastIsMostRecentFirst() {
	s.env.book(s.T(), "eq-1", "tech-1", "2024-07-01", "2024-07-02")
	s.env.book(s.T(), "eq-2", "tech-1", "2024-07-10", "2024-07-12")
	s.env.book(s.T(), "eq-3", "tech-1", "2024-06-15", "2024-06-20")
	s.env.book(s.T(), "eq-1", "tech-1", "2024-08-10", "2024-08-11")
	s.env.book(s.T(), "eq-2", "tech-1", "2024-08-02", "2024-08-03")

	split, err := s.env.reservationService.ClassifyReservationsForTechnician(s.ctx, "tech-1")
	s.Require().NoError(err)

	past := make([]string, len(split.Past))
	for i, r := range split.Past {
		past[i] = r.PickupDate.String()
	}
	s.Equal([]string{"2024-07-10", "2024-07-01", "2024-06-15"}, past)

	upcoming := make([]string, len(split.Upcoming))
	for i, r := range split.Upcoming {
		upcoming[i] = r.PickupDate.String()
	}
	s.Equal([]string{"2024-08-02", "2024-08-10"}, upcoming)

	_, err = s.env.reservationService.ListReservationsForTechnician(s.ctx, "ghost")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ReservationServiceSuite) TestCheckAvailability() {
	res := s.env.book(s.T(), "eq-1", "tech-1", "2024-07-28", "2024-07-30")
	pickup, ret := types.MustParseDate("2024-07-30"), types.MustParseDate("2024-08-01")

	got, err := s.env.reservationService.CheckAvailability(s.ctx, "eq-1", pickup, ret, "")
	s.Require().NoError(err)
	s.False(got.Available)
	s.Require().Len(got.Conflicts, 1)
	s.Equal(res.ID, got.Conflicts[0].ID)

	got, err = s.env.reservationService.CheckAvailability(s.ctx, "eq-1", pickup, ret, res.ID)
	s.Require().NoError(err)
	s.True(got.Available)
}

func (s *ReservationServiceSuite) TestCreatePublishesEventWithActor() {
	received := make(chan events.ReservationCreatedEvent, 1)
	s.env.bus.Subscribe(events.ReservationCreated, func(_ context.Context, e eventbus.Event) error {
		received <- e.(events.ReservationCreatedEvent)
		return nil
	})

	ctx := utils.WithUser(s.ctx, "admin-1", "ADMIN")
	res, err := s.env.reservationService.CreateReservation(ctx, booking("eq-1", "tech-1", "2024-08-01", "2024-08-01"))
	s.Require().NoError(err)

	select {
	case e := <-received:
		s.Equal("admin-1", e.ActorID)
		s.Equal(res.ID, e.Reservation.ID)
	case <-time.After(time.Second):
		s.Fail("reservation.created was not published")
	}
}

func TestCreateReservation_ConcurrentRequestsBookOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.reservationService.CreateReservation(ctx, booking("eq-1", "tech-1", "2024-08-01", "2024-08-05"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperrors.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	stored, err := env.reservations.GetReservations(ctx, repositories.ReservationFilter{EquipmentID: "eq-1"})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
