package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"reservation-system/internal/dto"
	"reservation-system/internal/entities"
	"reservation-system/internal/repositories"
	apperrors "reservation-system/pkg/errors"
	"reservation-system/pkg/types"
)

type ViewMode string

const (
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

// ParseViewMode defaults to month.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case "", ViewMonth:
		return ViewMonth, nil
	case ViewWeek:
		return ViewWeek, nil
	}
	return "", apperrors.NewFieldValidationError(map[string]string{"mode": "must be one of week month"})
}

// DaysInView lists the visible days for anchor. Week mode starts on the
// Sunday on or before anchor. Month mode covers the anchor's month padded
// out to whole Sunday..Saturday weeks.
func DaysInView(anchor types.Date, mode ViewMode) []types.Date {
	var start, end types.Date
	switch mode {
	case ViewWeek:
		start = startOfWeek(anchor)
		end = start.AddDays(6)
	default:
		first := types.NewDate(anchor.Year(), anchor.Month(), 1)
		last := types.NewDate(anchor.Year(), anchor.Month()+1, 0)
		start = startOfWeek(first)
		end = last.AddDays(int(time.Saturday - last.Weekday()))
	}

	days := make([]types.Date, 0, start.DaysUntil(end)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func startOfWeek(d types.Date) types.Date {
	return d.AddDays(-int(d.Weekday()))
}

type TechnicianDayGroup struct {
	TechnicianID string
	Reservations []entities.Reservation
}

type DayProjection struct {
	Date        types.Date
	Technicians []TechnicianDayGroup
}

// ProjectByDay groups, for every day, the reservations occupying it by
// technician. Technicians appear in the order they first occur in
// reservations.
func ProjectByDay(days []types.Date, reservations []entities.Reservation) []DayProjection {
	out := make([]DayProjection, len(days))
	for i, day := range days {
		out[i] = DayProjection{Date: day, Technicians: []TechnicianDayGroup{}}
		index := make(map[string]int)
		for _, r := range reservations {
			if !r.Occupies(day) {
				continue
			}
			pos, ok := index[r.TechnicianID]
			if !ok {
				pos = len(out[i].Technicians)
				index[r.TechnicianID] = pos
				out[i].Technicians = append(out[i].Technicians, TechnicianDayGroup{TechnicianID: r.TechnicianID})
			}
			out[i].Technicians[pos].Reservations = append(out[i].Technicians[pos].Reservations, r)
		}
	}
	return out
}

type WeekSpan struct {
	Reservation entities.Reservation
	StartIndex  int
	DayCount    int
}

type TechnicianSpans struct {
	TechnicianID string
	Spans        []WeekSpan
}

// ProjectSpans turns each reservation into a horizontal bar clipped to the
// visible days. Reservations entirely outside the window are dropped.
func ProjectSpans(days []types.Date, reservations []entities.Reservation) []TechnicianSpans {
	out := []TechnicianSpans{}
	if len(days) == 0 {
		return out
	}
	first, last := days[0], days[len(days)-1]
	index := make(map[string]int)

	for _, r := range reservations {
		start, end := r.PickupDate, r.ReturnDate
		if start.Before(first) {
			start = first
		}
		if end.After(last) {
			end = last
		}
		if start.After(end) {
			continue
		}

		pos, ok := index[r.TechnicianID]
		if !ok {
			pos = len(out)
			index[r.TechnicianID] = pos
			out = append(out, TechnicianSpans{TechnicianID: r.TechnicianID})
		}
		out[pos].Spans = append(out[pos].Spans, WeekSpan{
			Reservation: r,
			StartIndex:  first.DaysUntil(start),
			DayCount:    start.DaysUntil(end) + 1,
		})
	}
	return out
}

type CalendarServiceInterface interface {
	GetCalendar(ctx context.Context, anchor types.Date, mode ViewMode, technicianID string) (*dto.CalendarDTO, error)
}

type CalendarService struct {
	reservationRepo repositories.ReservationRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	logger          *zap.Logger
}

func NewCalendarService(
	reservationRepo repositories.ReservationRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) CalendarServiceInterface {
	return &CalendarService{reservationRepo: reservationRepo, userRepo: userRepo, logger: logger}
}

func (s *CalendarService) GetCalendar(ctx context.Context, anchor types.Date, mode ViewMode, technicianID string) (*dto.CalendarDTO, error) {
	days := DaysInView(anchor, mode)
	from, to := days[0], days[len(days)-1]

	reservations, err := s.reservationRepo.GetReservations(ctx, repositories.ReservationFilter{
		TechnicianID: technicianID,
		From:         &from,
		To:           &to,
	})
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	technicians := make(map[string]dto.TechnicianRefDTO, len(users))
	for i := range users {
		technicians[users[i].ID] = dto.TechnicianRefDTO{
			ID:           users[i].ID,
			Name:         users[i].Name,
			DisplayColor: ResolveDisplayColor(&users[i]),
		}
	}

	visible := reservations[:0:0]
	for _, r := range reservations {
		if _, ok := technicians[r.TechnicianID]; !ok {
			s.logger.Debug("calendar: technician missing", zap.String("reservationID", r.ID))
			continue
		}
		visible = append(visible, r)
	}

	out := &dto.CalendarDTO{Mode: string(mode), Anchor: anchor, Days: days}
	if mode == ViewWeek {
		out.Rows = make([]dto.CalendarWeekRowDTO, 0)
		for _, row := range ProjectSpans(days, visible) {
			spans := make([]dto.CalendarWeekSpanDTO, len(row.Spans))
			for i, sp := range row.Spans {
				spans[i] = dto.CalendarWeekSpanDTO{Reservation: sp.Reservation, StartIndex: sp.StartIndex, DayCount: sp.DayCount}
			}
			out.Rows = append(out.Rows, dto.CalendarWeekRowDTO{Technician: technicians[row.TechnicianID], Spans: spans})
		}
		return out, nil
	}

	out.Cells = make([]dto.CalendarDayDTO, 0, len(days))
	for _, day := range ProjectByDay(days, visible) {
		cell := dto.CalendarDayDTO{
			Date:        day.Date,
			InMonth:     day.Date.Month() == anchor.Month(),
			Technicians: make([]dto.CalendarTechnicianDTO, 0, len(day.Technicians)),
		}
		for _, g := range day.Technicians {
			cell.Technicians = append(cell.Technicians, dto.CalendarTechnicianDTO{
				Technician:   technicians[g.TechnicianID],
				Reservations: g.Reservations,
			})
		}
		out.Cells = append(out.Cells, cell)
	}
	return out, nil
}
