package services

import (
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"reservation-system/internal/repositories"
	"reservation-system/pkg/eventbus"
)

// Repositories is the storage a Registry runs on. Cache may be nil.
type Repositories struct {
	Tx           repositories.TxManagerInterface
	Users        repositories.UserRepositoryInterface
	Companies    repositories.CompanyRepositoryInterface
	Equipment    repositories.EquipmentRepositoryInterface
	Reservations repositories.ReservationRepositoryInterface
	Cache        repositories.CacheRepositoryInterface
}

type Registry struct {
	Roles        AuthRoleServiceInterface
	Users        UserServiceInterface
	Companies    CompanyServiceInterface
	Equipment    EquipmentServiceInterface
	Reservations ReservationServiceInterface
	Staging      StagingServiceInterface
	Calendar     CalendarServiceInterface
}

func NewRegistry(repos Repositories, bus *eventbus.Bus, clock clockwork.Clock, logger *zap.Logger, roleCacheTTL time.Duration) *Registry {
	availability := NewAvailabilityService(repos.Reservations, logger.Named("availability"))
	roles := NewAuthRoleService(repos.Users, repos.Cache, logger.Named("auth"), roleCacheTTL)

	return &Registry{
		Roles:     roles,
		Users:     NewUserService(repos.Tx, repos.Users, repos.Reservations, roles, clock, logger.Named("users")),
		Companies: NewCompanyService(repos.Tx, repos.Companies, repos.Reservations, clock, logger.Named("companies")),
		Equipment: NewEquipmentService(repos.Tx, repos.Equipment, repos.Reservations, bus, clock, logger.Named("equipment")),
		Reservations: NewReservationService(
			repos.Tx, repos.Reservations, repos.Equipment, repos.Users, repos.Companies,
			availability, bus, clock, logger.Named("reservations"),
		),
		Staging:  NewStagingService(repos.Reservations, repos.Equipment, repos.Users, repos.Companies, bus, clock, logger.Named("staging")),
		Calendar: NewCalendarService(repos.Reservations, repos.Users, logger.Named("calendar")),
	}
}
