package services

import (
	"context"

	"github.com/google/uuid"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/period"
	"timesheet/internal/repository/sqlstore"
)

// directoryServiceImpl implements the DirectoryService interface
type directoryServiceImpl struct {
	repo            sqlstore.Repository
	mapper          *domain.Mapper
	defaultTimezone string
}

// NewDirectoryService creates a new DirectoryService instance. defaultTimezone
// applies to organizations without a timezone of their own.
func NewDirectoryService(repo sqlstore.Repository, defaultTimezone string) DirectoryService {
	return &directoryServiceImpl{
		repo:            repo,
		mapper:          domain.NewMapper(),
		defaultTimezone: defaultTimezone,
	}
}

// ResolveActor loads the membership of userID in orgID. Users outside the
// organization are refused rather than reported missing.
func (d *directoryServiceImpl) ResolveActor(ctx context.Context, orgID, userID uuid.UUID) (domain.Actor, error) {
	row, err := d.repo.GetProfileByUser(ctx, orgID, userID)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return domain.Actor{}, errors.NewPermissionError("access", "organization "+orgID.String())
		}
		return domain.Actor{}, err
	}

	profile := d.mapper.Profile.FromDatabase(*row)
	if !profile.Role.Valid() {
		return domain.Actor{}, errors.NewInvalidInputError("role", string(profile.Role), "unknown member role")
	}
	return domain.ActorFromProfile(profile), nil
}

// Organization returns an organization by id
func (d *directoryServiceImpl) Organization(ctx context.Context, orgID uuid.UUID) (domain.Organization, error) {
	row, err := d.repo.GetOrganization(ctx, orgID)
	if err != nil {
		return domain.Organization{}, err
	}
	return d.mapper.Organization.FromDatabase(*row), nil
}

// Profiles returns every member of an organization
func (d *directoryServiceImpl) Profiles(ctx context.Context, orgID uuid.UUID) ([]domain.Profile, error) {
	rows, err := d.repo.ListProfiles(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return d.mapper.Profile.FromDatabaseSlice(rows), nil
}

// Calculator returns a period calculator in the organization's timezone
func (d *directoryServiceImpl) Calculator(ctx context.Context, orgID uuid.UUID) (period.Calculator, error) {
	org, err := d.Organization(ctx, orgID)
	if err != nil {
		return period.Calculator{}, err
	}
	zone := org.Timezone
	if zone == "" {
		zone = d.defaultTimezone
	}
	return period.NewForZone(zone)
}
