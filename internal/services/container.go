package services

import (
	"log/slog"

	"timesheet/internal/notify"
	"timesheet/internal/policy"
	"timesheet/internal/repository/sqlstore"
	"timesheet/internal/validation"
)

// Options configures the services built by NewServiceContainer
type Options struct {
	DefaultTimezone string
	AdminSeesAdmins bool
	AppURL          string
	Limits          validation.Limits
}

// NewServiceContainer wires every service on top of one repository
func NewServiceContainer(repo sqlstore.Repository, dispatcher notify.Dispatcher, logger *slog.Logger, opts Options) *ServiceContainer {
	matrix := policy.New(policy.Options{AdminSeesAdmins: opts.AdminSeesAdmins})
	directory := NewDirectoryService(repo, opts.DefaultTimezone)

	return &ServiceContainer{
		Directory:   directory,
		Approval:    NewApprovalService(repo, directory, matrix, dispatcher, logger, opts.AppURL),
		TimeEntries: NewTimeService(repo, directory, opts.Limits),
		Reporting:   NewReportingService(repo, directory, matrix),
	}
}
