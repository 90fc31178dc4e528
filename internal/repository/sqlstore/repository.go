package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"timesheet/internal/errors"
	"timesheet/internal/repository/sqlstore/migrations"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Options configures how the store connects to its database
type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	QueryTimeout time.Duration
	WriteTimeout time.Duration
}

// Repository defines the interface for database operations
type Repository interface {
	// Organizations and membership
	CreateOrganization(ctx context.Context, org *Organization) error
	GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error)
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateMember(ctx context.Context, member *Member) error
	GetMemberByUser(ctx context.Context, orgID, userID uuid.UUID) (*Member, error)
	ListProfiles(ctx context.Context, orgID uuid.UUID) ([]*MemberProfile, error)
	GetProfileByUser(ctx context.Context, orgID, userID uuid.UUID) (*MemberProfile, error)
	GetProfileByMember(ctx context.Context, orgID, memberID uuid.UUID) (*MemberProfile, error)
	CreateTeam(ctx context.Context, team *Team) error
	AddTeamMember(ctx context.Context, teamID, userID uuid.UUID) error

	// Catalog
	CreateClient(ctx context.Context, client *Client) error
	ListClients(ctx context.Context, orgID uuid.UUID) ([]*Client, error)
	CreateProject(ctx context.Context, project *Project) error
	ListProjects(ctx context.Context, orgID uuid.UUID) ([]*Project, error)
	CreateTask(ctx context.Context, task *Task) error
	ListTasks(ctx context.Context, orgID uuid.UUID) ([]*Task, error)

	// Time entries
	CreateTimeEntry(ctx context.Context, entry *TimeEntry) error
	GetTimeEntry(ctx context.Context, id uuid.UUID) (*TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, entry *TimeEntry) error
	DeleteTimeEntry(ctx context.Context, id uuid.UUID) error
	SearchTimeEntries(ctx context.Context, opts SearchOptions) ([]*TimeEntry, error)
	ApplyApprovalChanges(ctx context.Context, changes []ApprovalChange) error

	// Utility
	Close() error
}

// Store implements Repository on top of database/sql
type Store struct {
	db           *sql.DB
	driver       string
	queryTimeout time.Duration
	writeTimeout time.Duration
	now          func() time.Time
}

// New opens a SQLite store at dbPath and applies migrations
func New(dbPath string) (*Store, error) {
	return Open(context.Background(), Options{Driver: DriverSQLite, DSN: dbPath})
}

// Open connects to the configured database and applies migrations
func Open(ctx context.Context, opts Options) (*Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var dialect migrations.Dialect
	switch driver {
	case DriverSQLite:
		dialect = migrations.SQLite
	case DriverMySQL:
		dialect = migrations.MySQL
	default:
		return nil, errors.NewInvalidInputError("driver", driver, "must be sqlite or mysql")
	}

	db, err := sql.Open(driver, opts.DSN)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	if driver == DriverSQLite {
		// an in-memory database lives and dies with its connection
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.NewDatabaseError("enable foreign keys", err)
		}
	} else if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("connect", err)
	}

	if err := migrations.RunMigrations(ctx, db, dialect); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &Store{
		db:           db,
		driver:       driver,
		queryTimeout: opts.QueryTimeout,
		writeTimeout: opts.WriteTimeout,
		now:          time.Now,
	}, nil
}

// DB exposes the underlying handle for maintenance commands
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect reports which migration set the store uses
func (s *Store) Dialect() migrations.Dialect {
	if s.driver == DriverMySQL {
		return migrations.MySQL
	}
	return migrations.SQLite
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, s.queryTimeout)
}

func (s *Store) writeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, s.writeTimeout)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// CreateOrganization inserts an organization, assigning an id when missing
func (s *Store) CreateOrganization(ctx context.Context, org *Organization) error {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	if org.Timezone == "" {
		org.Timezone = "UTC"
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = s.now()
	}

	query := `INSERT INTO organizations (id, name, timezone, created_at) VALUES (?, ?, ?, ?)`
	return Execute(ctx, s.db, query, org.ID, org.Name, org.Timezone, FormatTimeForDB(org.CreatedAt))
}

// GetOrganization retrieves an organization by ID
func (s *Store) GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	query := `SELECT id, name, timezone, created_at FROM organizations WHERE id = ?`
	return QuerySingle(ctx, s.db, query, ScanOrganization, "organization", id.String(), id)
}

// CreateUser inserts a user, assigning an id when missing
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}

	query := `INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`
	return Execute(ctx, s.db, query, user.ID, user.Name, user.Email, FormatTimeForDB(user.CreatedAt))
}

// GetUserByEmail retrieves a user by email address
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	query := `SELECT id, name, email, created_at FROM users WHERE email = ?`
	return QuerySingle(ctx, s.db, query, ScanUser, "user", email, email)
}

// CreateMember links a user to an organization
func (s *Store) CreateMember(ctx context.Context, member *Member) error {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = s.now()
	}

	query := `INSERT INTO members (id, organization_id, user_id, role, created_at) VALUES (?, ?, ?, ?, ?)`
	return Execute(ctx, s.db, query, member.ID, member.OrganizationID, member.UserID, member.Role, FormatTimeForDB(member.CreatedAt))
}

// GetMemberByUser finds the membership of a user in an organization
func (s *Store) GetMemberByUser(ctx context.Context, orgID, userID uuid.UUID) (*Member, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	query := `SELECT id, organization_id, user_id, role, created_at FROM members WHERE organization_id = ? AND user_id = ?`
	return QuerySingle(ctx, s.db, query, ScanMember, "member", userID.String(), orgID, userID)
}

const profileQuery = `
	SELECT members.id, members.organization_id, members.user_id, members.role, users.name, users.email
	FROM members
	JOIN users ON users.id = members.user_id`

// ListProfiles returns every member of an organization with user details and teams
func (s *Store) ListProfiles(ctx context.Context, orgID uuid.UUID) ([]*MemberProfile, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	query := profileQuery + ` WHERE members.organization_id = ? ORDER BY users.name ASC, members.id ASC`
	profiles, err := QueryMultiple(ctx, s.db, query, ScanProfiles, "members", orgID)
	if err != nil {
		return nil, err
	}
	if err := s.attachTeams(ctx, orgID, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetProfileByUser returns the profile of a user inside an organization
func (s *Store) GetProfileByUser(ctx context.Context, orgID, userID uuid.UUID) (*MemberProfile, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	query := profileQuery + ` WHERE members.organization_id = ? AND members.user_id = ?`
	profile, err := QuerySingle(ctx, s.db, query, ScanProfile, "member", userID.String(), orgID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachTeams(ctx, orgID, []*MemberProfile{profile}); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetProfileByMember returns the profile for a member id inside an organization
func (s *Store) GetProfileByMember(ctx context.Context, orgID, memberID uuid.UUID) (*MemberProfile, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	query := profileQuery + ` WHERE members.organization_id = ? AND members.id = ?`
	profile, err := QuerySingle(ctx, s.db, query, ScanProfile, "member", memberID.String(), orgID, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.attachTeams(ctx, orgID, []*MemberProfile{profile}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Store) attachTeams(ctx context.Context, orgID uuid.UUID, profiles []*MemberProfile) error {
	if len(profiles) == 0 {
		return nil
	}

	query := `
	SELECT team_user.user_id, teams.id, teams.organization_id, teams.name
	FROM team_user
	JOIN teams ON teams.id = team_user.team_id
	WHERE teams.organization_id = ?
	ORDER BY teams.name ASC`

	rows, err := s.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return HandleDatabaseError("query teams", err)
	}
	defer rows.Close()

	byUser := make(map[uuid.UUID][]Team)
	for rows.Next() {
		var userID uuid.UUID
		var team Team
		if err := rows.Scan(&userID, &team.ID, &team.OrganizationID, &team.Name); err != nil {
			return HandleDatabaseError("scan teams", err)
		}
		byUser[userID] = append(byUser[userID], team)
	}
	if err := rows.Err(); err != nil {
		return HandleDatabaseError("scan teams", err)
	}

	for _, p := range profiles {
		p.Teams = byUser[p.UserID]
	}
	return nil
}

// CreateTeam inserts a team
func (s *Store) CreateTeam(ctx context.Context, team *Team) error {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	query := `INSERT INTO teams (id, organization_id, name) VALUES (?, ?, ?)`
	return Execute(ctx, s.db, query, team.ID, team.OrganizationID, team.Name)
}

// AddTeamMember puts a user in a team
func (s *Store) AddTeamMember(ctx context.Context, teamID, userID uuid.UUID) error {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	query := `INSERT INTO team_user (team_id, user_id) VALUES (?, ?)`
	return Execute(ctx, s.db, query, teamID, userID)
}

// CreateClient inserts a client
func (s *Store) CreateClient(ctx context.Context, client *Client) error {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	query := `INSERT INTO clients (id, organization_id, name) VALUES (?, ?, ?)`
	return Execute(ctx, s.db, query, client.ID, client.OrganizationID, client.Name)
}

// ListClients returns the clients of an organization
func (s *Store) ListClients(ctx context.Context, orgID uuid.UUID) ([]*Client, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	query := `SELECT id, organization_id, name FROM clients WHERE organization_id = ? ORDER BY name ASC`
	return QueryMultiple(ctx, s.db, query, ScanClients, "clients", orgID)
}

// CreateProject inserts a project
func (s *Store) CreateProject(ctx context.Context, project *Project) error {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	query := `INSERT INTO projects (id, organization_id, client_id, name) VALUES (?, ?, ?, ?)`
	return Execute(ctx, s.db, query, project.ID, project.OrganizationID, project.ClientID, project.Name)
}

// ListProjects returns the projects of an organization
func (s *Store) ListProjects(ctx context.Context, orgID uuid.UUID) ([]*Project, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	query := `SELECT id, organization_id, client_id, name FROM projects WHERE organization_id = ? ORDER BY name ASC`
	return QueryMultiple(ctx, s.db, query, ScanProjects, "projects", orgID)
}

// CreateTask inserts a task
func (s *Store) CreateTask(ctx context.Context, task *Task) error {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	query := `INSERT INTO tasks (id, organization_id, project_id, name) VALUES (?, ?, ?, ?)`
	return Execute(ctx, s.db, query, task.ID, task.OrganizationID, task.ProjectID, task.Name)
}

// ListTasks returns the tasks of an organization
func (s *Store) ListTasks(ctx context.Context, orgID uuid.UUID) ([]*Task, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	query := `SELECT id, organization_id, project_id, name FROM tasks WHERE organization_id = ? ORDER BY name ASC`
	return QueryMultiple(ctx, s.db, query, ScanTasks, "tasks", orgID)
}

// CreateTimeEntry inserts a time entry
func (s *Store) CreateTimeEntry(ctx context.Context, entry *TimeEntry) error {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Approval == "" {
		entry.Approval = "unsubmitted"
	}
	now := s.now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	query := `
	INSERT INTO time_entries (id, organization_id, user_id, member_id, project_id, task_id, client_id,
		description, start_time, end_time, tags, billable, billable_rate, approval, approved_by,
		created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return Execute(ctx, s.db, query,
		entry.ID, entry.OrganizationID, entry.UserID, entry.MemberID,
		entry.ProjectID, entry.TaskID, entry.ClientID,
		entry.Description, FormatTimeForDB(entry.StartTime), FormatTimePtrForDB(entry.EndTime),
		FormatTagsForDB(entry.Tags), entry.Billable, entry.BillableRate,
		entry.Approval, entry.ApprovedBy,
		FormatTimeForDB(entry.CreatedAt), FormatTimeForDB(entry.UpdatedAt),
	)
}

// GetTimeEntry retrieves a time entry by ID
func (s *Store) GetTimeEntry(ctx context.Context, id uuid.UUID) (*TimeEntry, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = ?`
	return QuerySingle(ctx, s.db, query, ScanTimeEntry, "time entry", id.String(), id)
}

// UpdateTimeEntry rewrites the editable fields of a time entry
func (s *Store) UpdateTimeEntry(ctx context.Context, entry *TimeEntry) error {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	entry.UpdatedAt = s.now()
	query := `
	UPDATE time_entries
	SET project_id = ?, task_id = ?, client_id = ?, description = ?, start_time = ?, end_time = ?,
		tags = ?, billable = ?, billable_rate = ?, updated_at = ?
	WHERE id = ?`

	return ExecuteWithRowsAffected(ctx, s.db, query, "time entry", entry.ID.String(),
		entry.ProjectID, entry.TaskID, entry.ClientID, entry.Description,
		FormatTimeForDB(entry.StartTime), FormatTimePtrForDB(entry.EndTime),
		FormatTagsForDB(entry.Tags), entry.Billable, entry.BillableRate,
		FormatTimeForDB(entry.UpdatedAt), entry.ID,
	)
}

// DeleteTimeEntry deletes a time entry by ID
func (s *Store) DeleteTimeEntry(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	query := `DELETE FROM time_entries WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, s.db, query, "time entry", id.String(), id)
}

// SearchTimeEntries searches for time entries based on the provided options
func (s *Store) SearchTimeEntries(ctx context.Context, opts SearchOptions) ([]*TimeEntry, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	var conditions []string
	var args []any

	if opts.OrganizationID != nil {
		conditions = append(conditions, "organization_id = ?")
		args = append(args, *opts.OrganizationID)
	}
	if opts.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *opts.UserID)
	}
	if opts.MemberID != nil {
		conditions = append(conditions, "member_id = ?")
		args = append(args, *opts.MemberID)
	}
	if len(opts.IDs) > 0 {
		conditions = append(conditions, "id IN ("+placeholders(len(opts.IDs))+")")
		for _, id := range opts.IDs {
			args = append(args, id)
		}
	}
	if len(opts.Approvals) > 0 {
		conditions = append(conditions, "approval IN ("+placeholders(len(opts.Approvals))+")")
		for _, a := range opts.Approvals {
			args = append(args, a)
		}
	}
	if opts.StartTime != nil {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, FormatTimeForDB(*opts.StartTime))
	}
	if opts.EndTime != nil {
		conditions = append(conditions, "start_time <= ?")
		args = append(args, FormatTimeForDB(*opts.EndTime))
	}

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time ASC, id ASC"

	return QueryMultiple(ctx, s.db, query, ScanTimeEntries, "time entries", args...)
}

// ApplyApprovalChanges moves every entry to its new approval state in one
// transaction. Each row must still be in its expected state; otherwise the
// whole batch is rolled back with a conflict naming the stale entries.
func (s *Store) ApplyApprovalChanges(ctx context.Context, changes []ApprovalChange) error {
	if len(changes) == 0 {
		return nil
	}

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return HandleDatabaseError("begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
	UPDATE time_entries
	SET approval = ?, approved_by = ?, updated_at = ?
	WHERE id = ? AND approval = ?`)
	if err != nil {
		return HandleDatabaseError("prepare approval update", err)
	}
	defer stmt.Close()

	updatedAt := FormatTimeForDB(s.now())
	var stale []string
	for _, c := range changes {
		result, err := stmt.ExecContext(ctx, c.To, c.ApprovedBy, updatedAt, c.ID, c.From)
		if err != nil {
			return HandleDatabaseError("update approval", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return HandleDatabaseError("get rows affected", err)
		}
		if n == 0 {
			stale = append(stale, c.ID.String())
		}
	}
	if len(stale) > 0 {
		return errors.NewConflictError("approval change", stale)
	}

	if err := tx.Commit(); err != nil {
		return HandleDatabaseError("commit transaction", err)
	}
	return nil
}
