package sqlstore

import (
	"database/sql"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...any) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// timeEntryColumns is the column order ScanTimeEntry expects
const timeEntryColumns = `time_entries.id, time_entries.organization_id, time_entries.user_id,
	time_entries.member_id, time_entries.project_id, time_entries.task_id, time_entries.client_id,
	time_entries.description, time_entries.start_time, time_entries.end_time, time_entries.tags,
	time_entries.billable, time_entries.billable_rate, time_entries.approval, time_entries.approved_by,
	time_entries.created_at, time_entries.updated_at`

// ScanTimeEntry scans a single time entry from a database row
func ScanTimeEntry(scanner Scanner) (*TimeEntry, error) {
	entry := &TimeEntry{}
	var (
		start, created, updated, tags string
		end                           sql.NullString
	)

	err := scanner.Scan(
		&entry.ID,
		&entry.OrganizationID,
		&entry.UserID,
		&entry.MemberID,
		&entry.ProjectID,
		&entry.TaskID,
		&entry.ClientID,
		&entry.Description,
		&start,
		&end,
		&tags,
		&entry.Billable,
		&entry.BillableRate,
		&entry.Approval,
		&entry.ApprovedBy,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	if entry.StartTime, err = ParseTimeFromDB(start); err != nil {
		return nil, err
	}
	if entry.EndTime, err = ParseNullTimeFromDB(end); err != nil {
		return nil, err
	}
	if entry.Tags, err = ParseTagsFromDB(tags); err != nil {
		return nil, err
	}
	if entry.CreatedAt, err = ParseTimeFromDB(created); err != nil {
		return nil, err
	}
	if entry.UpdatedAt, err = ParseTimeFromDB(updated); err != nil {
		return nil, err
	}

	return entry, nil
}

// ScanTimeEntries scans multiple time entries from database rows
func ScanTimeEntries(rows Rows) ([]*TimeEntry, error) {
	return scanAll(rows, ScanTimeEntry)
}

// ScanOrganization scans a single organization
func ScanOrganization(scanner Scanner) (*Organization, error) {
	org := &Organization{}
	var created string
	if err := scanner.Scan(&org.ID, &org.Name, &org.Timezone, &created); err != nil {
		return nil, err
	}
	var err error
	if org.CreatedAt, err = ParseTimeFromDB(created); err != nil {
		return nil, err
	}
	return org, nil
}

// ScanUser scans a single user
func ScanUser(scanner Scanner) (*User, error) {
	user := &User{}
	var created string
	if err := scanner.Scan(&user.ID, &user.Name, &user.Email, &created); err != nil {
		return nil, err
	}
	var err error
	if user.CreatedAt, err = ParseTimeFromDB(created); err != nil {
		return nil, err
	}
	return user, nil
}

// ScanMember scans a single member
func ScanMember(scanner Scanner) (*Member, error) {
	member := &Member{}
	var created string
	if err := scanner.Scan(&member.ID, &member.OrganizationID, &member.UserID, &member.Role, &created); err != nil {
		return nil, err
	}
	var err error
	if member.CreatedAt, err = ParseTimeFromDB(created); err != nil {
		return nil, err
	}
	return member, nil
}

// ScanMembers scans multiple members
func ScanMembers(rows Rows) ([]*Member, error) {
	return scanAll(rows, ScanMember)
}

// ScanProfile scans a member joined with its user; teams are loaded separately
func ScanProfile(scanner Scanner) (*MemberProfile, error) {
	p := &MemberProfile{}
	err := scanner.Scan(&p.MemberID, &p.OrganizationID, &p.UserID, &p.Role, &p.Name, &p.Email)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ScanProfiles scans multiple member profiles
func ScanProfiles(rows Rows) ([]*MemberProfile, error) {
	return scanAll(rows, ScanProfile)
}

// ScanTeam scans a single team
func ScanTeam(scanner Scanner) (*Team, error) {
	team := &Team{}
	if err := scanner.Scan(&team.ID, &team.OrganizationID, &team.Name); err != nil {
		return nil, err
	}
	return team, nil
}

// ScanTeams scans multiple teams
func ScanTeams(rows Rows) ([]*Team, error) {
	return scanAll(rows, ScanTeam)
}

// ScanClient scans a single client
func ScanClient(scanner Scanner) (*Client, error) {
	client := &Client{}
	if err := scanner.Scan(&client.ID, &client.OrganizationID, &client.Name); err != nil {
		return nil, err
	}
	return client, nil
}

// ScanClients scans multiple clients
func ScanClients(rows Rows) ([]*Client, error) {
	return scanAll(rows, ScanClient)
}

// ScanProject scans a single project
func ScanProject(scanner Scanner) (*Project, error) {
	project := &Project{}
	if err := scanner.Scan(&project.ID, &project.OrganizationID, &project.ClientID, &project.Name); err != nil {
		return nil, err
	}
	return project, nil
}

// ScanProjects scans multiple projects
func ScanProjects(rows Rows) ([]*Project, error) {
	return scanAll(rows, ScanProject)
}

// ScanTask scans a single task
func ScanTask(scanner Scanner) (*Task, error) {
	task := &Task{}
	if err := scanner.Scan(&task.ID, &task.OrganizationID, &task.ProjectID, &task.Name); err != nil {
		return nil, err
	}
	return task, nil
}

// ScanTasks scans multiple tasks
func ScanTasks(rows Rows) ([]*Task, error) {
	return scanAll(rows, ScanTask)
}

func scanAll[T any](rows Rows, scan func(Scanner) (*T, error)) ([]*T, error) {
	var results []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
