package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketgate/backend/internal/checklist"
	"github.com/ticketgate/backend/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict means the row changed underneath a conditional update.
	ErrConflict = errors.New("conflict")
	// ErrReference means a foreign key pointed at a missing row.
	ErrReference = errors.New("referenced row does not exist")
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return fmt.Errorf("%w: %s", ErrReference, pgErr.ConstraintName)
		case "22P02":
			// malformed uuid in a lookup is indistinguishable from a miss
			return ErrNotFound
		}
	}
	return err
}

const ticketColumns = `t.id::text, t.project_id::text, t.author_id, t.title, t.content, t.category, t.status,
	t.ai_feedback, t.metadata, t.created_at, t.updated_at, u.id, u.name, u.email`

func scanTicket(row pgx.Row) (models.Ticket, error) {
	var (
		t           models.Ticket
		category    string
		status      string
		feedback    []byte
		metadata    []byte
		authorID    *string
		authorName  *string
		authorEmail *string
	)
	err := row.Scan(&t.ID, &t.ProjectID, &t.AuthorID, &t.Title, &t.Content, &category, &status,
		&feedback, &metadata, &t.CreatedAt, &t.UpdatedAt, &authorID, &authorName, &authorEmail)
	if err != nil {
		return models.Ticket{}, err
	}
	t.Category = checklist.Category(category)
	t.Status = models.TicketStatus(status)
	if len(feedback) > 0 {
		t.AIFeedback = json.RawMessage(feedback)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return models.Ticket{}, fmt.Errorf("decode ticket metadata: %w", err)
		}
	}
	if authorID != nil {
		t.Author = &models.Author{ID: *authorID, Name: derefString(authorName), Email: derefString(authorEmail)}
	}
	return t, nil
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func encodeMetadata(md map[string]string) (*string, error) {
	if len(md) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(md)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func encodeFeedback(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}

// CreateTicket inserts t, assigning an id when empty, and returns the
// stored row with its author.
func (s *Store) CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	md, err := encodeMetadata(t.Metadata)
	if err != nil {
		return models.Ticket{}, err
	}
	row := s.Pool.QueryRow(ctx, `
		WITH t AS (
			INSERT INTO tickets (id, project_id, author_id, title, content, category, status, ai_feedback, metadata)
			VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb)
			RETURNING *
		)
		SELECT `+ticketColumns+` FROM t LEFT JOIN users u ON u.id = t.author_id`,
		t.ID, t.ProjectID, t.AuthorID, t.Title, t.Content, string(t.Category), string(t.Status),
		encodeFeedback(t.AIFeedback), md)
	out, err := scanTicket(row)
	if err != nil {
		return models.Ticket{}, mapError(err)
	}
	return out, nil
}

func (s *Store) GetTicket(ctx context.Context, id string) (models.Ticket, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+ticketColumns+`
		FROM tickets t LEFT JOIN users u ON u.id = t.author_id
		WHERE t.id = $1::uuid`, id)
	t, err := scanTicket(row)
	if err != nil {
		return models.Ticket{}, mapError(err)
	}
	return t, nil
}

// ListTickets returns every ticket, newest first, optionally scoped to a
// project. Visibility filtering is the caller's job.
func (s *Store) ListTickets(ctx context.Context, projectID string) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t LEFT JOIN users u ON u.id = t.author_id`
	var args []any
	if projectID != "" {
		args = append(args, projectID)
		query += " WHERE t.project_id = $1::uuid"
	}
	query += " ORDER BY t.created_at DESC, t.id"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTicket applies patch to a draft. A ticket that is no longer a
// draft yields ErrConflict.
func (s *Store) UpdateTicket(ctx context.Context, id string, patch models.TicketPatch) (models.Ticket, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Content != nil {
		args = append(args, *patch.Content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	if patch.Metadata != nil {
		md, err := encodeMetadata(patch.Metadata)
		if err != nil {
			return models.Ticket{}, err
		}
		args = append(args, md)
		sets = append(sets, fmt.Sprintf("metadata = $%d::jsonb", len(args)))
	}

	row := s.Pool.QueryRow(ctx, `
		WITH t AS (
			UPDATE tickets SET `+strings.Join(sets, ", ")+`
			WHERE id = $1::uuid AND status = 'draft'
			RETURNING *
		)
		SELECT `+ticketColumns+` FROM t LEFT JOIN users u ON u.id = t.author_id`, args...)
	t, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Ticket{}, s.missOrConflict(ctx, id)
	}
	if err != nil {
		return models.Ticket{}, mapError(err)
	}
	return t, nil
}

// UpdateTicketStatus moves a ticket from one status to another. The
// update only applies while the row is still in from, so two racing
// transitions cannot both win. A nil feedback keeps the stored value.
func (s *Store) UpdateTicketStatus(ctx context.Context, id string, from, to models.TicketStatus, feedback json.RawMessage) (models.Ticket, error) {
	row := s.Pool.QueryRow(ctx, `
		WITH t AS (
			UPDATE tickets
			SET status = $3, ai_feedback = COALESCE($4::jsonb, ai_feedback), updated_at = now()
			WHERE id = $1::uuid AND status = $2
			RETURNING *
		)
		SELECT `+ticketColumns+` FROM t LEFT JOIN users u ON u.id = t.author_id`,
		id, string(from), string(to), encodeFeedback(feedback))
	t, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Ticket{}, s.missOrConflict(ctx, id)
	}
	if err != nil {
		return models.Ticket{}, mapError(err)
	}
	return t, nil
}

func (s *Store) missOrConflict(ctx context.Context, id string) error {
	var exists bool
	err := s.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1::uuid)`, id).Scan(&exists)
	if err != nil {
		return mapError(err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *Store) DeleteTicket(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1::uuid`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountTicketsByStatus returns per-status counts across all tickets.
func (s *Store) CountTicketsByStatus(ctx context.Context) (map[models.TicketStatus]int, error) {
	rows, err := s.Pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[models.TicketStatus]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[models.TicketStatus(status)] = n
	}
	return out, rows.Err()
}

const projectColumns = `id::text, client_name, service_type, description, created_at, updated_at`

func scanProject(row pgx.Row) (models.Project, error) {
	var (
		p           models.Project
		serviceType string
	)
	if err := row.Scan(&p.ID, &p.ClientName, &serviceType, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Project{}, err
	}
	p.ServiceType = models.ServiceType(serviceType)
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	p, err := scanProject(s.Pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1::uuid`, id))
	if err != nil {
		return models.Project{}, mapError(err)
	}
	return p, nil
}

func (s *Store) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO projects (id, client_name, service_type, description)
		VALUES ($1::uuid, $2, $3, $4)
		RETURNING `+projectColumns, p.ID, p.ClientName, string(p.ServiceType), p.Description)
	out, err := scanProject(row)
	if err != nil {
		return models.Project{}, mapError(err)
	}
	return out, nil
}

func (s *Store) UpdateProject(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	if patch.ClientName != nil {
		args = append(args, *patch.ClientName)
		sets = append(sets, fmt.Sprintf("client_name = $%d", len(args)))
	}
	if patch.ServiceType != nil {
		args = append(args, string(*patch.ServiceType))
		sets = append(sets, fmt.Sprintf("service_type = $%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	row := s.Pool.QueryRow(ctx, `UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE id = $1::uuid RETURNING `+projectColumns, args...)
	p, err := scanProject(row)
	if err != nil {
		return models.Project{}, mapError(err)
	}
	return p, nil
}

// DeleteProject removes a project and, through the foreign key, its tickets.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1::uuid`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertProjects bulk-loads projects with COPY inside one transaction.
func (s *Store) InsertProjects(ctx context.Context, projects []models.Project) (int64, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(projects))
	for _, p := range projects {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return 0, fmt.Errorf("project id %q: %w", id, err)
		}
		rows = append(rows, []any{parsed, p.ClientName, string(p.ServiceType), p.Description, now, now})
	}

	var n int64
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		n, err = tx.CopyFrom(ctx, pgx.Identifier{"projects"},
			[]string{"id", "client_name", "service_type", "description", "created_at", "updated_at"},
			pgx.CopyFromRows(rows))
		return err
	})
	return n, err
}

// LookupSession resolves an unexpired session token to its user and role.
func (s *Store) LookupSession(ctx context.Context, token string) (models.Session, error) {
	var (
		sess models.Session
		role string
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT s.user_id, u.role, s.expires_at
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > now()`, token).Scan(&sess.UserID, &role, &sess.ExpiresAt)
	if err != nil {
		return models.Session{}, mapError(err)
	}
	sess.Role = models.Role(role)
	return sess, nil
}
