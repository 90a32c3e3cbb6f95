package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"raffle/internal/ledger"
	"raffle/internal/raffle/models"
	id "raffle/pkg/domain"
	dErrors "raffle/pkg/domain-errors"
	"raffle/pkg/platform/sentinel"
	txcontext "raffle/pkg/platform/tx"
)

//go:embed schema.sql
var Schema string

// Migrate creates the raffle and audit tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply raffle schema: %w", err)
	}
	return nil
}

// Postgres stores raffles in PostgreSQL. Rows are locked with SELECT ... FOR
// UPDATE inside the transaction RunInTx opens.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type pgTx struct {
	q txcontext.Querier
}

func (s *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if existing, ok := txcontext.From(ctx); ok {
		return fn(ctx, &pgTx{q: existing})
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	if err := fn(txcontext.WithTx(ctx, sqlTx), &pgTx{q: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}

func (t *pgTx) LoadRegistry(ctx context.Context) (*models.Registry, error) {
	var (
		registry models.Registry
		deployer sql.NullString
	)
	err := t.q.QueryRowContext(ctx, `
		SELECT initialized, raffle_count, deployer
		FROM raffle_registry
		WHERE id = 1
		FOR UPDATE
	`).Scan(&registry.Initialized, &registry.RaffleCount, &deployer)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	if deployer.Valid {
		if registry.Deployer, err = id.ParseIdentity(deployer.String); err != nil {
			return nil, fmt.Errorf("parse deployer: %w", err)
		}
	}
	return &registry, nil
}

func (t *pgTx) SaveRegistry(ctx context.Context, registry *models.Registry) error {
	var deployer sql.NullString
	if !registry.Deployer.IsZero() {
		deployer = sql.NullString{String: registry.Deployer.String(), Valid: true}
	}
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO raffle_registry (id, initialized, raffle_count, deployer)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			initialized = EXCLUDED.initialized,
			raffle_count = EXCLUDED.raffle_count,
			deployer = EXCLUDED.deployer
	`, registry.Initialized, int64(registry.RaffleCount), deployer)
	if err != nil {
		return fmt.Errorf("save registry: %w", translatePgError(err))
	}
	return nil
}

const raffleColumns = `id, creator, asset_ref, entry_fee, max_entries, entries,
	partial_winner, winner, active, locked, expiry_date, created_at, escrow`

func (t *pgTx) LoadRaffle(ctx context.Context, raffleID id.RaffleID) (*models.Raffle, error) {
	row := t.q.QueryRowContext(ctx,
		`SELECT `+raffleColumns+` FROM raffles WHERE id = $1 FOR UPDATE`, int64(raffleID))
	r, err := scanRaffle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (t *pgTx) SaveRaffle(ctx context.Context, r *models.Raffle) error {
	entries := make([]string, 0, r.Entries.Len())
	for _, e := range r.Entries.Items() {
		entries = append(entries, e.String())
	}
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO raffles (`+raffleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			entries = EXCLUDED.entries,
			partial_winner = EXCLUDED.partial_winner,
			winner = EXCLUDED.winner,
			active = EXCLUDED.active,
			locked = EXCLUDED.locked
	`,
		int64(r.ID),
		r.Creator.String(),
		r.AssetRef.String(),
		strconv.FormatUint(r.EntryFee, 10),
		int16(r.MaxEntries),
		pq.Array(entries),
		nullIdentity(r.PartialWinner),
		nullIdentity(r.Winner),
		r.Active,
		r.Locked,
		r.ExpiryDate,
		r.CreatedAt,
		string(r.Escrow),
	)
	if err != nil {
		return fmt.Errorf("save raffle %d: %w", r.ID, translatePgError(err))
	}
	return nil
}

// -----------------------------------------------------------------------------
// Reads outside a transaction
// -----------------------------------------------------------------------------

func (s *Postgres) GetRegistry(ctx context.Context) (*models.Registry, error) {
	var (
		registry models.Registry
		deployer sql.NullString
	)
	err := txcontext.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT initialized, raffle_count, deployer FROM raffle_registry WHERE id = 1`,
	).Scan(&registry.Initialized, &registry.RaffleCount, &deployer)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get registry: %w", err)
	}
	if deployer.Valid {
		if registry.Deployer, err = id.ParseIdentity(deployer.String); err != nil {
			return nil, fmt.Errorf("parse deployer: %w", err)
		}
	}
	return &registry, nil
}

func (s *Postgres) GetRaffle(ctx context.Context, raffleID id.RaffleID) (*models.Raffle, error) {
	row := txcontext.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+raffleColumns+` FROM raffles WHERE id = $1`, int64(raffleID))
	r, err := scanRaffle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return r, err
}

// ListRaffles returns matching raffles ordered by id.
func (s *Postgres) ListRaffles(ctx context.Context, filter models.ListFilter) ([]*models.Raffle, error) {
	var (
		where []string
		args  []any
	)
	if filter.Creator != nil {
		args = append(args, filter.Creator.String())
		where = append(where, fmt.Sprintf("creator = $%d", len(args)))
	}
	if filter.Participant != nil {
		args = append(args, filter.Participant.String())
		where = append(where, fmt.Sprintf("$%d = ANY(entries)", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where = append(where, fmt.Sprintf("active = $%d", len(args)))
	}

	query := `SELECT ` + raffleColumns + ` FROM raffles`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, listLimit(filter.Limit))
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d`, len(args))

	rows, err := txcontext.QuerierFrom(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list raffles: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Raffle, 0)
	for rows.Next() {
		r, err := scanRaffle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raffles: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRaffle(row rowScanner) (*models.Raffle, error) {
	var (
		rawID         int64
		creator       string
		assetRef      string
		entryFee      string
		maxEntries    int16
		entries       []string
		partialWinner sql.NullString
		winner        sql.NullString
		r             models.Raffle
		expiry        time.Time
		created       time.Time
		escrow        string
	)
	err := row.Scan(&rawID, &creator, &assetRef, &entryFee, &maxEntries, pq.Array(&entries),
		&partialWinner, &winner, &r.Active, &r.Locked, &expiry, &created, &escrow)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan raffle: %w", err)
	}

	r.ID = id.RaffleID(rawID)
	r.MaxEntries = uint8(maxEntries)
	r.ExpiryDate = expiry.UTC()
	r.CreatedAt = created.UTC()
	r.Escrow = ledger.Account(escrow)
	if r.Creator, err = id.ParseIdentity(creator); err != nil {
		return nil, fmt.Errorf("parse creator: %w", err)
	}
	if r.AssetRef, err = id.ParseAssetID(assetRef); err != nil {
		return nil, fmt.Errorf("parse asset: %w", err)
	}
	if r.EntryFee, err = strconv.ParseUint(entryFee, 10, 64); err != nil {
		return nil, fmt.Errorf("parse entry fee: %w", err)
	}

	participants := make([]id.Identity, 0, len(entries))
	for _, e := range entries {
		p, err := id.ParseIdentity(e)
		if err != nil {
			return nil, fmt.Errorf("parse entry: %w", err)
		}
		participants = append(participants, p)
	}
	if r.Entries, err = models.RestoreEntries(int(r.MaxEntries), participants); err != nil {
		return nil, err
	}
	if r.PartialWinner, err = parseNullIdentity(partialWinner); err != nil {
		return nil, err
	}
	if r.Winner, err = parseNullIdentity(winner); err != nil {
		return nil, err
	}
	return &r, nil
}

// SQLSTATE codes the store translates.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// translatePgError maps constraint and concurrency failures onto sentinels
// and leaves everything else untouched.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", sentinel.ErrConflict, pgErr.ConstraintName)
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return fmt.Errorf("%w: %s", sentinel.ErrUnavailable, pgErr.Code)
	}
	return err
}

func nullIdentity(v *id.Identity) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func parseNullIdentity(v sql.NullString) (*id.Identity, error) {
	if !v.Valid {
		return nil, nil
	}
	parsed, err := id.ParseIdentity(v.String)
	if err != nil {
		return nil, fmt.Errorf("parse identity: %w", err)
	}
	return &parsed, nil
}
