package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/neomorfeo/venuedir/internal/domain"
)

var _ domain.ProposalRepository = (*ProposalRepository)(nil)

// ProposalRepository implements domain.ProposalRepository on edit_proposals.
// Proposed changes and current values are stored as JSON text.
type ProposalRepository struct {
	db *sql.DB
}

const proposalColumns = `id, kind, item_type, item_id, proposed_changes, current_values, proposed_by,
	status, moderator_id, moderator_notes, reviewed_at, created_at`

func (r *ProposalRepository) Create(ctx context.Context, p domain.Proposal) error {
	changes, err := json.Marshal(p.Changes)
	if err != nil {
		return fmt.Errorf("encoding proposed changes: %w", err)
	}

	var current sql.NullString
	if len(p.CurrentValues) > 0 {
		current = sql.NullString{String: string(p.CurrentValues), Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO edit_proposals (`+proposalColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(p.Kind), string(p.ItemType), p.ItemID, string(changes), current,
		p.ProposedBy, string(p.Status),
		nullString(p.ModeratorID), nullString(p.ModeratorNotes),
		formatNullTime(p.ReviewedAt), formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting proposal: %w", err)
	}
	return nil
}

func (r *ProposalRepository) GetByID(ctx context.Context, id string) (domain.Proposal, error) {
	p, err := scanProposal(r.db.QueryRowContext(ctx,
		`SELECT `+proposalColumns+` FROM edit_proposals WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Proposal{}, domain.ErrProposalNotFound
	}
	return p, err
}

func (r *ProposalRepository) List(ctx context.Context, filter domain.ProposalFilter) ([]domain.Proposal, error) {
	var conds []string
	var args []any

	if filter.Status != nil {
		conds = append(conds, `status = ?`)
		args = append(args, string(*filter.Status))
	}
	if filter.Kind != nil {
		conds = append(conds, `kind = ?`)
		args = append(args, string(*filter.Kind))
	}
	if filter.ItemType != nil {
		conds = append(conds, `item_type = ?`)
		args = append(args, string(*filter.ItemType))
	}
	if filter.ItemID != "" {
		conds = append(conds, `item_id = ?`)
		args = append(args, filter.ItemID)
	}
	if filter.ProposedBy != "" {
		conds = append(conds, `proposed_by = ?`)
		args = append(args, filter.ProposedBy)
	}

	query := `SELECT ` + proposalColumns + ` FROM edit_proposals` + where(conds) + ` ORDER BY created_at DESC, id DESC`
	query, args = page(query, args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	defer rows.Close()

	var proposals []domain.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}

	return proposals, rows.Err()
}

// Review stores the verdict with a conditional update, so two moderators
// racing on one proposal cannot both win.
func (r *ProposalRepository) Review(ctx context.Context, p domain.Proposal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE edit_proposals
		 SET status = ?, moderator_id = ?, moderator_notes = ?, reviewed_at = ?
		 WHERE id = ? AND status = 'pending'`,
		string(p.Status), nullString(p.ModeratorID), nullString(p.ModeratorNotes),
		formatNullTime(p.ReviewedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("reviewing proposal: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, p.ID); err != nil {
		return err
	}
	return domain.ErrAlreadyReviewed
}

func scanProposal(row rowScanner) (domain.Proposal, error) {
	var p domain.Proposal
	var kind, itemType, changes, status, createdAt string
	var current, moderatorID, notes, reviewedAt sql.NullString

	err := row.Scan(&p.ID, &kind, &itemType, &p.ItemID, &changes, &current, &p.ProposedBy,
		&status, &moderatorID, &notes, &reviewedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Proposal{}, err
	}
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("scanning proposal: %w", err)
	}

	if err := json.Unmarshal([]byte(changes), &p.Changes); err != nil {
		return domain.Proposal{}, fmt.Errorf("decoding proposed changes of %s: %w", p.ID, err)
	}
	if current.Valid {
		p.CurrentValues = json.RawMessage(current.String)
	}

	p.Kind = domain.ProposalKind(kind)
	p.ItemType = domain.ItemType(itemType)
	p.Status = domain.ReviewStatus(status)
	p.ModeratorID = moderatorID.String
	p.ModeratorNotes = notes.String
	p.ReviewedAt = parseNullTime(reviewedAt)
	p.CreatedAt = parseTime(createdAt)

	return p, nil
}
