// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// entryColumns is the column list shared by every entry query.
const entryColumns = `id, label, generated_at, state, source,
	claims_analysis, similar_papers, research_groups, theses, patents, verified_claims`

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEntry decodes one entries row. Stage columns are JSON documents,
// NULL while their stage has not run.
func scanEntry(row scanner) (*types.Entry, error) {
	var (
		e           types.Entry
		generatedAt string
		source      []byte
		stageCols   [6][]byte
	)

	err := row.Scan(&e.ID, &e.Label, &generatedAt, &e.State, &source,
		&stageCols[0], &stageCols[1], &stageCols[2], &stageCols[3], &stageCols[4], &stageCols[5])
	if err != nil {
		return nil, err
	}

	if generatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, generatedAt); err == nil {
			e.GeneratedAt = t
		}
	}
	if len(source) > 0 {
		if err := json.Unmarshal(source, &e.Source); err != nil {
			return nil, fmt.Errorf("decoding source for %s: %w", e.ID, err)
		}
	}

	decode := func(data []byte, dst any) error {
		if len(data) == 0 {
			return nil
		}
		return json.Unmarshal(data, dst)
	}

	if err := decode(stageCols[0], &e.ClaimsAnalysis); err != nil {
		return nil, fmt.Errorf("decoding claims_analysis for %s: %w", e.ID, err)
	}
	if err := decode(stageCols[1], &e.SimilarPapers); err != nil {
		return nil, fmt.Errorf("decoding similar_papers for %s: %w", e.ID, err)
	}
	if err := decode(stageCols[2], &e.ResearchGroups); err != nil {
		return nil, fmt.Errorf("decoding research_groups for %s: %w", e.ID, err)
	}
	if err := decode(stageCols[3], &e.Theses); err != nil {
		return nil, fmt.Errorf("decoding theses for %s: %w", e.ID, err)
	}
	if err := decode(stageCols[4], &e.Patents); err != nil {
		return nil, fmt.Errorf("decoding patents for %s: %w", e.ID, err)
	}
	if err := decode(stageCols[5], &e.VerifiedClaims); err != nil {
		return nil, fmt.Errorf("decoding verified_claims for %s: %w", e.ID, err)
	}

	return &e, nil
}

// entryArgs encodes an entry into the column value list matching
// entryColumns.
func entryArgs(e *types.Entry) ([]any, error) {
	generatedAt := ""
	if !e.GeneratedAt.IsZero() {
		generatedAt = e.GeneratedAt.UTC().Format(time.RFC3339Nano)
	}

	source, err := json.Marshal(e.Source)
	if err != nil {
		return nil, fmt.Errorf("encoding source: %w", err)
	}

	encode := func(v any, isNil bool) (any, error) {
		if isNil {
			return nil, nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}

	stageVals := make([]any, 6)
	for i, stage := range []struct {
		v     any
		isNil bool
	}{
		{e.ClaimsAnalysis, e.ClaimsAnalysis == nil},
		{e.SimilarPapers, e.SimilarPapers == nil},
		{e.ResearchGroups, e.ResearchGroups == nil},
		{e.Theses, e.Theses == nil},
		{e.Patents, e.Patents == nil},
		{e.VerifiedClaims, e.VerifiedClaims == nil},
	} {
		stageVals[i], err = encode(stage.v, stage.isNil)
		if err != nil {
			return nil, fmt.Errorf("encoding stage column: %w", err)
		}
	}

	args := []any{e.ID, e.Label, generatedAt, string(e.State), string(source)}
	return append(args, stageVals...), nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, e *types.Entry) error {
	args, err := entryArgs(e)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("inserting entry %s: %w", e.ID, err)
	}
	return nil
}

func updateEntry(ctx context.Context, tx *sql.Tx, e *types.Entry) error {
	args, err := entryArgs(e)
	if err != nil {
		return err
	}
	// Shift id to the WHERE clause; seq (and thus insertion order) is
	// untouched by updates.
	args = append(args[1:], e.ID)
	_, err = tx.ExecContext(ctx, `UPDATE entries SET
		label = ?, generated_at = ?, state = ?, source = ?,
		claims_analysis = ?, similar_papers = ?, research_groups = ?,
		theses = ?, patents = ?, verified_claims = ?
		WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating entry %s: %w", e.ID, err)
	}
	return nil
}
