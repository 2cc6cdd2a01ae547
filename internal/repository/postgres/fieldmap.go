package postgres

import (
	"context"
	"fmt"

	"github.com/Marceldinga/TheYoungShallGrow/internal/config"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"

	"github.com/lib/pq"
)

// FieldMap holds the physical columns chosen for the amounts whose name differs
// between deployments. An empty column means none of the candidates exists.
type FieldMap struct {
	LoanTotalColumn       string
	RepaymentAmountColumn string
}

// DefaultFieldMap matches the schema shipped in migrations.
func DefaultFieldMap() FieldMap {
	return FieldMap{LoanTotalColumn: "total_due", RepaymentAmountColumn: "amount_paid"}
}

// ResolveFieldMap picks, for each mapped amount, the first candidate column present
// in the live schema. It runs once at startup.
func ResolveFieldMap(ctx context.Context, db DBTX, cfg config.FieldMappingConfig) (FieldMap, error) {
	loanCol, err := firstExistingColumn(ctx, db, "loans", cfg.LoanTotalColumns)
	if err != nil {
		return FieldMap{}, err
	}
	repayCol, err := firstExistingColumn(ctx, db, "repayments", cfg.RepaymentAmountColumns)
	if err != nil {
		return FieldMap{}, err
	}

	if loanCol == "" {
		logger.Warn("No loan total column found, loan totals will be degraded", "candidates", cfg.LoanTotalColumns)
	}
	if repayCol == "" {
		logger.Warn("No repayment amount column found, repayment totals will be degraded", "candidates", cfg.RepaymentAmountColumns)
	}
	logger.Info("Resolved field mapping", "loan_total_column", loanCol, "repayment_amount_column", repayCol)

	return FieldMap{LoanTotalColumn: loanCol, RepaymentAmountColumn: repayCol}, nil
}

func firstExistingColumn(ctx context.Context, db DBTX, table string, candidates []string) (string, error) {
	query := `SELECT column_name FROM information_schema.columns
	          WHERE table_schema = current_schema() AND table_name = $1`
	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		return "", fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", fmt.Errorf("failed to scan columns of %s: %w", table, err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	for _, c := range candidates {
		if present[c] {
			return c, nil
		}
	}
	return "", nil
}

func quoteColumn(col string) string {
	return pq.QuoteIdentifier(col)
}
