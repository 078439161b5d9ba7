package report

import (
	"fmt"
	"io"

	"skin-market-go/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// WriteSummary renders the marketplace summary as a plain-text report.
func WriteSummary(w io.Writer, s *models.Summary) error {
	p := &printer{w: w}

	p.header("MARKETPLACE SUMMARY", DefaultWidth)
	p.printf("Generated:        %s UTC\n", s.GeneratedAt.UTC().Format(timeLayout))
	p.printf("Users:            %d\n", s.TotalUsers)
	p.printf("Active listings:  %d\n", s.ActiveListings)
	p.printf("Completed sales:  %d\n", s.SoldListings)
	p.printf("Turnover:         %14s\n", s.Turnover.StringFixed(2))
	p.printf("Commission:       %14s\n", s.Commission.StringFixed(2))
	p.printf("Seller revenue:   %14s\n", s.SellerRevenue.StringFixed(2))

	p.printf("\n┌─ Top games by turnover\n")
	p.boxSeparator(DefaultWidth - 2)
	if len(s.TopGames) == 0 {
		p.printf("└  no sales yet\n")
	}
	for i, g := range s.TopGames {
		p.printf("%s %d. %-40s %5d sold %14s\n",
			boxPrefix(i == len(s.TopGames)-1), i+1, g.GameName, g.SoldCount, g.Turnover.StringFixed(2))
	}

	p.footer(fmt.Sprintf("TOTAL: %d sales, %s turnover", s.SoldListings, s.Turnover.StringFixed(2)), DefaultWidth)
	return p.err
}

// WriteStatement renders a user's ledger history, newest first.
func WriteStatement(w io.Writer, st *models.Statement) error {
	p := &printer{w: w}

	p.header("BALANCE STATEMENT", WideWidth)
	p.printf("\n┌─ User: %s (%s)\n", st.User.Username, st.User.SteamId)
	p.printf("│  ID: %s\n", st.User.Id)
	p.printf("│  Role: %s\n", st.User.Role)
	p.printf("│  Balance: %s\n", st.User.Balance.StringFixed(2))
	p.boxSeparator(WideWidth - 2)

	for i, e := range st.Entries {
		p.printf("%s %s  %-10s %12s  -> %12s  ref: %-11s %s\n",
			boxPrefix(i == len(st.Entries)-1),
			e.CreatedAt.UTC().Format(timeLayout),
			e.Category,
			e.Amount.StringFixed(2),
			e.BalanceAfter.StringFixed(2),
			shortId(e.Reference),
			e.Description)
	}

	p.footer(fmt.Sprintf("%d entries, credits %s, debits %s",
		len(st.Entries), st.Credits.StringFixed(2), st.Debits.StringFixed(2)), WideWidth)
	return p.err
}

// WriteReconciliation lists every user's balance next to the ledger sum and flags drift.
func WriteReconciliation(w io.Writer, results []models.ReconcileResult) error {
	p := &printer{w: w}

	p.header("BALANCE RECONCILIATION", DefaultWidth)
	mismatches := 0
	for i, r := range results {
		status := "ok"
		if !r.Matches() {
			status = "MISMATCH " + r.Difference().StringFixed(2)
			mismatches++
		}
		p.printf("%s %-24s balance %12s  ledger %12s  %s\n",
			boxPrefix(i == len(results)-1), r.Username,
			r.Balance.StringFixed(2), r.LedgerSum.StringFixed(2), status)
	}

	p.footer(fmt.Sprintf("RECONCILED: %d users, %d mismatches", len(results), mismatches), DefaultWidth)
	return p.err
}
