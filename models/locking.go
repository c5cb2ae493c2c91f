package models

import "gorm.io/gorm/clause"

// forUpdateClause pins read-modify-write rows (stock batches, account
// balances, counterparty balances) for the duration of the transaction so
// two concurrent postings cannot both pass an availability check.
func forUpdateClause() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
