package domain

import "time"

// ProductStats is derived state keyed by product. TotalVotes and NetScore
// are always exactly the sums over the live ledger entries for the product;
// the aggregator must never drift from the ledger.
type ProductStats struct {
	ProductID   string    `json:"productId"`
	Upvotes     int       `json:"upvotes"`
	Downvotes   int       `json:"downvotes"`
	TotalVotes  int       `json:"totalVotes"`
	NetScore    int       `json:"netScore"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// RankedEntry is one row of a category ranking. Within one category ranks
// form a strict total order starting at 1.
type RankedEntry struct {
	ProductID string `json:"productId"`
	Rank      int    `json:"rank"`
	NetScore  int    `json:"netScore"`
	Category  string `json:"category"`
}
