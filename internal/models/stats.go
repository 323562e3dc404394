package models

// SiteStats holds the four sitewide aggregate counters. Every value is
// recomputed from stored state on each request; partial results are never
// produced.
type SiteStats struct {
	TotalPosts    int64 `json:"totalPosts"`
	TotalVotes    int64 `json:"totalVotes"`
	TotalUsers    int64 `json:"totalUsers"`
	TotalComments int64 `json:"totalComments"`
}
