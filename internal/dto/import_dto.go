package dto

// ImportRowError is one per-row failure carried in the report; the batch
// keeps going past it.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportReport summarizes a CSV import run.
type ImportReport struct {
	Total     int              `json:"total"`
	Created   int              `json:"created"`
	Updated   int              `json:"updated"`
	PricesSet int              `json:"prices_set"`
	DryRun    bool             `json:"dry_run"`
	Errors    []ImportRowError `json:"errors"`
}

// BackfillReport summarizes a legacy price backfill run.
type BackfillReport struct {
	Examined int  `json:"examined"`
	Created  int  `json:"created"`
	Skipped  int  `json:"skipped"`
	DryRun   bool `json:"dry_run"`
}
