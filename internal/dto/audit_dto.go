package dto

// AuditRecordItem is one row in the mutation history of an entity.
type AuditRecordItem struct {
	ID        string  `json:"id"`
	Entity    string  `json:"entity"`
	EntityID  string  `json:"entity_id"`
	Action    string  `json:"action"`
	Before    *string `json:"before,omitempty"`
	After     *string `json:"after,omitempty"`
	Actor     *string `json:"actor,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type AuditListResponse struct {
	Data  []AuditRecordItem `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
