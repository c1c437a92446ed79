package domain

// DraftItem is a validated cart line with the catalog price snapshot.
type DraftItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

// OrderDraft is a validated cart ready for payment. It is never persisted;
// a draft becomes an Order only after a successful charge.
type OrderDraft struct {
	UserID      string      `json:"user_id"`
	Items       []DraftItem `json:"items"`
	Address     string      `json:"address"`
	Phone       string      `json:"phone"`
	TotalAmount int64       `json:"total_amount"`
}
