package domain

import "time"

type ReviewStatus string

const (
	ReviewVisible ReviewStatus = "visible"
	ReviewHidden  ReviewStatus = "hidden"
)

func (s ReviewStatus) Valid() bool {
	return s == ReviewVisible || s == ReviewHidden
}

type Review struct {
	ID        int64        `json:"id"`
	ProductID int64        `json:"product_id"`
	UserID    int64        `json:"user_id"`
	UserName  string       `json:"user_name"`
	Rating    int          `json:"rating"`
	Comment   string       `json:"comment"`
	Status    ReviewStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	ProductName string `json:"product_name,omitempty"`
}

// ReviewSummary contains aggregate review statistics for a product.
type ReviewSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// ReviewsPageSize is shared by the product page and the review API so "load more" continues where the page stopped.
const ReviewsPageSize = 10
