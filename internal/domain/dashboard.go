package domain

// ProductViews is a product ranked by views.
type ProductViews struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Views int64  `json:"views"`
}

// CategoryCount is the number of products filed under a category.
type CategoryCount struct {
	Category string `json:"category"`
	Products int    `json:"products"`
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	TotalProducts   int             `json:"total_products"`
	ProductsByStock map[string]int  `json:"products_by_stock"`
	TotalViews      int64           `json:"total_views"`
	TopViewed       []ProductViews  `json:"top_viewed"`
	ByCategory      []CategoryCount `json:"by_category"`
	TotalFavorites  int             `json:"total_favorites"`
	FavoritingUsers int             `json:"favoriting_users"`
	TotalContacts   int             `json:"total_contacts"`
	PendingContacts int             `json:"pending_contacts"`
	RecentContacts  []Contact       `json:"recent_contacts"`
}
