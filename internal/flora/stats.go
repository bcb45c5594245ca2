package flora

// DashboardStats is the aggregate returned by /utilisateurs/dashboard/.
type DashboardStats struct {
	Users     UserBlock     `json:"users"`
	Commands  CommandBlock  `json:"commands"`
	Products  ProductBlock  `json:"products"`
	Workshops WorkshopBlock `json:"ateliers"`
	Payments  PaymentBlock  `json:"payments"`
}

// UserBlock aggregates account counts.
type UserBlock struct {
	Total       int            `json:"total"`
	Active      int            `json:"active"`
	Banned      int            `json:"banned"`
	ByRole      map[string]int `json:"by_role"`
	NewLast7Day int            `json:"new_last_7_days"`
}

// CommandBlock aggregates order counts and revenue.
type CommandBlock struct {
	Total            int            `json:"total"`
	ByStatus         map[string]int `json:"by_status"`
	TotalRevenue     string         `json:"total_revenue"`
	RevenueLast7Days string         `json:"revenue_last_7_days"`
}

// ProductBlock aggregates catalogue counts.
type ProductBlock struct {
	Total           int            `json:"total"`
	Active          int            `json:"active"`
	LowStock        int            `json:"low_stock"`
	ByCategory      map[string]int `json:"by_category"`
	LowStockDetails []LowStockItem `json:"low_stock_details"`
}

// WorkshopBlock aggregates atelier counts.
type WorkshopBlock struct {
	Total             int `json:"total"`
	Active            int `json:"active"`
	Cancelled         int `json:"cancelled"`
	TotalParticipants int `json:"total_participants"`
}

// PaymentBlock aggregates payment counts.
type PaymentBlock struct {
	Total  int            `json:"total"`
	ByType map[string]int `json:"by_type"`
}

// LowStockItem is one row of the low stock listings.
type LowStockItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"nom"`
	Stock        int     `json:"stock"`
	CategoryName *string `json:"categorie__nom,omitempty"`
}

// LowStockReport is returned by /produits/low_stock/.
type LowStockReport struct {
	Threshold     int            `json:"seuil"`
	TotalLowStock int            `json:"total_low_stock"`
	Products      []LowStockItem `json:"products"`
}

// DayPoint is a per-day series value used by several stats endpoints.
type DayPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Total string `json:"total,omitempty"`
}

// RevenueReport is returned by /commandes/revenue/.
type RevenueReport struct {
	TotalRevenue    string          `json:"total_revenue"`
	RevenueByDay    []DayPoint      `json:"revenue_by_day"`
	RevenueByStatus []StatusRevenue `json:"revenue_by_status"`
}

// StatusRevenue splits revenue per order status.
type StatusRevenue struct {
	Status string `json:"statut"`
	Total  string `json:"total"`
}

// UserStats is returned by /utilisateurs/stats/? style endpoints.
type UserStats struct {
	RegistrationsByDay []DayPoint `json:"registrations_by_day"`
	LoginsByDay        []DayPoint `json:"logins_by_day"`
}

// PaymentStats is returned by /paiements/stats/.
type PaymentStats struct {
	Global struct {
		TotalPayments int     `json:"total_paiements"`
		TotalAmount   string  `json:"total_montant"`
		AvgAmount     string  `json:"avg_montant"`
		MaxAmount     string  `json:"max_montant"`
		MinAmount     string  `json:"min_montant"`
		SuccessRate   float64 `json:"success_rate"`
		AvgDelayDays  float64 `json:"avg_delay_days"`
	} `json:"global"`
	Last30Days struct {
		TotalPayments int        `json:"total_paiements"`
		TotalAmount   string     `json:"total_montant"`
		ByDay         []DayPoint `json:"by_day"`
	} `json:"last_30_days"`
}

// SubscriptionStats is returned by /abonnements/stats/.
type SubscriptionStats struct {
	Total   int    `json:"total_abonnements"`
	Active  int    `json:"active_abonnements"`
	Revenue string `json:"revenus"`
	ByType  []struct {
		Type  string `json:"type"`
		Total int    `json:"total"`
	} `json:"abonnements_by_type"`
}

// WorkshopStats is returned by /ateliers/stats/.
type WorkshopStats struct {
	Total             int        `json:"total"`
	Active            int        `json:"active"`
	TotalParticipants int        `json:"total_participants"`
	ByDay             []DayPoint `json:"by_day"`
}

// ProductStats is returned by /produits/stats/.
type ProductStats struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	ByCategory map[string]int `json:"by_category"`
	TopSellers []ProductRef   `json:"top_sellers"`
}
