package models

// RevenueSummary aggregates card sales over a date range, split by how the
// card was issued. Tips are tracked separately; they never change card
// semantics.
type RevenueSummary struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	OnlineRevenue float64 `json:"online_revenue"`
	CashRevenue   float64 `json:"cash_revenue"`
	TipTotal      float64 `json:"tip_total"`
	CardsSold     int64   `json:"cards_sold"`
}

type AttendanceDay struct {
	Date         string `json:"date"`
	Total        int64  `json:"total"`
	PunchCard    int64  `json:"punch_card"`
	Subscription int64  `json:"subscription"`
	BirthdayFree int64  `json:"birthday_free"`
}

type AttendanceReport struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Days []AttendanceDay `json:"days"`
}

type MembershipSummary struct {
	ActiveCards         int64 `json:"active_cards"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
	TotalCustomers      int64 `json:"total_customers"`
}
