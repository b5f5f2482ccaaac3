package models

// AnomalyDirection classifies an abnormal single-session move.
type AnomalyDirection string

const (
	AnomalySurge  AnomalyDirection = "surge"
	AnomalyPlunge AnomalyDirection = "plunge"
)

// NewsItem is one headline returned by the news-lookup collaborator.
// A failing source yields a placeholder item describing the failure.
type NewsItem struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url"`
	Time   string `json:"time"`
}

// AnomalyReport flags a single-session price move beyond the configured
// threshold, decorated with news context.
type AnomalyReport struct {
	Symbol    string           `json:"symbol"`
	Name      string           `json:"name"`
	Market    Market           `json:"market"`
	Date      string           `json:"date"` // YYYY-MM-DD
	Close     float64          `json:"close"`
	PrevClose float64          `json:"prev_close"`
	ChangePct float64          `json:"change_pct"` // percent, rounded to 2 decimals
	Direction AnomalyDirection `json:"direction"`
	News      []NewsItem       `json:"news"`
}
