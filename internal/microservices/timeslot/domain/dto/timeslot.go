package dto

type TimeRequest struct {
	TimeValue string `json:"time_value"`
}

type BatchRequest struct {
	Dates []string `json:"dates"`
	Times []string `json:"times"`
}

// MonthRequest maps each date of the month to the times it should open.
type MonthRequest struct {
	Days map[string][]string `json:"days"`
}
