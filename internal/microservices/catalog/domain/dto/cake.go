package dto

type CakeRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Sizes       []SizeInput `json:"sizes"`
}

type SizeInput struct {
	Size  string `json:"size"`
	Price int    `json:"price"`
	Stock int    `json:"stock"`
}
