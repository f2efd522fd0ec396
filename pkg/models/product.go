package models

import "time"

// Product is an item the store sells.
type Product struct {
	ID              int64     `json:"id"`
	FullName        string    `json:"fullName"`
	FullDescription string    `json:"fullDescription"`
	Brand           string    `json:"brand"`
	Price           float64   `json:"price"`
	CreatedAt       time.Time `json:"createdAt"`
}
