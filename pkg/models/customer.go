package models

import "time"

// Customer is a registered customer of the store.
type Customer struct {
	ID        int64     `json:"id"`
	CPF       int64     `json:"-"` // write-only, never serialized back out
	FullName  string    `json:"fullName"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}
