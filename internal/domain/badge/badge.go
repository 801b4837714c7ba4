// Package badge describes the read-only badge catalog.
package badge

// Badge is a purchasable cosmetic listed in the shop
type Badge struct {
	ID       string
	ImageURL string
	Cost     int
}
