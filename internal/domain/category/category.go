// Package category describes the habit categories posts are tagged with.
package category

// Category is a habit type shown on the landing page; PostType is the tag posts carry
type Category struct {
	ID       string
	PostType string
	Title    string
	Caption  string
	MediaURL string
}
