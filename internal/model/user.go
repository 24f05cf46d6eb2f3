package model

// User represents a registered user account.
//
// PasswordHash carries the `json:"-"` tag so no outward representation can
// ever include it, whichever handler serializes the struct.
//
// BlogIDs is the user's own ordered list of blog ids. It is a back-reference
// maintained by the service layer, independent of Blog.OwnerID, and may lag
// behind it if the second write of a create/delete failed.
type User struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	Name         string   `json:"name"`
	BlogIDs      []string `json:"blogIds"`
}

// UserWithBlogs is the listing form of a user with its blogs projected.
type UserWithBlogs struct {
	User
	Blogs []BlogSummary `json:"blogs"`
}

// BlogSummary is the projection of a blog shown under its owner.
type BlogSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}
