// Package stats computes aggregate figures over a list of blogs.
//
// All functions take the list in insertion order and resolve ties in favour
// of whichever blog or author reached the winning value first.
package stats

import "github.com/sakif/bloglist/internal/model"

// Favorite is the blog with the most likes.
type Favorite struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

// AuthorBlogs is the author with the most blogs.
type AuthorBlogs struct {
	Author string `json:"author"`
	Blogs  int    `json:"blogs"`
}

// AuthorLikes is the author whose blogs have the most likes in total.
type AuthorLikes struct {
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

// Summary bundles every statistic. Pointer fields are nil for an empty list.
type Summary struct {
	TotalLikes   int          `json:"totalLikes"`
	FavoriteBlog *Favorite    `json:"favoriteBlog"`
	MostBlogs    *AuthorBlogs `json:"mostBlogs"`
	MostLikes    *AuthorLikes `json:"mostLikes"`
}

// Summarize computes all statistics in one call.
func Summarize(blogs []model.Blog) Summary {
	return Summary{
		TotalLikes:   TotalLikes(blogs),
		FavoriteBlog: FavoriteBlog(blogs),
		MostBlogs:    MostBlogs(blogs),
		MostLikes:    MostLikes(blogs),
	}
}

// TotalLikes sums the likes of every blog.
func TotalLikes(blogs []model.Blog) int {
	total := 0
	for _, b := range blogs {
		total += b.Likes
	}
	return total
}

// FavoriteBlog returns the blog with the most likes, or nil for no blogs.
func FavoriteBlog(blogs []model.Blog) *Favorite {
	var fav *Favorite
	for _, b := range blogs {
		if fav == nil || b.Likes > fav.Likes {
			fav = &Favorite{Title: b.Title, Author: b.Author, Likes: b.Likes}
		}
	}
	return fav
}

// MostBlogs returns the author with the most blogs, or nil for no blogs.
func MostBlogs(blogs []model.Blog) *AuthorBlogs {
	counts := make(map[string]int)
	var best *AuthorBlogs

	for _, b := range blogs {
		counts[b.Author]++
		if n := counts[b.Author]; best == nil || n > best.Blogs {
			best = &AuthorBlogs{Author: b.Author, Blogs: n}
		}
	}
	return best
}

// MostLikes returns the author with the highest like total, or nil for no blogs.
func MostLikes(blogs []model.Blog) *AuthorLikes {
	totals := make(map[string]int)
	var best *AuthorLikes

	for _, b := range blogs {
		totals[b.Author] += b.Likes
		if n := totals[b.Author]; best == nil || n > best.Likes {
			best = &AuthorLikes{Author: b.Author, Likes: n}
		}
	}
	return best
}
