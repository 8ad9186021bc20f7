// Package listhelper contains pure aggregation functions over blog lists.
//
// Nothing here touches the database or HTTP. Every function takes a slice,
// reads it in order and returns a new value; the input is never modified.
// That makes them trivial to test with literal slices.
package listhelper

import "github.com/sakif/bloglist/internal/model"

// MissingLikesInfo is the message MostLikes returns when there is nothing to rank.
const MissingLikesInfo = "blog list is empty or likes key is not in the blog list"

// Entry is a loosely-shaped blog record.
//
// Likes and Blogs are pointers because a record may simply not carry the
// field, and "absent" has to be told apart from 0 (an entry with 0 likes
// still takes part in a ranking, an entry without likes does not).
type Entry struct {
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
	URL    string `json:"url,omitempty"`
	Likes  *int   `json:"likes,omitempty"`
	Blogs  *int   `json:"blogs,omitempty"`
}

// AuthorBlogs is the result of MostBlogs. The zero value encodes as {}.
type AuthorBlogs struct {
	Author string `json:"author,omitempty"`
	Blogs  *int   `json:"blogs,omitempty"`
}

// AuthorLikes is the result of MostLikes. Either Author/Likes or Info is set.
type AuthorLikes struct {
	Author string `json:"author,omitempty"`
	Likes  *int   `json:"likes,omitempty"`
	Info   string `json:"info,omitempty"`
}

// FromBlogs converts stored blogs into entries.
func FromBlogs(blogs []model.Blog) []Entry {
	entries := make([]Entry, 0, len(blogs))
	for _, b := range blogs {
		likes := b.Likes
		entries = append(entries, Entry{
			Title:  b.Title,
			Author: b.Author,
			URL:    b.URL,
			Likes:  &likes,
		})
	}
	return entries
}

// Dummy always returns 1.
func Dummy(_ []Entry) int {
	return 1
}

// TotalLikes sums the likes of every entry. Entries without likes count as 0.
func TotalLikes(entries []Entry) int {
	total := 0
	for _, e := range entries {
		if e.Likes != nil {
			total += *e.Likes
		}
	}
	return total
}

// FavoriteBlog returns the entry with the most likes.
// On a tie the earlier entry is kept. An entry without likes counts as 0,
// so it still wins a leading tie at 0. An empty list yields Entry{}.
func FavoriteBlog(entries []Entry) Entry {
	if len(entries) == 0 {
		return Entry{}
	}

	best := entries[0]
	for _, e := range entries[1:] {
		if likesOf(e) > likesOf(best) {
			best = e
		}
	}
	return best
}

// MostBlogs returns the author and count of the entry with the largest
// Blogs field. Entries without the field are skipped; if none has it the
// result is the empty AuthorBlogs.
func MostBlogs(entries []Entry) AuthorBlogs {
	best, ok := maxBy(entries, func(e Entry) *int { return e.Blogs })
	if !ok {
		return AuthorBlogs{}
	}

	blogs := *best.Blogs
	return AuthorBlogs{Author: best.Author, Blogs: &blogs}
}

// MostLikes returns the author and likes of the entry with the largest
// Likes field, or an Info message if no entry carries likes.
func MostLikes(entries []Entry) AuthorLikes {
	best, ok := maxBy(entries, func(e Entry) *int { return e.Likes })
	if !ok {
		return AuthorLikes{Info: MissingLikesInfo}
	}

	likes := *best.Likes
	return AuthorLikes{Author: best.Author, Likes: &likes}
}

// BlogsPerAuthor groups blogs by author and counts them.
// Authors appear in the order they are first seen.
func BlogsPerAuthor(blogs []model.Blog) []Entry {
	return groupByAuthor(blogs, func(e *Entry, _ model.Blog) {
		n := 1
		if e.Blogs != nil {
			n = *e.Blogs + 1
		}
		e.Blogs = &n
	})
}

// LikesPerAuthor groups blogs by author and sums their likes.
// Authors appear in the order they are first seen.
func LikesPerAuthor(blogs []model.Blog) []Entry {
	return groupByAuthor(blogs, func(e *Entry, b model.Blog) {
		n := b.Likes
		if e.Likes != nil {
			n += *e.Likes
		}
		e.Likes = &n
	})
}

func groupByAuthor(blogs []model.Blog, add func(*Entry, model.Blog)) []Entry {
	index := make(map[string]int)
	entries := make([]Entry, 0)

	for _, b := range blogs {
		i, seen := index[b.Author]
		if !seen {
			i = len(entries)
			index[b.Author] = i
			entries = append(entries, Entry{Author: b.Author})
		}
		add(&entries[i], b)
	}
	return entries
}

// maxBy returns the first entry whose field value is strictly greater than
// every earlier one. Entries where field returns nil are ignored.
func maxBy(entries []Entry, field func(Entry) *int) (Entry, bool) {
	var (
		best  Entry
		found bool
	)
	for _, e := range entries {
		v := field(e)
		if v == nil {
			continue
		}
		if !found || *v > *field(best) {
			best = e
			found = true
		}
	}
	return best, found
}

func likesOf(e Entry) int {
	if e.Likes == nil {
		return 0
	}
	return *e.Likes
}
