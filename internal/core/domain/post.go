package domain

import (
	"errors"
	"strconv"
	"time"
)

// TopListingSize is the number of posts shown on the front listing.
const TopListingSize = 10

var ErrPostNotFound = errors.New("post not found")
var ErrInvalidPost = errors.New("subject and content are required")
var ErrCacheUnavailable = errors.New("cache unavailable")

// Post is an immutable blog entry. ID and Permalink are assigned by the store
// on insert; Created is set once by the service before insert.
type Post struct {
	ID        int64     `json:"id" bson:"_id" db:"id"`
	Subject   string    `json:"subject" bson:"subject" db:"subject"`
	Content   string    `json:"content" bson:"content" db:"content"`
	Created   time.Time `json:"created" bson:"created" db:"created"`
	Permalink string    `json:"permalink" bson:"permalink" db:"permalink"`
}

// PermalinkFor derives the permalink of the post with the given id.
func PermalinkFor(id int64) string {
	return strconv.FormatInt(id, 10)
}
