package coterie

import "time"

// Event is a public calendar entry. When Private is set the backend has
// withheld everything except the start time.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	Location    string    `json:"location,omitempty"`
	EventType   string    `json:"event_type,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Private     bool      `json:"private,omitempty"`
}

type Announcement struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Content          string     `json:"content,omitempty"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	AnnouncementType string     `json:"announcement_type,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
	Featured         bool       `json:"featured"`
}

// Published returns published_at, falling back to created_at.
func (a Announcement) Published() time.Time {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}
	if a.CreatedAt != nil {
		return *a.CreatedAt
	}
	return time.Time{}
}

type PrivateCount struct {
	Count int `json:"count"`
}

// ListParams narrows a list request. Zero values are left out of the query.
type ListParams struct {
	Limit int
	Type  string
}

type SignupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Message   string `json:"message,omitempty"`
}

type SignupResult struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

const featuredScanLimit = 10

// FirstFeatured returns the first featured announcement, or nil.
func FirstFeatured(announcements []Announcement) *Announcement {
	for i := range announcements {
		if announcements[i].Featured {
			a := announcements[i]
			return &a
		}
	}
	return nil
}

// FilterFeatured keeps featured announcements in their original order.
func FilterFeatured(announcements []Announcement) []Announcement {
	featured := make([]Announcement, 0, len(announcements))
	for _, a := range announcements {
		if a.Featured {
			featured = append(featured, a)
		}
	}
	return featured
}
