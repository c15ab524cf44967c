package review

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

func (k MediaKind) Valid() bool {
	return k == KindImage || k == KindVideo
}

type Review struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"` // snapshot taken at submission, never re-synced
	ImageURLs  []string  `json:"imageUrls"`
	VideoURLs  []string  `json:"videoUrls"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Author is the live view of the submitting account joined in on reads.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type WithAuthor struct {
	Review
	Author Author `json:"author"`
}

// Attachment is one uploaded buffer. It is consumed by a single upload and dropped.
type Attachment struct {
	Data     []byte
	Kind     MediaKind
	Filename string
}

type Submission struct {
	Content     string
	AuthorID    string
	Attachments []Attachment
}

var (
	ErrEmptyContent = errors.New("content is required")
	// ErrInvalidAuthor is the umbrella for both author failures below.
	ErrInvalidAuthor  = errors.New("invalid author")
	ErrMalformedID    = fmt.Errorf("%w: malformed author id", ErrInvalidAuthor)
	ErrAuthorNotFound = fmt.Errorf("%w: author not found", ErrInvalidAuthor)
	ErrInvalidMedia   = errors.New("unsupported media kind")
	ErrUploadFailed   = errors.New("media upload failed")
	ErrPersistence    = errors.New("could not persist review")
)

// New builds a review for an author whose name was read once at submission time.
func New(content, authorID, authorName string, imageURLs, videoURLs []string) Review {
	now := time.Now().UTC()

	if imageURLs == nil {
		imageURLs = []string{}
	}
	if videoURLs == nil {
		videoURLs = []string{}
	}

	return Review{
		ID:         uuid.NewString(),
		Content:    content,
		AuthorID:   authorID,
		AuthorName: authorName,
		ImageURLs:  imageURLs,
		VideoURLs:  videoURLs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Partition splits attachments by kind, keeping each kind in submission order.
// An attachment of any other kind rejects the whole set.
func Partition(attachments []Attachment) (images, videos []Attachment, err error) {
	images = make([]Attachment, 0, len(attachments))
	videos = make([]Attachment, 0, len(attachments))

	for i, a := range attachments {
		switch a.Kind {
		case KindImage:
			images = append(images, a)
		case KindVideo:
			videos = append(videos, a)
		default:
			return nil, nil, fmt.Errorf("%w: attachment %d (%q)", ErrInvalidMedia, i, a.Kind)
		}
	}
	return images, videos, nil
}
