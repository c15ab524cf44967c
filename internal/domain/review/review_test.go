package review

import (
	"errors"
	"testing"
)

func TestPartitionPreservesOrderPerKind(t *testing.T) {
	in := []Attachment{
		{Filename: "v1", Kind: KindVideo},
		{Filename: "i1", Kind: KindImage},
		{Filename: "i2", Kind: KindImage},
		{Filename: "v2", Kind: KindVideo},
		{Filename: "i3", Kind: KindImage},
	}

	images, videos, err := Partition(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantImages := []string{"i1", "i2", "i3"}
	wantVideos := []string{"v1", "v2"}

	if len(images) != len(wantImages) || len(videos) != len(wantVideos) {
		t.Fatalf("got %d images %d videos", len(images), len(videos))
	}
	for i, name := range wantImages {
		if images[i].Filename != name {
			t.Fatalf("image %d: got %s want %s", i, images[i].Filename, name)
		}
	}
	for i, name := range wantVideos {
		if videos[i].Filename != name {
			t.Fatalf("video %d: got %s want %s", i, videos[i].Filename, name)
		}
	}
}

func TestPartitionRejectsUnknownKind(t *testing.T) {
	in := []Attachment{
		{Filename: "i1", Kind: KindImage},
		{Filename: "a1", Kind: MediaKind("audio")},
	}

	images, videos, err := Partition(in)
	if !errors.Is(err, ErrInvalidMedia) {
		t.Fatalf("got %v want ErrInvalidMedia", err)
	}
	if images != nil || videos != nil {
		t.Fatalf("no partial result expected, got %d images %d videos", len(images), len(videos))
	}
}

func TestNewNormalisesNilSlices(t *testing.T) {
	r := New("nice", "author", "Ada", nil, nil)

	if r.ImageURLs == nil || r.VideoURLs == nil {
		t.Fatal("url slices should never be nil")
	}
	if r.ID == "" || r.CreatedAt.IsZero() || !r.CreatedAt.Equal(r.UpdatedAt) {
		t.Fatalf("unexpected review: %+v", r)
	}
}

func TestAuthorErrorsShareUmbrella(t *testing.T) {
	for _, err := range []error{ErrMalformedID, ErrAuthorNotFound} {
		if !errors.Is(err, ErrInvalidAuthor) {
			t.Fatalf("%v should wrap ErrInvalidAuthor", err)
		}
	}
	if errors.Is(ErrMalformedID, ErrAuthorNotFound) {
		t.Fatal("author errors must stay distinguishable")
	}
}
