package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/geocoder89/reviewhub/internal/domain/review"
)

type fakePutter struct {
	mu     sync.Mutex
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(in.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)

	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

// smallest valid PNG header is enough for content sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadImage(t *testing.T) {
	put := &fakePutter{}
	u := NewUploader(put, "media", "https://cdn.example.com/", nil, nil)

	url, err := u.Upload(context.Background(), review.Attachment{Data: pngBytes, Kind: review.KindImage})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if len(put.inputs) != 1 {
		t.Fatalf("got %d puts want 1", len(put.inputs))
	}
	in := put.inputs[0]

	if *in.Bucket != "media" {
		t.Fatalf("bucket: got %s", *in.Bucket)
	}
	if !strings.HasPrefix(*in.Key, "images/") || !strings.HasSuffix(*in.Key, ".png") {
		t.Fatalf("unexpected key %q", *in.Key)
	}
	if *in.ContentType != "image/png" {
		t.Fatalf("content type: got %s", *in.ContentType)
	}
	if in.Metadata[resourceTypeMeta] != "image" {
		t.Fatalf("resource type metadata: %v", in.Metadata)
	}
	if !bytes.Equal(put.bodies[0], pngBytes) {
		t.Fatal("body mismatch")
	}
	if url != "https://cdn.example.com/"+*in.Key {
		t.Fatalf("url: got %s", url)
	}
}

func TestUploadIdenticalBuffersAreNotDeduped(t *testing.T) {
	put := &fakePutter{}
	u := NewUploader(put, "media", "https://cdn.example.com", nil, nil)
	a := review.Attachment{Data: []byte("same bytes"), Kind: review.KindVideo}

	first, err := u.Upload(context.Background(), a)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := u.Upload(context.Background(), a)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if first == second || len(put.inputs) != 2 {
		t.Fatalf("expected two distinct objects, got %s and %s", first, second)
	}
	if !strings.Contains(first, "/videos/") {
		t.Fatalf("video key prefix missing: %s", first)
	}
}

func TestUploadProviderError(t *testing.T) {
	put := &fakePutter{err: errors.New("AccessDenied")}
	u := NewUploader(put, "media", "https://cdn.example.com", nil, nil)

	_, err := u.Upload(context.Background(), review.Attachment{Data: pngBytes, Kind: review.KindImage})
	if !errors.Is(err, review.ErrUploadFailed) {
		t.Fatalf("got %v want ErrUploadFailed", err)
	}
	if !strings.Contains(err.Error(), "AccessDenied") {
		t.Fatalf("provider message should surface as-is: %v", err)
	}
	if len(put.inputs) != 1 {
		t.Fatalf("no retries expected, got %d puts", len(put.inputs))
	}
}

func TestUploadRejectsUnknownKind(t *testing.T) {
	put := &fakePutter{}
	u := NewUploader(put, "media", "https://cdn.example.com", nil, nil)

	_, err := u.Upload(context.Background(), review.Attachment{Data: pngBytes, Kind: "audio"})
	if !errors.Is(err, review.ErrUploadFailed) {
		t.Fatalf("got %v", err)
	}
	if len(put.inputs) != 0 {
		t.Fatal("nothing should be sent for an unknown kind")
	}
}
