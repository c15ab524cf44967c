package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/geocoder89/reviewhub/internal/domain/review"
	"github.com/gin-gonic/gin"
)

const (
	MaxImagesPerReview = 10
	MaxVideosPerReview = 10

	// uploads keep going if the client hangs up; this bounds the whole submission
	submitTimeout = 2 * time.Minute
)

type ReviewSubmitter interface {
	Submit(ctx context.Context, sub review.Submission) (review.Review, error)
}

type ReviewLister interface {
	ListAll(ctx context.Context) ([]review.WithAuthor, error)
}

type ReviewsHandler struct {
	submitter ReviewSubmitter
	catalog   ReviewLister
}

func NewReviewsHandler(submitter ReviewSubmitter, catalog ReviewLister) *ReviewsHandler {
	return &ReviewsHandler{submitter: submitter, catalog: catalog}
}

// UploadReviewRequest holds the text fields of the multipart submission.
// Files are read separately from images[]/videos[] (bare names accepted too).
type UploadReviewRequest struct {
	Content string `form:"content" binding:"required"`
	UserID  string `form:"userId" binding:"required,uuid"`
}

func (h *ReviewsHandler) Upload(ctx *gin.Context) {
	var req UploadReviewRequest

	if !BindForm(ctx, &req) {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		RespondBadRequest(ctx, "Request must be multipart/form-data", gin.H{"reason": err.Error()})
		return
	}

	images := filesFor(form, "images")
	videos := filesFor(form, "videos")

	if len(images) > MaxImagesPerReview || len(videos) > MaxVideosPerReview {
		RespondBadRequest(ctx, fmt.Sprintf("At most %d images and %d videos are allowed", MaxImagesPerReview, MaxVideosPerReview), gin.H{
			"images": len(images),
			"videos": len(videos),
		})
		return
	}

	attachments := make([]review.Attachment, 0, len(images)+len(videos))

	for _, group := range []struct {
		kind  review.MediaKind
		files []*multipart.FileHeader
	}{
		{review.KindImage, images},
		{review.KindVideo, videos},
	} {
		for _, fh := range group.files {
			data, err := readFile(fh)
			if err != nil {
				RespondBadRequest(ctx, "Could not read uploaded file", gin.H{"file": fh.Filename, "reason": err.Error()})
				return
			}
			attachments = append(attachments, review.Attachment{Data: data, Kind: group.kind, Filename: fh.Filename})
		}
	}

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx.Request.Context()), submitTimeout)
	defer cancel()

	created, err := h.submitter.Submit(cctx, review.Submission{
		Content:     req.Content,
		AuthorID:    req.UserID,
		Attachments: attachments,
	})

	if err != nil {
		switch {
		case errors.Is(err, review.ErrEmptyContent):
			RespondBadRequest(ctx, "Content is required", nil)
		case errors.Is(err, review.ErrInvalidMedia):
			RespondBadRequest(ctx, "Unsupported attachment", gin.H{"reason": err.Error()})
		case errors.Is(err, review.ErrMalformedID):
			RespondBadRequest(ctx, "Invalid user id", nil)
		case errors.Is(err, review.ErrAuthorNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, review.ErrUploadFailed):
			RespondInternal(ctx, "Media upload failed", err)
		default:
			RespondInternal(ctx, "Could not create review", err)
		}
		return
	}

	RespondOK(ctx, http.StatusCreated, "Review created successfully", gin.H{
		"review": created,
	})
}

func (h *ReviewsHandler) Display(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.catalog.ListAll(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list reviews", err)
		return
	}

	RespondOK(ctx, http.StatusOK, "Reviews fetched successfully", gin.H{
		"reviews": items,
		"count":   len(items),
	})
}

func filesFor(form *multipart.Form, field string) []*multipart.FileHeader {
	files := make([]*multipart.FileHeader, 0, len(form.File[field+"[]"])+len(form.File[field]))
	files = append(files, form.File[field+"[]"]...)
	files = append(files, form.File[field]...)
	return files
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
