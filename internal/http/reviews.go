package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/Akshat120/Book-Review-API/internal/audit"
	"github.com/Akshat120/Book-Review-API/internal/auth"
	"github.com/Akshat120/Book-Review-API/internal/entities"
	"github.com/Akshat120/Book-Review-API/internal/metrics"
	"github.com/Akshat120/Book-Review-API/internal/reviews"
)

const msgBadReviewID = "Wrong review ID!"

// ReviewService defines the review mutations exposed over HTTP.
type ReviewService interface {
	Create(ctx context.Context, in reviews.CreateInput) (*entities.Review, error)
	Update(ctx context.Context, callerID, reviewID uint, patch reviews.Patch) error
	Delete(ctx context.Context, callerID, reviewID uint) error
}

type ReviewsController struct {
	reviews      ReviewService
	auditService *audit.Service
}

func NewReviewsController(reviews ReviewService, auditService *audit.Service) *ReviewsController {
	return &ReviewsController{
		reviews:      reviews,
		auditService: auditService,
	}
}

// reviewRequest is shared by create and update. Absent fields stay nil.
type reviewRequest struct {
	Rating      *int    `json:"rating"`
	Description *string `json:"description"`
}

type createReviewResponse struct {
	Message string           `json:"message"`
	Review  *entities.Review `json:"review"`
}

// CreateReview adds the caller's review of a book
// POST /api/books/:bookId/reviews
func (rc *ReviewsController) CreateReview(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId", msgBadBookID)
	if !ok {
		return
	}
	req, ok := bindReview(c)
	if !ok {
		return
	}
	if req.Rating == nil {
		respondBadRequest(c, reviews.ErrInvalidRating.Error())
		return
	}

	userID := auth.GetUserID(c)
	review, err := rc.reviews.Create(c.Request.Context(), reviews.CreateInput{
		UserID:      userID,
		BookID:      bookID,
		Rating:      *req.Rating,
		Description: req.Description,
	})

	var reviewID uint
	if review != nil {
		reviewID = review.ID
	}
	rc.record(c, audit.ActionReviewCreate, reviewID, fmt.Sprintf("book=%d", bookID), err)

	if err != nil {
		rc.respondReviewError(c, err, "create review", "")
		return
	}

	respondCreated(c, createReviewResponse{Message: "Review created successfully", Review: review})
}

// UpdateReview changes the rating and/or description of the caller's review
// PUT /api/reviews/:reviewId
func (rc *ReviewsController) UpdateReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "reviewId", msgBadReviewID)
	if !ok {
		return
	}
	req, ok := bindReview(c)
	if !ok {
		return
	}

	err := rc.reviews.Update(c.Request.Context(), auth.GetUserID(c), reviewID, reviews.Patch{
		Rating:      req.Rating,
		Description: req.Description,
	})
	rc.record(c, audit.ActionReviewUpdate, reviewID, "", err)

	if err != nil {
		rc.respondReviewError(c, err, "update review", "update")
		return
	}

	respondSuccess(c, "Review updated successfully")
}

// DeleteReview removes the caller's review
// DELETE /api/reviews/:reviewId
func (rc *ReviewsController) DeleteReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "reviewId", msgBadReviewID)
	if !ok {
		return
	}

	err := rc.reviews.Delete(c.Request.Context(), auth.GetUserID(c), reviewID)
	rc.record(c, audit.ActionReviewDelete, reviewID, "", err)

	if err != nil {
		rc.respondReviewError(c, err, "delete review", "delete")
		return
	}

	respondSuccess(c, "Review deleted successfully")
}

// bindReview decodes a review body. A rating of the wrong JSON type is
// reported with the rating rule rather than a decoder message.
func bindReview(c *gin.Context) (reviewRequest, bool) {
	var req reviewRequest
	err := c.ShouldBindJSON(&req)
	if err == nil || errors.Is(err, io.EOF) {
		return req, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "rating" {
		respondBadRequest(c, reviews.ErrInvalidRating.Error())
		return req, false
	}
	respondBadRequest(c, bindingErrorMessage(err))
	return req, false
}

func (rc *ReviewsController) record(c *gin.Context, action string, reviewID uint, description string, err error) {
	metrics.RecordReviewMutation(action, err)
	if rc.auditService == nil {
		return
	}
	ip, ua := clientInfo(c)
	rc.auditService.LogReview(auth.GetUserID(c), action, reviewID, description, ip, ua, err)
}

// respondReviewError maps review engine errors to responses. verb names the
// operation in the ownership and not-found messages.
func (rc *ReviewsController) respondReviewError(c *gin.Context, err error, context, verb string) {
	switch {
	case errors.Is(err, reviews.ErrInvalidRating),
		errors.Is(err, reviews.ErrEmptyUpdate),
		errors.Is(err, reviews.ErrDuplicateReview):
		respondBadRequest(c, err.Error())
	case errors.Is(err, reviews.ErrBookNotFound):
		respondNotFound(c, err.Error())
	case errors.Is(err, reviews.ErrUnauthorized):
		respondUnauthorized(c, "Unauthorized to "+verb+" review")
	case errors.Is(err, reviews.ErrNotFound):
		respondNotFound(c, "No review found to get "+verb+"d")
	default:
		respondInternalError(c, err, context)
	}
}
