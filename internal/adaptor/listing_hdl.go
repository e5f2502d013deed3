package adaptor

import (
	"encoding/json"
	"net/http"

	"rental-marketplace/internal/dto/request"
	"rental-marketplace/internal/usecase"
	"rental-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ListingHandler struct {
	service usecase.ListingService
	log     *zap.Logger
}

func NewListingHandler(service usecase.ListingService, log *zap.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		log:     log.With(zap.String("handler", "listing")),
	}
}

// CheckAvailability handles GET /api/listings/{id}/availability (public)
func (h *ListingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")
	if listingID == "" {
		utils.ResponseBadRequest(w, "Listing ID is required", nil)
		return
	}

	query := r.URL.Query()
	checkIn := query.Get("check_in")
	checkOut := query.Get("check_out")
	if checkIn == "" || checkOut == "" {
		utils.ResponseBadRequest(w, "check_in and check_out are required", nil)
		return
	}

	availability, err := h.service.CheckAvailability(r.Context(), listingID, checkIn, checkOut)
	if err != nil {
		handleServiceError(w, h.log, err, "check availability")
		return
	}

	utils.ResponseSuccess(w, "success", availability)
}

// PayPublishFee handles POST /api/listings/{id}/publish-fee (protected, host)
func (h *ListingHandler) PayPublishFee(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	listingID := chi.URLParam(r, "id")
	if listingID == "" {
		utils.ResponseBadRequest(w, "Listing ID is required", nil)
		return
	}

	listing, err := h.service.PayPublishFee(r.Context(), userID.String(), listingID)
	if err != nil {
		handleServiceError(w, h.log, err, "pay publish fee")
		return
	}

	utils.ResponseSuccess(w, "success", listing)
}

// BlockDate handles POST /api/listings/{id}/blocked-dates (protected, host)
func (h *ListingHandler) BlockDate(w http.ResponseWriter, r *http.Request) {
	h.blockedDate(w, r, true, "block date")
}

// UnblockDate handles DELETE /api/listings/{id}/blocked-dates (protected, host)
func (h *ListingHandler) UnblockDate(w http.ResponseWriter, r *http.Request) {
	h.blockedDate(w, r, false, "unblock date")
}

func (h *ListingHandler) blockedDate(w http.ResponseWriter, r *http.Request, block bool, operation string) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	listingID := chi.URLParam(r, "id")
	if listingID == "" {
		utils.ResponseBadRequest(w, "Listing ID is required", nil)
		return
	}

	var req request.BlockDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	var err error
	if block {
		err = h.service.BlockDate(r.Context(), userID.String(), listingID, &req)
	} else {
		err = h.service.UnblockDate(r.Context(), userID.String(), listingID, &req)
	}
	if err != nil {
		handleServiceError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// ApproveListing handles PUT /api/admin/listings/{id}/approve (admin only)
func (h *ListingHandler) ApproveListing(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")
	if listingID == "" {
		utils.ResponseBadRequest(w, "Listing ID is required", nil)
		return
	}

	listing, err := h.service.ApproveListing(r.Context(), listingID)
	if err != nil {
		handleServiceError(w, h.log, err, "approve listing")
		return
	}

	utils.ResponseSuccess(w, "success", listing)
}
