package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mkralj/avtotrg/internal/imaging"
	"github.com/mkralj/avtotrg/internal/model"
	"github.com/mkralj/avtotrg/internal/store"
)

// maxListingUpload caps the multipart body for listing creation (photos
// included).
const maxListingUpload = 32 << 20

// ListingsHandler handles listing endpoints.
type ListingsHandler struct {
	DB  *sql.DB
	Log *zap.Logger
}

type updateListingRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Mileage     int             `json:"mileage"`
	Year        int             `json:"year"`
	Region      string          `json:"region"`
}

// List handles GET /api/listings: the buyer-facing visible set.
func (h *ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := store.ListAvailable(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	jsonResponse(w, http.StatusOK, listings)
}

// Mine handles GET /api/my/listings: everything the seller owns, including
// pending, rejected, and sold listings.
func (h *ListingsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	listings, err := store.ListForSeller(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	jsonResponse(w, http.StatusOK, listings)
}

// Create handles POST /api/listings. The body is multipart: listing fields
// plus at least one photo under "images".
func (h *ListingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxListingUpload)
	if err := r.ParseMultipartForm(maxListingUpload); err != nil {
		jsonError(w, http.StatusBadRequest, "body too large or invalid multipart form")
		return
	}

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid price")
		return
	}
	mileage, _ := strconv.Atoi(r.FormValue("mileage"))
	year, _ := strconv.Atoi(r.FormValue("year"))

	fields := store.ListingFields{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       price,
		Mileage:     mileage,
		Year:        year,
		Region:      r.FormValue("region"),
	}

	var images []model.ListingImage
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				jsonError(w, http.StatusBadRequest, "unreadable image upload")
				return
			}
			photo, err := imaging.Process(file)
			file.Close()
			if err != nil {
				jsonError(w, http.StatusBadRequest, err.Error())
				return
			}
			images = append(images, model.ListingImage{Data: photo.Data, MIME: photo.MIME})
		}
	}

	listing, err := store.CreateListing(r.Context(), h.DB, claims.UserID, fields, images)
	if err != nil {
		storeError(w, err)
		return
	}

	h.Log.Info("listing created",
		zap.Int64("listing_id", listing.ID),
		zap.String("seller", claims.Username),
		zap.String("price", listing.Price.String()),
	)
	jsonResponse(w, http.StatusCreated, listing)
}

// Get handles GET /api/listings/{id}. Sellers and admins see their own
// regardless of state; buyers only see what the projector would include.
func (h *ListingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	listing, err := h.visibleListing(w, r, id)
	if listing == nil || err != nil {
		return
	}
	jsonResponse(w, http.StatusOK, listing)
}

// Update handles PUT /api/listings/{id}.
func (h *ListingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	var req updateListingRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	listing, err := store.UpdateListing(r.Context(), h.DB, id, claims.Principal(), store.ListingFields{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Mileage:     req.Mileage,
		Year:        req.Year,
		Region:      req.Region,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, listing)
}

// Delete handles DELETE /api/listings/{id}. Sold listings are immutable
// history and cannot be deleted.
func (h *ListingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	claims := GetClaims(r.Context())
	if err := store.DeleteListing(r.Context(), h.DB, id, claims.Principal()); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "listing deleted"})
}

// GetImage handles GET /api/listings/{id}/images/{imageID}.
func (h *ListingsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid listing id")
		return
	}
	imageID, err := strconv.ParseInt(r.PathValue("imageID"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	listing, err := h.visibleListing(w, r, id)
	if listing == nil || err != nil {
		return
	}

	data, mime, err := store.GetListingImage(r.Context(), h.DB, id, imageID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no such image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// visibleListing loads a listing and enforces the fail-closed visibility
// rule for the requesting principal, writing the error response itself. A
// hidden listing is reported as not found, never as forbidden.
func (h *ListingsHandler) visibleListing(w http.ResponseWriter, r *http.Request, id int64) (*model.Listing, error) {
	listing, err := store.GetListing(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get listing")
		return nil, err
	}
	claims := GetClaims(r.Context())
	if listing == nil || listing.DeletedAt != nil || !store.VisibleTo(listing, claims.Principal()) {
		jsonError(w, http.StatusNotFound, "listing not found")
		return nil, nil
	}
	return listing, nil
}
