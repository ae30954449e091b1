package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/casavia/dealerdesk-backend/api/responses"
	"github.com/casavia/dealerdesk-backend/api/validators"
	"github.com/casavia/dealerdesk-backend/internal/inventory"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
	"github.com/casavia/dealerdesk-backend/pkg/logger"
	"github.com/casavia/dealerdesk-backend/pkg/pagination"
)

// ListVehicles serves the filtered admin inventory listing.
func ListVehicles(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := vehicleFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), filter, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"vehicles":    result.Vehicles,
			"next_cursor": result.NextCursor,
		})
	}
}

func vehicleFilterFromQuery(r *http.Request) (inventory.ListFilter, error) {
	var filter inventory.ListFilter

	if raw := strings.TrimSpace(r.URL.Query().Get("listing_status")); raw != "" {
		status, err := enums.ParseListingStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing_status")
		}
		filter.ListingStatus = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("vendor_status")); raw != "" {
		status, err := enums.ParseVendorStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor_status")
		}
		filter.VendorStatus = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("vendor_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor_id")
		}
		filter.VendorID = &id
	}
	isSold, err := validators.ParseQueryBool(r, "is_sold")
	if err != nil {
		return filter, err
	}
	filter.IsSold = isSold
	filter.Search = validators.SanitizeString(r.URL.Query().Get("q"), 120)
	return filter, nil
}

// GetVehicle serves one vehicle by id.
func GetVehicle(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicle, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicle)
	}
}

type createVehicleRequest struct {
	VIN          string   `json:"vin,omitempty"`
	StockNumber  string   `json:"stock_number,omitempty"`
	Make         string   `json:"make" validate:"required"`
	Model        string   `json:"model" validate:"required"`
	Year         int      `json:"year" validate:"required,min=1900"`
	Price        int      `json:"price" validate:"min=0"`
	Odometer     int      `json:"odometer" validate:"min=0"`
	BodyType     string   `json:"body_type,omitempty"`
	Color        string   `json:"color,omitempty"`
	FuelType     string   `json:"fuel_type,omitempty"`
	Transmission string   `json:"transmission,omitempty"`
	Drivetrain   string   `json:"drivetrain,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Images       []string `json:"images,omitempty"`

	PriceMarkupType  string  `json:"price_markup_type,omitempty"`
	PriceMarkupValue float64 `json:"price_markup_value,omitempty"`
	ListingStatus    string  `json:"listing_status,omitempty"`
}

func (p createVehicleRequest) toInput() (inventory.CreateVehicleInput, error) {
	input := inventory.CreateVehicleInput{
		VIN:              strings.ToUpper(strings.TrimSpace(p.VIN)),
		StockNumber:      strings.TrimSpace(p.StockNumber),
		Make:             strings.TrimSpace(p.Make),
		Model:            strings.TrimSpace(p.Model),
		Year:             p.Year,
		Price:            p.Price,
		Odometer:         p.Odometer,
		BodyType:         strings.TrimSpace(p.BodyType),
		Color:            strings.TrimSpace(p.Color),
		FuelType:         strings.TrimSpace(p.FuelType),
		Transmission:     strings.TrimSpace(p.Transmission),
		Drivetrain:       strings.TrimSpace(p.Drivetrain),
		Description:      p.Description,
		Images:           p.Images,
		PriceMarkupValue: p.PriceMarkupValue,
	}
	if p.PriceMarkupType != "" {
		markup, err := enums.ParseMarkupType(p.PriceMarkupType)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_markup_type")
		}
		input.PriceMarkupType = markup
	}
	if p.ListingStatus != "" {
		status, err := enums.ParseListingStatus(p.ListingStatus)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing_status")
		}
		input.ListingStatus = status
	}
	return input, nil
}

// CreateVehicle registers a manual listing.
func CreateVehicle(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createVehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicle, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vehicle)
	}
}

type updateVehicleRequest struct {
	Price            *int      `json:"price,omitempty" validate:"omitempty,min=0"`
	Odometer         *int      `json:"odometer,omitempty" validate:"omitempty,min=0"`
	BodyType         *string   `json:"body_type,omitempty"`
	Color            *string   `json:"color,omitempty"`
	FuelType         *string   `json:"fuel_type,omitempty"`
	Transmission     *string   `json:"transmission,omitempty"`
	Drivetrain       *string   `json:"drivetrain,omitempty"`
	Description      *string   `json:"description,omitempty"`
	Images           *[]string `json:"images,omitempty"`
	PriceMarkupType  *string   `json:"price_markup_type,omitempty"`
	PriceMarkupValue *float64  `json:"price_markup_value,omitempty"`
	ListingStatus    *string   `json:"listing_status,omitempty"`
	IsSold           *bool     `json:"is_sold,omitempty"`
}

func (p updateVehicleRequest) toInput() (inventory.UpdateVehicleInput, error) {
	input := inventory.UpdateVehicleInput{
		Price:            p.Price,
		Odometer:         p.Odometer,
		BodyType:         p.BodyType,
		Color:            p.Color,
		FuelType:         p.FuelType,
		Transmission:     p.Transmission,
		Drivetrain:       p.Drivetrain,
		Description:      p.Description,
		Images:           p.Images,
		PriceMarkupValue: p.PriceMarkupValue,
		IsSold:           p.IsSold,
	}
	if p.PriceMarkupType != nil {
		markup, err := enums.ParseMarkupType(*p.PriceMarkupType)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_markup_type")
		}
		input.PriceMarkupType = &markup
	}
	if p.ListingStatus != nil {
		status, err := enums.ParseListingStatus(*p.ListingStatus)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing_status")
		}
		input.ListingStatus = &status
	}
	return input, nil
}

// UpdateVehicle applies a partial update to a vehicle.
func UpdateVehicle(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateVehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicle, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicle)
	}
}

// MarkVehicleSold flips a vehicle to sold.
func MarkVehicleSold(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicle, err := svc.MarkSold(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicle)
	}
}

// DeleteVehicle removes a vehicle row.
func DeleteVehicle(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid identifier").WithDetails(map[string]any{"param": param})
	}
	return id, nil
}
