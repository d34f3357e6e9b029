package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pizzaro/pizzaro-backend/api/responses"
	"github.com/pizzaro/pizzaro-backend/api/validators"
	menusvc "github.com/pizzaro/pizzaro-backend/internal/menu"
	pkgerrors "github.com/pizzaro/pizzaro-backend/pkg/errors"
	"github.com/pizzaro/pizzaro-backend/pkg/logger"
	"github.com/pizzaro/pizzaro-backend/pkg/types"
)

type sectionRequest struct {
	Name     string              `json:"name" validate:"required"`
	Slug     string              `json:"slug" validate:"required"`
	Schema   types.SectionSchema `json:"schema"`
	Position *int                `json:"position"`
}

func (r sectionRequest) toInput() menusvc.SectionInput {
	return menusvc.SectionInput{
		Name:     r.Name,
		Slug:     r.Slug,
		Schema:   r.Schema,
		Position: r.Position,
	}
}

type variantPayload struct {
	Name   string `json:"name" validate:"required"`
	Weight string `json:"weight"`
	Kcal   string `json:"kcal"`
	Price  string `json:"price" validate:"required"`
}

type productRequest struct {
	SectionID     int64            `json:"sectionId"`
	SectionTempID string           `json:"sectionTempId"`
	Name          string           `json:"name" validate:"required"`
	Description   string           `json:"description"`
	ImageURL      string           `json:"imageUrl"`
	Position      *int             `json:"position"`
	Variants      []variantPayload `json:"variants" validate:"required,min=1,dive"`
}

func (r productRequest) toInput() menusvc.ProductInput {
	variants := make([]menusvc.VariantInput, 0, len(r.Variants))
	for _, v := range r.Variants {
		variants = append(variants, menusvc.VariantInput{
			Name:   v.Name,
			Weight: v.Weight,
			Kcal:   v.Kcal,
			Price:  v.Price,
		})
	}
	return menusvc.ProductInput{
		SectionID:     r.SectionID,
		SectionTempID: r.SectionTempID,
		Name:          r.Name,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		Position:      r.Position,
		Variants:      variants,
	}
}

// Menu returns the full storefront menu, sections and products in display
// order.
func Menu(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		sections, err := svc.ListSections(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"sections": newSectionListResponse(sections)})
	}
}

// MenuSectionCreate adds a menu section.
func MenuSectionCreate(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload sectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		section, err := svc.CreateSection(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newSectionResponse(section))
	}
}

// MenuSectionUpdate rewrites a menu section's editable fields.
func MenuSectionUpdate(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "sectionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload sectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		section, err := svc.UpdateSection(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSectionResponse(section))
	}
}

// MenuSectionDelete removes a section and, through the FK cascade, its
// products.
func MenuSectionDelete(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "sectionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteSection(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// MenuProductCreate adds a product to an existing section.
func MenuProductCreate(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponse(product))
	}
}

// MenuProductUpdate rewrites a product's editable fields.
func MenuProductUpdate(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// MenuProductDelete removes a product.
func MenuProductDelete(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type batchSectionCreatePayload struct {
	TempID string `json:"tempId" validate:"required"`
	sectionRequest
}

type menuBatchRequest struct {
	CreateSections []batchSectionCreatePayload `json:"createSections" validate:"dive"`
	UpdateSections map[string]sectionRequest   `json:"updateSections" validate:"dive"`
	DeleteSections []int64                     `json:"deleteSections"`

	CreateProducts []productRequest          `json:"createProducts" validate:"dive"`
	UpdateProducts map[string]productRequest `json:"updateProducts" validate:"dive"`
	DeleteProducts []int64                   `json:"deleteProducts"`
}

type menuBatchResponse struct {
	CreatedSectionIDs map[string]int64 `json:"createdSectionIds"`
	CreatedProductIDs []int64          `json:"createdProductIds"`
}

// MenuBatchSave applies the admin editor's queued changes in a single
// transaction.
func MenuBatchSave(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload menuBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BatchSave(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		createdSections := result.CreatedSectionIDs
		if createdSections == nil {
			createdSections = map[string]int64{}
		}
		createdProducts := result.CreatedProductIDs
		if createdProducts == nil {
			createdProducts = []int64{}
		}
		responses.WriteSuccess(w, menuBatchResponse{
			CreatedSectionIDs: createdSections,
			CreatedProductIDs: createdProducts,
		})
	}
}

func (r menuBatchRequest) toInput() (menusvc.BatchInput, error) {
	input := menusvc.BatchInput{
		DeleteSections: r.DeleteSections,
		DeleteProducts: r.DeleteProducts,
	}

	for _, create := range r.CreateSections {
		input.CreateSections = append(input.CreateSections, menusvc.BatchSectionCreate{
			TempID:       create.TempID,
			SectionInput: create.toInput(),
		})
	}
	if len(r.UpdateSections) > 0 {
		input.UpdateSections = make(map[int64]menusvc.SectionInput, len(r.UpdateSections))
		for rawID, update := range r.UpdateSections {
			id, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil {
				return menusvc.BatchInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid section id "+rawID)
			}
			input.UpdateSections[id] = update.toInput()
		}
	}

	for _, create := range r.CreateProducts {
		input.CreateProducts = append(input.CreateProducts, create.toInput())
	}
	if len(r.UpdateProducts) > 0 {
		input.UpdateProducts = make(map[int64]menusvc.ProductInput, len(r.UpdateProducts))
		for rawID, update := range r.UpdateProducts {
			id, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil {
				return menusvc.BatchInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id "+rawID)
			}
			input.UpdateProducts[id] = update.toInput()
		}
	}

	return input, nil
}

func pathID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+param)
	}
	return id, nil
}
