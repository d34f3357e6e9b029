package controllers

import (
	"time"

	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
	"github.com/pizzaro/pizzaro-backend/pkg/types"
)

type orderResponse struct {
	ID            string           `json:"id"`
	CustomerName  string           `json:"customerName"`
	Phone         string           `json:"phone"`
	Address       string           `json:"address"`
	DeliveryTime  string           `json:"deliveryTime"`
	PaymentMethod string           `json:"paymentMethod"`
	Items         types.OrderItems `json:"items"`
	TotalCents    int              `json:"totalCents"`
	Status        string           `json:"status"`
	CreatedAt     time.Time        `json:"createdAt"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := order.Items
	if items == nil {
		items = types.OrderItems{}
	}
	return orderResponse{
		ID:            order.ID,
		CustomerName:  order.CustomerName,
		Phone:         order.Phone,
		Address:       order.Address,
		DeliveryTime:  order.DeliveryTime,
		PaymentMethod: string(order.PaymentMethod),
		Items:         items,
		TotalCents:    order.TotalCents,
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt,
	}
}

func newOrderListResponse(orders []models.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderResponse(&orders[i]))
	}
	return out
}

type productResponse struct {
	ID          int64                 `json:"id"`
	SectionID   int64                 `json:"sectionId"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	ImageURL    string                `json:"imageUrl,omitempty"`
	Position    int                   `json:"position"`
	Variants    types.ProductVariants `json:"variants"`
}

func newProductResponse(product *models.Product) productResponse {
	variants := product.Variants
	if variants == nil {
		variants = types.ProductVariants{}
	}
	return productResponse{
		ID:          product.ID,
		SectionID:   product.SectionID,
		Name:        product.Name,
		Description: product.Description,
		ImageURL:    product.ImageURL,
		Position:    product.Position,
		Variants:    variants,
	}
}

type sectionResponse struct {
	ID       int64               `json:"id"`
	Name     string              `json:"name"`
	Slug     string              `json:"slug"`
	Schema   types.SectionSchema `json:"schema"`
	Position int                 `json:"position"`
	Items    []productResponse   `json:"items"`
}

func newSectionResponse(section *models.MenuSection) sectionResponse {
	items := make([]productResponse, 0, len(section.Items))
	for i := range section.Items {
		items = append(items, newProductResponse(&section.Items[i]))
	}
	return sectionResponse{
		ID:       section.ID,
		Name:     section.Name,
		Slug:     section.Slug,
		Schema:   section.Schema,
		Position: section.Position,
		Items:    items,
	}
}

func newSectionListResponse(sections []models.MenuSection) []sectionResponse {
	out := make([]sectionResponse, 0, len(sections))
	for i := range sections {
		out = append(out, newSectionResponse(&sections[i]))
	}
	return out
}
