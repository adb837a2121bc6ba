package orderserver

import (
	catalogdomain "github.com/Apurer/go-gin-order-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-order-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
)

const dateLayout = "2006-01-02"

func fromProduct(product *catalogdomain.Product) *Product {
	if product == nil {
		return nil
	}
	return &Product{
		Id:        product.ID,
		Name:      product.Name,
		UnitPrice: Money(product.UnitPrice),
		Stock:     product.Stock,
	}
}

func fromProducts(products []*catalogdomain.Product) []Product {
	out := make([]Product, 0, len(products))
	for _, product := range products {
		out = append(out, *fromProduct(product))
	}
	return out
}

func toProductInput(payload ProductWrite) catalogports.ProductInput {
	return catalogports.ProductInput{
		Name:      payload.Name,
		UnitPrice: payload.UnitPrice.Decimal(),
		Stock:     payload.Stock,
	}
}

func fromOrderDetail(detail *ordersdomain.OrderDetail) OrderDetail {
	return OrderDetail{
		Id:        detail.ID,
		OrderId:   detail.OrderID,
		ProductId: detail.ProductID,
		Product:   fromProduct(detail.Product),
		Quantity:  detail.Quantity,
		Subtotal:  Money(detail.Subtotal()),
	}
}

func fromOrderDetails(details []*ordersdomain.OrderDetail) []OrderDetail {
	out := make([]OrderDetail, 0, len(details))
	for _, detail := range details {
		out = append(out, fromOrderDetail(detail))
	}
	return out
}

func fromOrder(order *ordersdomain.Order) Order {
	return Order{
		Id:           order.ID,
		Date:         order.Date.Format(dateLayout),
		Status:       string(order.Status),
		OrderNumber:  order.OrderNumber,
		OrderDetails: fromOrderDetails(order.Details),
		ItemCount:    order.ItemCount(),
		TotalPrice:   Money(order.TotalPrice()),
	}
}

func fromOrders(orders []*ordersdomain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, fromOrder(order))
	}
	return out
}

func toLineItems(items []LineItem) []types.LineItemInput {
	out := make([]types.LineItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, types.LineItemInput{ProductID: item.ProductId, Quantity: item.Quantity})
	}
	return out
}

func toOrderDetailInput(payload OrderDetailWrite) types.OrderDetailInput {
	return types.OrderDetailInput{
		ProductID: payload.ProductId,
		OrderID:   payload.OrderId,
		Quantity:  payload.Quantity,
	}
}
