package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

// AdminHandler serves the back office. Every route sits behind RequireAdmin.
type AdminHandler struct {
	orderService   service.OrderService
	paymentService service.PaymentService
	userService    service.UserService
	productService service.ProductService
}

func NewAdminHandler(orderService service.OrderService, paymentService service.PaymentService, userService service.UserService, productService service.ProductService) *AdminHandler {
	return &AdminHandler{
		orderService:   orderService,
		paymentService: paymentService,
		userService:    userService,
		productService: productService,
	}
}

// GetSummary godoc
//
//	@Summary		Sales dashboard
//	@Description	Counts, total sales, monthly sales and the latest orders.
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	models.OrderSummary		"Summary"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		403	{object}	response.ErrorResponse	"Admin access required"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/admin/summary [get]
func (h *AdminHandler) GetSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		summary, err := h.orderService.GetSummary(r.Context())
		if err != nil {
			logger.Error("Failed to build summary", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, summary)
	}
}

// ListOrders godoc
//
//	@Summary		List all orders
//	@Tags			Admin
//	@Produce		json
//	@Param			page		query		int												false	"Page number (default: 1)"
//	@Param			pageSize	query		int												false	"Items per page (default: 10, max: 100)"
//	@Success		200			{object}	models.PaginatedResponse{Data=[]models.Order}	"Orders"
//	@Failure		403			{object}	response.ErrorResponse							"Admin access required"
//	@Failure		500			{object}	response.ErrorResponse							"Internal server error"
//	@Security		BearerAuth
//	@Router			/admin/orders [get]
func (h *AdminHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		page, pageSize := utils.ParsePagination(r, 10)

		orders, total, err := h.orderService.ListOrders(r.Context(), page, pageSize)
		if err != nil {
			logger.Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{Data: orders, Total: total, Page: page, PageSize: pageSize})
	}
}

// ListUsers godoc
//
//	@Summary		List users
//	@Tags			Admin
//	@Produce		json
//	@Param			page		query		int												false	"Page number (default: 1)"
//	@Param			pageSize	query		int												false	"Items per page (default: 10, max: 100)"
//	@Success		200			{object}	models.PaginatedResponse{Data=[]models.User}	"Users"
//	@Failure		403			{object}	response.ErrorResponse							"Admin access required"
//	@Failure		500			{object}	response.ErrorResponse							"Internal server error"
//	@Security		BearerAuth
//	@Router			/admin/users [get]
func (h *AdminHandler) ListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		page, pageSize := utils.ParsePagination(r, 10)

		users, total, err := h.userService.ListUsers(r.Context(), page, pageSize)
		if err != nil {
			logger.Error("Failed to list users", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{Data: users, Total: total, Page: page, PageSize: pageSize})
	}
}

// MarkOrderPaid godoc
//
//	@Summary		Record an offline payment
//	@Description	Marks a cash on delivery order paid and decrements stock.
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string					true	"Order ID (UUID)"	Format(uuid)
//	@Success		200	{object}	models.Order			"Paid order"
//	@Failure		404	{object}	response.ErrorResponse	"Order not found"
//	@Failure		409	{object}	response.ErrorResponse	"Order already paid"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/admin/orders/{id}/pay [put]
func (h *AdminHandler) MarkOrderPaid() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r, logger)
		if !ok {
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		logger = logger.With(slog.String("orderId", orderID.String()))

		order, err := h.paymentService.MarkOrderPaidManually(r.Context(), orderID, claims.UserID)
		if err != nil {
			logger.Warn("Failed to mark order paid", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order marked paid by admin")
		response.Success(w, http.StatusOK, order)
	}
}

// MarkOrderDelivered godoc
//
//	@Summary		Mark an order delivered
//	@Tags			Admin
//	@Param			id	path	string	true	"Order ID (UUID)"	Format(uuid)
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse	"Order not found"
//	@Failure		409	{object}	response.ErrorResponse	"Order not paid or already delivered"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/admin/orders/{id}/deliver [put]
func (h *AdminHandler) MarkOrderDelivered() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		logger = logger.With(slog.String("orderId", orderID.String()))

		if err := h.paymentService.MarkOrderDelivered(r.Context(), orderID); err != nil {
			logger.Warn("Failed to mark order delivered", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order marked delivered")
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteOrder godoc
//
//	@Summary		Delete an order
//	@Description	Removes the order together with its line items.
//	@Tags			Admin
//	@Param			id	path	string	true	"Order ID (UUID)"	Format(uuid)
//	@Success		204
//	@Failure		400	{object}	response.ErrorResponse	"Invalid order ID"
//	@Failure		404	{object}	response.ErrorResponse	"Order not found"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/admin/orders/{id} [delete]
func (h *AdminHandler) DeleteOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		logger = logger.With(slog.String("orderId", orderID.String()))

		if err := h.orderService.DeleteOrder(r.Context(), orderID); err != nil {
			logger.Warn("Failed to delete order", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListProducts godoc
//
//	@Summary		Search the catalogue
//	@Tags			Admin
//	@Produce		json
//	@Param			query		query		string											false	"Case-insensitive name match"
//	@Param			category	query		string											false	"Exact category"
//	@Param			page		query		int												false	"Page number (default: 1)"
//	@Param			pageSize	query		int												false	"Items per page (default: 10, max: 100)"
//	@Success		200			{object}	models.PaginatedResponse{Data=[]models.Product}	"Products"
//	@Failure		403			{object}	response.ErrorResponse							"Admin access required"
//	@Failure		500			{object}	response.ErrorResponse							"Internal server error"
//	@Security		BearerAuth
//	@Router			/admin/products [get]
func (h *AdminHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		page, pageSize := utils.ParsePagination(r, 10)

		filter := models.ProductFilter{
			Query:    strings.TrimSpace(r.URL.Query().Get("query")),
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			Page:     page,
			Size:     pageSize,
		}

		products, total, err := h.productService.ListProducts(r.Context(), filter)
		if err != nil {
			logger.Error("Failed to list products", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{Data: products, Total: total, Page: page, PageSize: pageSize})
	}
}

// DeleteProduct godoc
//
//	@Summary		Delete a product
//	@Description	Products referenced by placed orders cannot be deleted.
//	@Tags			Admin
//	@Param			id	path	string	true	"Product ID (UUID)"	Format(uuid)
//	@Success		204
//	@Failure		400	{object}	response.ErrorResponse	"Invalid product ID"
//	@Failure		404	{object}	response.ErrorResponse	"Product not found"
//	@Failure		409	{object}	response.ErrorResponse	"Product is referenced by orders"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/admin/products/{id} [delete]
func (h *AdminHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		logger = logger.With(slog.String("productId", productID.String()))

		if err := h.productService.DeleteProduct(r.Context(), productID); err != nil {
			logger.Warn("Failed to delete product", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}
