package delivery

import (
	"net/http"
	"strconv"

	"order_service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase domain.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc domain.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		log:     logger,
	}
}

// RegisterRoutes wires the order endpoints. Listing and deletion are
// admin-scoped; everything else requires any authenticated user.
func (h *OrderHandler) RegisterRoutes(router gin.IRouter, authMW gin.HandlerFunc, adminOnly gin.HandlerFunc) {
	orders := router.Group("/orders", authMW)
	{
		orders.POST("", h.CreateOrder)
		orders.PUT("/:orderId", h.UpdateOrder)
		orders.GET("/:orderId", h.GetOrderByID)
		orders.GET("", adminOnly, h.ListOrders)
		orders.DELETE("/:orderId", adminOnly, h.SoftDeleteOrder)
	}
}

type productRequest struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Quantity int     `json:"quantity" binding:"required,gt=0"`
}

type orderRequest struct {
	OrderStatus string           `json:"orderStatus" binding:"required"`
	Products    []productRequest `json:"products" binding:"required,min=1,dive"`
}

func (r orderRequest) toProducts() []domain.Product {
	products := make([]domain.Product, 0, len(r.Products))
	for _, p := range r.Products {
		products = append(products, domain.Product{
			Name:     p.Name,
			Price:    p.Price,
			Quantity: p.Quantity,
		})
	}
	return products
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var requestBody orderRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Failed to bind JSON for create order: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	username := callerUsername(c)
	createdOrder, err := h.useCase.CreateOrder(c.Request.Context(), username, requestBody.OrderStatus, requestBody.toProducts())
	if err != nil {
		h.log.Warnf("Failed to create order for user %s: %v", username, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to create order: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Order created successfully", createdOrder)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	var requestBody orderRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Failed to bind JSON for update order %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	username := callerUsername(c)
	updatedOrder, err := h.useCase.UpdateOrder(c.Request.Context(), id, username, requestBody.OrderStatus, requestBody.toProducts())
	if err != nil {
		h.log.Warnf("Failed to update order %d for user %s: %v", id, username, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to update order: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Order updated successfully", updatedOrder)
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	username := callerUsername(c)
	order, err := h.useCase.GetOrderByID(c.Request.Context(), id, username)
	if err != nil {
		h.log.Warnf("Failed to get order %d for user %s: %v", id, username, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve order: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	var status *string
	if raw, exists := c.GetQuery("status"); exists {
		status = &raw
	}

	minPrice, ok := priceQueryParam(c, "minPrice")
	if !ok {
		return
	}
	maxPrice, ok := priceQueryParam(c, "maxPrice")
	if !ok {
		return
	}

	orders, err := h.useCase.ListOrders(c.Request.Context(), status, minPrice, maxPrice)
	if err != nil {
		h.log.Warnf("Failed to list orders: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve orders: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) SoftDeleteOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	username := callerUsername(c)
	if err := h.useCase.SoftDeleteOrder(c.Request.Context(), id, username); err != nil {
		h.log.Warnf("Failed to soft-delete order %d for user %s: %v", id, username, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to delete order: "+err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

func orderIDParam(c *gin.Context) (int64, bool) {
	idStr := c.Param("orderId")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID format")
		return 0, false
	}
	return id, true
}

func priceQueryParam(c *gin.Context, name string) (*float64, bool) {
	raw, exists := c.GetQuery(name)
	if !exists {
		return nil, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+name+" format")
		return nil, false
	}
	return &value, true
}
