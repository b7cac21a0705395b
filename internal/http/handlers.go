package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/service"
)

type Server struct {
	engine   *gin.Engine
	products *service.ProductService
	browser  *service.Browser
	cart     *cart.Store
	feed     *notify.Feed
	log      logrus.FieldLogger
}

func NewServer(products *service.ProductService, browser *service.Browser, store *cart.Store, feed *notify.Feed, log logrus.FieldLogger) *Server {
	r := gin.New()
	r.Use(requestLogger(log), gin.Recovery())
	s := &Server{engine: r, products: products, browser: browser, cart: store, feed: feed, log: log}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		products := v1.Group("/products")
		products.GET("", s.listProducts)
		products.GET(":id", s.getProduct)

		v1.GET("/categories", s.listCategories)

		c := v1.Group("/cart")
		c.GET("", s.getCart)
		c.POST("/items", s.addToCart)
		c.PUT("/items/:id", s.updateQuantity)
		c.DELETE("/items/:id", s.removeFromCart)
		c.DELETE("", s.clearCart)
		c.POST("/toggle", s.toggleCart)

		view := v1.Group("/view")
		view.GET("", s.getView)
		view.POST("/page", s.setPage)
		view.POST("/category", s.selectCategory)
		view.POST("/search", s.search)

		n := v1.Group("/notifications")
		n.GET("", s.listNotifications)
		n.DELETE(":id", s.dismissNotification)
	}
}

// requestLogger assigns X-Request-ID and writes one access line per request.
func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Info("http request")
	}
}

// Catalog handlers

// @Summary List products
// @Tags products
// @Produce json
// @Param page query int false "Page, from 1"
// @Param category query string false "Category tag"
// @Param q query string false "Free-text search, wins over category"
// @Success 200 {object} service.Listing
// @Failure 503 {object} map[string]string
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	q := service.Query{Category: c.Query("category"), Search: c.Query("q")}
	if v := c.Query("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return
		}
		q.Page = p
	}
	l, err := s.products.Browse(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := s.products.GetByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary List category tags
// @Tags products
// @Produce json
// @Success 200 {array} string
// @Failure 503 {object} map[string]string
// @Router /categories [get]
func (s *Server) listCategories(c *gin.Context) {
	cats, err := s.products.Categories(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

// Cart handlers

type cartResponse struct {
	Items      []domain.CartItem `json:"items"`
	IsCartOpen bool              `json:"isCartOpen"`
	TotalItems int               `json:"totalItems"`
	TotalPrice string            `json:"totalPrice"`
}

func (s *Server) cartJSON(c *gin.Context) {
	st := s.cart.State()
	c.JSON(http.StatusOK, cartResponse{
		Items:      st.Items,
		IsCartOpen: st.IsCartOpen,
		TotalItems: st.TotalItems(),
		TotalPrice: domain.FormatPrice(st.TotalPrice()),
	})
}

// @Summary Get cart
// @Tags cart
// @Produce json
// @Success 200 {object} cartResponse
// @Router /cart [get]
func (s *Server) getCart(c *gin.Context) {
	s.cartJSON(c)
}

// addItemReq carries either the full product, as shown in the listing,
// or just its id to be resolved through the catalog.
type addItemReq struct {
	ProductID int64           `json:"productId" binding:"omitempty,gt=0"`
	Product   *domain.Product `json:"product"`
}

// @Summary Add product to cart
// @Tags cart
// @Accept json
// @Produce json
// @Param input body addItemReq true "Product or product id"
// @Success 200 {object} cartResponse
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /cart/items [post]
func (s *Server) addToCart(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	var p domain.Product
	switch {
	case req.Product != nil:
		if req.Product.ID <= 0 || req.Product.Price < 0 ||
			req.Product.DiscountPercentage < 0 || req.Product.DiscountPercentage > 100 {
			s.fail(c, service.ErrInvalidInput)
			return
		}
		p = *req.Product
	case req.ProductID > 0:
		got, err := s.products.GetByID(c.Request.Context(), req.ProductID)
		if err != nil {
			s.fail(c, err)
			return
		}
		p = *got
	default:
		s.fail(c, service.ErrInvalidInput)
		return
	}
	s.cart.AddToCart(p)
	s.cartJSON(c)
}

type updateQuantityReq struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// @Summary Set item quantity
// @Description Quantity is absolute; zero or negative removes the item.
// @Tags cart
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body updateQuantityReq true "Quantity"
// @Success 200 {object} cartResponse
// @Failure 400 {object} map[string]string
// @Router /cart/items/{id} [put]
func (s *Server) updateQuantity(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	s.cart.UpdateQuantity(id, *req.Quantity)
	s.cartJSON(c)
}

// @Summary Remove item
// @Tags cart
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} cartResponse
// @Failure 400 {object} map[string]string
// @Router /cart/items/{id} [delete]
func (s *Server) removeFromCart(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	s.cart.RemoveFromCart(id)
	s.cartJSON(c)
}

// @Summary Clear cart
// @Tags cart
// @Produce json
// @Success 200 {object} cartResponse
// @Router /cart [delete]
func (s *Server) clearCart(c *gin.Context) {
	s.cart.ClearCart()
	s.cartJSON(c)
}

// @Summary Open or close the cart panel
// @Tags cart
// @Produce json
// @Success 200 {object} cartResponse
// @Router /cart/toggle [post]
func (s *Server) toggleCart(c *gin.Context) {
	s.cart.ToggleCart()
	s.cartJSON(c)
}

// View handlers

// @Summary Current browse state
// @Tags view
// @Produce json
// @Success 200 {object} service.View
// @Router /view [get]
func (s *Server) getView(c *gin.Context) {
	c.JSON(http.StatusOK, s.browser.View())
}

type pageReq struct {
	Page int `json:"page" binding:"required,gte=1"`
}

// @Summary Go to page
// @Tags view
// @Accept json
// @Produce json
// @Param input body pageReq true "Page"
// @Success 200 {object} service.View
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /view/page [post]
func (s *Server) setPage(c *gin.Context) {
	var req pageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	v, err := s.browser.SetPage(c.Request.Context(), req.Page)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type categoryReq struct {
	Category string `json:"category" binding:"max=100"`
}

// @Summary Select category, empty for all products
// @Tags view
// @Accept json
// @Produce json
// @Param input body categoryReq true "Category"
// @Success 200 {object} service.View
// @Failure 409 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /view/category [post]
func (s *Server) selectCategory(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	v, err := s.browser.SelectCategory(c.Request.Context(), req.Category)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type searchReq struct {
	Query string `json:"query" binding:"max=200"`
}

// @Summary Search products
// @Tags view
// @Accept json
// @Produce json
// @Param input body searchReq true "Query"
// @Success 200 {object} service.View
// @Failure 409 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /view/search [post]
func (s *Server) search(c *gin.Context) {
	var req searchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	v, err := s.browser.Search(c.Request.Context(), req.Query)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Notification handlers

// @Summary Pending notifications
// @Tags notifications
// @Produce json
// @Success 200 {array} notify.Notification
// @Router /notifications [get]
func (s *Server) listNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, s.feed.Pending())
}

// @Summary Dismiss notification
// @Tags notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /notifications/{id} [delete]
func (s *Server) dismissNotification(c *gin.Context) {
	if !s.feed.Dismiss(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) fail(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", c.FullPath()).Warn("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
