package api

import (
	"net/http"

	"github.com/Domenick1991/airbooking-desk/internal/service/reference"
	"github.com/gin-gonic/gin"
)

type ReferenceHandler struct {
	service reference.ReferenceUseCase
}

func NewReferenceHandler(service reference.ReferenceUseCase) *ReferenceHandler {
	return &ReferenceHandler{service: service}
}

func (h *ReferenceHandler) Register(router *gin.RouterGroup) {
	router.GET("/reference", h.load)
	router.GET("/destinations", h.destinations)
}

// load never fails: missing data degrades to an empty country list and the
// default exchange rate.
func (h *ReferenceHandler) load(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Load(c.Request.Context()))
}

func (h *ReferenceHandler) destinations(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Destinations(c.Request.Context()))
}
