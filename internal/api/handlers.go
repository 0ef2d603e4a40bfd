package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contactkeval/option-pricer/internal/calculator"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
}

type sweepRequest struct {
	calculator.Form
	Axis string  `form:"axis" json:"axis" binding:"required"`
	From float64 `form:"from" json:"from"`
	To   float64 `form:"to"   json:"to"`
	Step float64 `form:"step" json:"step" binding:"required"`
}

type sweepResponse struct {
	Axis    string              `json:"axis"`
	Results []calculator.Result `json:"results"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) defaults(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Defaults())
}

func (s *Server) price(c *gin.Context) {
	var form calculator.Form
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	res, err := s.svc.Price(c.Request.Context(), form)
	if err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) impliedVol(c *gin.Context) {
	var form calculator.Form
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	res, err := s.svc.ImpliedVol(c.Request.Context(), form)
	if err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) sweep(c *gin.Context) {
	var req sweepRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	sw := calculator.Sweep{Axis: calculator.Axis(req.Axis), From: req.From, To: req.To, Step: req.Step}
	out, err := s.svc.Sweep(c.Request.Context(), req.Form, sw)
	if err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, sweepResponse{Axis: req.Axis, Results: out})
}

// statusFor maps calculator errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pricing.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, pricing.ErrNoConvergence):
		return http.StatusUnprocessableEntity
	case errors.Is(err, data.ErrNoData):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
