package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/velmala/funding-advisor/internal/advisor"
	"github.com/velmala/funding-advisor/internal/funding"
	"github.com/velmala/funding-advisor/internal/registry"
)

type companyRequest struct {
	Name             string   `json:"name" binding:"required"`
	BusinessID       string   `json:"business_id"`
	Industry         string   `json:"industry"`
	RevenueClass     string   `json:"revenue_class"`
	Employees        int      `json:"employees"`
	Stage            string   `json:"stage" binding:"required"`
	FundingNeedTypes []string `json:"funding_need_types" binding:"required"`
	FundingAmountMin *int     `json:"funding_amount_min"`
	FundingAmountMax *int     `json:"funding_amount_max"`
	Country          string   `json:"country"`
}

type byBusinessIDRequest struct {
	BusinessID       string   `json:"business_id" binding:"required"`
	Stage            string   `json:"stage" binding:"required"`
	RevenueClass     string   `json:"revenue_class"`
	Employees        int      `json:"employees"`
	FundingNeedTypes []string `json:"funding_need_types" binding:"required"`
	FundingAmountMin *int     `json:"funding_amount_min"`
	FundingAmountMax *int     `json:"funding_amount_max"`
}

func (s *Server) recommendations(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company := &funding.CompanyProfile{
		Name:             req.Name,
		BusinessID:       req.BusinessID,
		Industry:         req.Industry,
		RevenueClass:     req.RevenueClass,
		Employees:        req.Employees,
		Stage:            funding.Stage(req.Stage),
		FundingNeedTypes: req.FundingNeedTypes,
		FundingAmountMin: req.FundingAmountMin,
		FundingAmountMax: req.FundingAmountMax,
		Country:          req.Country,
	}

	result, err := s.advisor.Recommend(c.Request.Context(), company, requestOptions(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) recommendationsByBusinessID(c *gin.Context) {
	var req byBusinessIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := registry.ProfileParams{
		Stage:            funding.Stage(req.Stage),
		RevenueClass:     req.RevenueClass,
		Employees:        req.Employees,
		FundingNeedTypes: req.FundingNeedTypes,
		FundingAmountMin: req.FundingAmountMin,
		FundingAmountMax: req.FundingAmountMax,
	}

	result, err := s.advisor.RecommendByBusinessID(c.Request.Context(), req.BusinessID, params, requestOptions(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func requestOptions(c *gin.Context) advisor.Options {
	useLLM, _ := strconv.ParseBool(c.DefaultQuery("use_llm", "false"))
	summarize, _ := strconv.ParseBool(c.DefaultQuery("summarize", "false"))
	return advisor.Options{Rewrite: useLLM, Summarize: summarize}
}

// fail maps advisor and registry failure modes to distinct status codes:
// caller mistakes are 400, a missing company is 404, upstream registry
// trouble is 502 and a requested-but-unconfigured rewriter is 503.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, advisor.ErrInvalidInput), errors.Is(err, registry.ErrMalformedID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, advisor.ErrCompanyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, registry.ErrRateLimited), errors.Is(err, registry.ErrUnavailable):
		s.logger.Warn("registry lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, advisor.ErrRewriteNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.logger.Error("recommendation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
