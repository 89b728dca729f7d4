package ui

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"postlift/adapters/excel"
	"postlift/app"
	"postlift/domain/attribution"
	"postlift/domain/campaign"
	"postlift/domain/core"
	"postlift/internal"
	"postlift/internal/errors"
	"postlift/ports"
)

// Server is the JSON API for running attributions and managing campaigns
type Server struct {
	router      *gin.Engine
	attribution *app.AttributionService
	campaigns   ports.CampaignRepository
	reports     *excel.ReportWriter
	logger      *internal.Logger
}

// NewServer creates the API server
func NewServer(attribution *app.AttributionService, campaigns ports.CampaignRepository, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:      gin.Default(),
		attribution: attribution,
		campaigns:   campaigns,
		reports:     excel.NewReportWriter(),
		logger:      logger.Named("http"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/attribution", s.handleRunAttribution)
		api.POST("/attribution/export", s.handleExportAttribution)
		api.POST("/attribution/report", s.handleAttributionReport)

		api.POST("/campaigns", s.handleCreateCampaign)
		api.GET("/campaigns", s.handleListCampaigns)
		api.GET("/campaigns/:id", s.handleGetCampaign)
		api.DELETE("/campaigns/:id", s.handleDeleteCampaign)
	}
}

// Run starts the HTTP server on the given port
func (s *Server) Run(port string) error {
	s.logger.Info("listening on :%s", port)
	return s.router.Run(":" + port)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// attributionRequest accepts either a stored campaign ID or an explicit window
type attributionRequest struct {
	CampaignID  string    `json:"campaign_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Influencers []string  `json:"influencers"`
}

func (s *Server) handleRunAttribution(c *gin.Context) {
	result, ok := s.runFromRequest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleExportAttribution(c *gin.Context) {
	result, ok := s.runFromRequest(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.reports.Write(&buf, result); err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+excel.Filename("export")+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (s *Server) handleAttributionReport(c *gin.Context) {
	result, ok := s.runFromRequest(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", RenderHTML(MethodologyMarkdown(result)))
}

// runFromRequest binds the request and executes the attribution run, writing
// the error response itself when anything fails.
func (s *Server) runFromRequest(c *gin.Context) (*attribution.Result, bool) {
	var req attributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	var result *attribution.Result
	var err error
	if req.CampaignID != "" {
		result, err = s.attribution.Run(c.Request.Context(), app.RunRequest{
			CampaignID:  core.CampaignID(req.CampaignID),
			Influencers: req.Influencers,
		})
	} else {
		result, err = s.attribution.RunWindow(c.Request.Context(), req.Start, req.End, req.Influencers)
	}
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return result, true
}

func (s *Server) handleCreateCampaign(c *gin.Context) {
	var req struct {
		Name   string    `json:"name" binding:"required"`
		Start  time.Time `json:"start" binding:"required"`
		End    time.Time `json:"end" binding:"required"`
		Budget float64   `json:"budget"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	camp, err := campaign.NewCampaign(req.Name, req.Start, req.End, req.Budget)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.campaigns.Create(c.Request.Context(), camp); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, camp)
}

func (s *Server) handleListCampaigns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	campaigns, err := s.campaigns.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns, "count": len(campaigns)})
}

func (s *Server) handleGetCampaign(c *gin.Context) {
	id, err := core.ParseCampaignID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	camp, err := s.campaigns.GetByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, camp)
}

func (s *Server) handleDeleteCampaign(c *gin.Context) {
	id, err := core.ParseCampaignID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.campaigns.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps domain and app errors onto HTTP status codes
func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Error("request failed: %v", err)
	switch {
	case core.IsNotFoundError(err) || errors.GetCode(err) == errors.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.GetCode(err) == errors.CodeValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case core.IsUpstreamError(err) ||
		errors.GetCode(err) == errors.CodeShopifyError ||
		errors.GetCode(err) == errors.CodeInstagramError:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
