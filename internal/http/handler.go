package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"disaster-report-service/internal/http/middleware"
	"disaster-report-service/internal/model"
	"disaster-report-service/internal/service"
)

type Handler struct {
	reportService  *service.ReportService
	disputeService *service.DisputeService
	log            zerolog.Logger
}

func NewHandler(
	reportService *service.ReportService,
	disputeService *service.DisputeService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		reportService:  reportService,
		disputeService: disputeService,
		log:            log,
	}
}

func (h *Handler) createReport(c *gin.Context) {
	var req struct {
		ReporterName string   `json:"reporter_name" binding:"required"`
		Contact      string   `json:"contact" binding:"required"`
		Village      string   `json:"village"`
		AssetName    string   `json:"asset_name" binding:"required"`
		DamageType   string   `json:"damage_type" binding:"required"`
		Severity     string   `json:"severity" binding:"required"`
		Description  string   `json:"description"`
		Photos       []string `json:"photos"`
		Lat          *float64 `json:"lat" binding:"required"`
		Lng          *float64 `json:"lng" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if req.Photos == nil {
		req.Photos = []string{}
	}

	input := service.CreateReportInput{
		ReporterName: req.ReporterName,
		Contact:      req.Contact,
		Village:      req.Village,
		AssetName:    req.AssetName,
		DamageType:   req.DamageType,
		Severity:     model.ReportSeverity(strings.ToUpper(strings.TrimSpace(req.Severity))),
		Description:  req.Description,
		Photos:       req.Photos,
		Lat:          *req.Lat,
		Lng:          *req.Lng,
	}

	record, err := h.reportService.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) listReports(c *gin.Context) {
	limit, offset := parsePagination(c)

	records, err := h.reportService.ListPublic(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) listReportsAdmin(c *gin.Context) {
	limit, offset := parsePagination(c)

	opts := service.ListReportsOptions{Limit: limit, Offset: offset}
	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			opts.Statuses = append(opts.Statuses, model.ReportStatus(strings.ToUpper(val)))
		}
	}
	if includeAll := strings.TrimSpace(c.Query("include_all")); includeAll != "" {
		v, err := strconv.ParseBool(includeAll)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid include_all"))
			return
		}
		opts.IncludeAll = v
	}

	records, err := h.reportService.ListModeration(c.Request.Context(), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) getReport(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}

	record, err := h.reportService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) nearbyReports(c *gin.Context) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(c.Query("lat")), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid lat"))
		return
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(c.Query("lng")), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid lng"))
		return
	}
	radiusKm := 5.0
	if raw := strings.TrimSpace(c.Query("radius_km")); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid radius_km"))
			return
		}
	}

	results, err := h.reportService.Nearby(c.Request.Context(), lat, lng, radiusKm)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": results}))
}

func (h *Handler) updateReport(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}

	var req struct {
		ReporterName *string  `json:"reporter_name"`
		Contact      *string  `json:"contact"`
		Village      *string  `json:"village"`
		AssetName    *string  `json:"asset_name"`
		DamageType   *string  `json:"damage_type"`
		Severity     *string  `json:"severity"`
		Description  *string  `json:"description"`
		Photos       []string `json:"photos"`
		Lat          *float64 `json:"lat"`
		Lng          *float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.UpdateReportInput{
		ReporterName: req.ReporterName,
		Contact:      req.Contact,
		Village:      req.Village,
		AssetName:    req.AssetName,
		DamageType:   req.DamageType,
		Description:  req.Description,
		Photos:       req.Photos,
		Lat:          req.Lat,
		Lng:          req.Lng,
	}
	if req.Severity != nil {
		severity := model.ReportSeverity(strings.ToUpper(strings.TrimSpace(*req.Severity)))
		input.Severity = &severity
	}

	record, err := h.reportService.Update(c.Request.Context(), id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) reviewReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseReportID(c)
	if !ok {
		return
	}

	var req struct {
		Decision string `json:"decision" binding:"required"`
		Note     string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	decision := model.ReportStatus(strings.ToUpper(strings.TrimSpace(req.Decision)))

	record, err := h.reportService.Review(c.Request.Context(), principal, id, decision, req.Note)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) setHandlingStatus(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}

	var req struct {
		HandlingStatus string `json:"handling_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	status := model.HandlingStatus(strings.ToUpper(strings.TrimSpace(req.HandlingStatus)))

	if err := h.reportService.SetHandlingStatus(c.Request.Context(), id, status); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "updated"}))
}

func (h *Handler) deleteReport(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}

	if err := h.reportService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "deleted"}))
}

func (h *Handler) submitDispute(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}

	var req struct {
		Reason       string `json:"reason" binding:"required"`
		ReporterName string `json:"reporter_name"`
		Contact      string `json:"contact"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	dispute, err := h.disputeService.Submit(c.Request.Context(), id, service.SubmitDisputeInput{
		Reason:       req.Reason,
		ReporterName: req.ReporterName,
		Contact:      req.Contact,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(dispute))
}

func (h *Handler) listDisputesForReport(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}

	disputes, err := h.disputeService.ListForReport(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": disputes}))
}

func (h *Handler) listDisputes(c *gin.Context) {
	disputes, err := h.disputeService.ListAll(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": disputes}))
}

func (h *Handler) groupedDisputes(c *gin.Context) {
	groups, err := h.disputeService.Grouped(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": groups}))
}

func (h *Handler) deleteDispute(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid dispute id"))
		return
	}

	if err := h.disputeService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "deleted"}))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrPartialUpdate):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, errorResponse("temporarily unavailable, try again"))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func parseReportID(c *gin.Context) (uint, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, errorResponse("invalid report id"))
		return 0, false
	}
	return uint(id), true
}

func parsePagination(c *gin.Context) (int, int) {
	limit, offset := 0, 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			offset = v
		}
	}
	return limit, offset
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}
