package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/DMHCAIT/crm-backend-sub002/internal/api/interfaces"
	"github.com/DMHCAIT/crm-backend-sub002/internal/api/middlewares"
	"github.com/DMHCAIT/crm-backend-sub002/internal/api/models"
	"github.com/DMHCAIT/crm-backend-sub002/internal/auth"
	"github.com/DMHCAIT/crm-backend-sub002/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

var errInvalidStatus = models.NewAPIError(models.ErrCodeInvalidRequest, "Invalid lead status", http.StatusBadRequest)

// ListLeads returns a page of leads. Users below manager only see leads
// assigned to them.
func ListLeads(services interfaces.Services) gin.HandlerFunc {
	log := services.GetLogger().WithComponent("leads")

	return func(c *gin.Context) {
		leads, claims, ok := leadContext(c, services)
		if !ok {
			return
		}

		filter := database.LeadFilter{
			Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
			Limit:  queryInt(c, "limit", defaultPageSize),
			Offset: queryInt(c, "offset", 0),
		}
		switch {
		case filter.Limit <= 0:
			filter.Limit = defaultPageSize
		case filter.Limit > maxPageSize:
			filter.Limit = maxPageSize
		}
		if filter.Status != "" && !database.ValidLeadStatus(filter.Status) {
			respondError(c, errInvalidStatus)
			return
		}
		if !seesAllLeads(services, claims) {
			filter.AssignedTo = claims.UserID
		}

		result, err := leads.List(c.Request.Context(), filter)
		if err != nil {
			log.Error("Failed to list leads", "user_id", claims.UserID, "error", err.Error())
			respondError(c, models.ErrServiceUnavailable)
			return
		}

		c.JSON(http.StatusOK, models.LeadListResponse{
			Success: true,
			Data:    result,
			Pagination: models.PaginationInfo{
				Limit:  filter.Limit,
				Offset: filter.Offset,
				Count:  len(result),
			},
		})
	}
}

// CreateLead stores a new lead. Agents may only assign leads to themselves.
func CreateLead(services interfaces.Services) gin.HandlerFunc {
	log := services.GetLogger().WithComponent("leads")

	return func(c *gin.Context) {
		leads, claims, ok := leadContext(c, services)
		if !ok {
			return
		}

		var req models.CreateLeadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewAPIError(models.ErrCodeInvalidRequest, "Invalid request format", http.StatusBadRequest))
			return
		}

		assignee := strings.TrimSpace(req.AssignedTo)
		if assignee == "" || !seesAllLeads(services, claims) {
			assignee = claims.UserID
		}

		lead := &database.Lead{
			ID:         uuid.NewString(),
			FullName:   strings.TrimSpace(req.FullName),
			Email:      strings.TrimSpace(req.Email),
			Phone:      strings.TrimSpace(req.Phone),
			Course:     req.Course,
			Source:     req.Source,
			Status:     database.LeadStatusNew,
			AssignedTo: assignee,
			Notes:      req.Notes,
		}

		if err := leads.Create(c.Request.Context(), lead); err != nil {
			log.Error("Failed to create lead", "user_id", claims.UserID, "error", err.Error())
			respondError(c, models.ErrServiceUnavailable)
			return
		}

		log.AuditLogger("lead_created", claims.UserID, "lead:"+lead.ID, "assigned_to="+assignee)
		c.JSON(http.StatusCreated, models.DataResponse{
			Success: true,
			Message: "Lead created",
			Data:    lead,
		})
	}
}

// GetLead returns a single lead
func GetLead(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		leads, claims, ok := leadContext(c, services)
		if !ok {
			return
		}

		lead, ok := loadOwnedLead(c, services, leads, claims)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, models.DataResponse{Success: true, Data: lead})
	}
}

// UpdateLeadStatus moves a lead to another status
func UpdateLeadStatus(services interfaces.Services) gin.HandlerFunc {
	log := services.GetLogger().WithComponent("leads")

	return func(c *gin.Context) {
		leads, claims, ok := leadContext(c, services)
		if !ok {
			return
		}

		var req models.UpdateLeadStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errInvalidStatus)
			return
		}
		status := strings.ToLower(strings.TrimSpace(req.Status))
		if !database.ValidLeadStatus(status) {
			respondError(c, errInvalidStatus)
			return
		}

		lead, ok := loadOwnedLead(c, services, leads, claims)
		if !ok {
			return
		}

		if err := leads.UpdateStatus(c.Request.Context(), lead.ID, status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(c, models.ErrLeadNotFound)
				return
			}
			log.Error("Failed to update lead status", "lead_id", lead.ID, "error", err.Error())
			respondError(c, models.ErrServiceUnavailable)
			return
		}

		log.AuditLogger("lead_status_changed", claims.UserID, "lead:"+lead.ID, lead.Status+"->"+status)
		lead.Status = status
		c.JSON(http.StatusOK, models.DataResponse{
			Success: true,
			Message: "Lead status updated",
			Data:    lead,
		})
	}
}

// DeleteLead removes a lead. The route restricts it to admins.
func DeleteLead(services interfaces.Services) gin.HandlerFunc {
	log := services.GetLogger().WithComponent("leads")

	return func(c *gin.Context) {
		leads, claims, ok := leadContext(c, services)
		if !ok {
			return
		}

		id := c.Param("id")
		if err := leads.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(c, models.ErrLeadNotFound)
				return
			}
			log.Error("Failed to delete lead", "lead_id", id, "error", err.Error())
			respondError(c, models.ErrServiceUnavailable)
			return
		}

		log.AuditLogger("lead_deleted", claims.UserID, "lead:"+id, "")
		c.JSON(http.StatusOK, models.DataResponse{Success: true, Message: "Lead deleted"})
	}
}

// leadContext resolves the lead store and the caller's claims, answering
// the request itself when either is missing.
func leadContext(c *gin.Context, services interfaces.Services) (interfaces.LeadStore, *auth.Claims, bool) {
	claims, ok := middlewares.GetClaims(c)
	if !ok {
		respondError(c, models.ErrInvalidToken)
		return nil, nil, false
	}
	leads := services.LeadRepository()
	if leads == nil {
		respondError(c, models.ErrServiceUnavailable)
		return nil, nil, false
	}
	return leads, claims, true
}

func loadOwnedLead(c *gin.Context, services interfaces.Services, leads interfaces.LeadStore, claims *auth.Claims) (*database.Lead, bool) {
	lead, err := leads.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, models.ErrLeadNotFound)
			return nil, false
		}
		services.GetLogger().Error("Failed to load lead", "lead_id", c.Param("id"), "error", err.Error())
		respondError(c, models.ErrServiceUnavailable)
		return nil, false
	}
	if lead.AssignedTo != claims.UserID && !seesAllLeads(services, claims) {
		respondError(c, models.ErrInsufficientRole)
		return nil, false
	}
	return lead, true
}

func seesAllLeads(services interfaces.Services, claims *auth.Claims) bool {
	return services.Policy().CheckRole(claims, auth.RoleManager).Allowed
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
