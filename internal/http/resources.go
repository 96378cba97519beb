package http

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/service"
)

type listQuery struct {
	Search    string `form:"search"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

func (q listQuery) query() service.Query {
	return service.Query{
		Search:    q.Search,
		Page:      q.Page,
		Limit:     q.Limit,
		SortBy:    q.SortBy,
		SortOrder: domain.SortOrder(q.SortOrder),
	}
}

type jobListQuery struct {
	listQuery
	Status       string `form:"status" binding:"omitempty,oneof=open in-progress completed cancelled"`
	Location     string `form:"location"`
	Category     string `form:"category"`
	CustomerID   string `form:"customerId"`
	ContractorID string `form:"contractorId"`
}

type locationListQuery struct {
	listQuery
	State string `form:"state"`
}

type userListQuery struct {
	listQuery
	Role     string `form:"role" binding:"omitempty,oneof=contractor customer admin"`
	Location string `form:"location"`
	Category string `form:"category"`
}

type transactionListQuery struct {
	listQuery
	Type    string `form:"type"`
	Status  string `form:"status"`
	UserID  string `form:"userId"`
	JobID   string `form:"jobId"`
	OfferID string `form:"offerId"`
}

// flatList is the listing shape of categories, jobs and locations.
func flatList(key string, items any, page domain.Page) gin.H {
	return gin.H{
		key:          items,
		"total":      page.Total,
		"page":       page.Page,
		"limit":      page.Limit,
		"totalPages": page.TotalPages,
	}
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		abort(c, http.StatusBadRequest, "Invalid query parameters")
		return false
	}
	return true
}

// Categories

func (h *Handler) listCategories(c *gin.Context) {
	var q listQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := h.catalog.ListCategories(c.Request.Context(), q.query())
	if err != nil {
		h.fail(c, err, "Category")
		return
	}
	respond(c, http.StatusOK, "Categories fetched successfully", flatList("categories", res.Items, res.Page))
}

func (h *Handler) getCategory(c *gin.Context) {
	category, err := h.catalog.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Category")
		return
	}
	respond(c, http.StatusOK, "Category fetched successfully", category)
}

func (h *Handler) createCategory(c *gin.Context) {
	icon, ok := h.saveIcon(c)
	if !ok {
		return
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(), service.CategoryInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Icon:        icon,
	})
	if err != nil {
		h.fail(c, err, "Category")
		return
	}
	respond(c, http.StatusCreated, "Category created successfully", category)
}

func (h *Handler) updateCategory(c *gin.Context) {
	icon, ok := h.saveIcon(c)
	if !ok {
		return
	}
	category, err := h.catalog.UpdateCategory(c.Request.Context(), c.Param("id"), service.CategoryInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Icon:        icon,
	})
	if err != nil {
		h.fail(c, err, "Category")
		return
	}
	respond(c, http.StatusOK, "Category updated successfully", category)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "Category")
		return
	}
	respond(c, http.StatusOK, "Category deleted successfully", nil)
}

// saveIcon stores an uploaded icon file and returns its public path, or ""
// when the form carries none.
func (h *Handler) saveIcon(c *gin.Context) (string, bool) {
	file, err := c.FormFile("icon")
	if err != nil {
		return "", true
	}
	if h.uploadDir == "" {
		abort(c, http.StatusInternalServerError, "Uploads are not configured")
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		h.fail(c, fmt.Errorf("save icon: %w", err), "")
		return "", false
	}
	return "/uploads/" + name, true
}

// Jobs

func (h *Handler) listJobs(c *gin.Context) {
	var q jobListQuery
	if !bindQuery(c, &q) {
		return
	}
	query := q.query().
		Where(q.Status, "status").
		Where(q.Location, "location").
		Where(q.Category, "category").
		Where(q.CustomerID, "customerId").
		Where(q.ContractorID, "contractorId")
	res, err := h.catalog.ListJobs(c.Request.Context(), query)
	if err != nil {
		h.fail(c, err, "Job")
		return
	}
	respond(c, http.StatusOK, "Jobs fetched successfully", flatList("jobs", res.Items, res.Page))
}

func (h *Handler) getJob(c *gin.Context) {
	job, err := h.catalog.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Job")
		return
	}
	respond(c, http.StatusOK, "Job fetched successfully", job)
}

func (h *Handler) createJob(c *gin.Context) {
	var in service.JobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	job, err := h.catalog.CreateJob(c.Request.Context(), claimsFrom(c).Subject, in)
	if err != nil {
		h.fail(c, err, "Job")
		return
	}
	respond(c, http.StatusCreated, "Job created successfully", job)
}

// Locations

type locationRequest struct {
	Name        string              `json:"name"`
	State       string              `json:"state"`
	Coordinates *domain.Coordinates `json:"coordinates"`
}

func (r locationRequest) input() service.LocationInput {
	return service.LocationInput{Name: r.Name, State: r.State, Coordinates: r.Coordinates}
}

func (h *Handler) listLocations(c *gin.Context) {
	var q locationListQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := h.catalog.ListLocations(c.Request.Context(), q.query().Where(q.State, "state"))
	if err != nil {
		h.fail(c, err, "Location")
		return
	}
	respond(c, http.StatusOK, "Locations fetched successfully", flatList("locations", res.Items, res.Page))
}

func (h *Handler) getLocation(c *gin.Context) {
	location, err := h.catalog.GetLocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Location")
		return
	}
	respond(c, http.StatusOK, "Location fetched successfully", location)
}

func (h *Handler) createLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	location, err := h.catalog.CreateLocation(c.Request.Context(), req.input())
	if err != nil {
		h.fail(c, err, "Location")
		return
	}
	respond(c, http.StatusCreated, "Location created successfully", location)
}

func (h *Handler) updateLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	location, err := h.catalog.UpdateLocation(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.fail(c, err, "Location")
		return
	}
	respond(c, http.StatusOK, "Location updated successfully", location)
}

func (h *Handler) deleteLocation(c *gin.Context) {
	if err := h.catalog.DeleteLocation(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "Location")
		return
	}
	respond(c, http.StatusOK, "Location deleted successfully", nil)
}

// Users

func (h *Handler) listUsers(c *gin.Context) {
	var q userListQuery
	if !bindQuery(c, &q) {
		return
	}
	query := q.query().
		Where(q.Role, "role").
		Where(q.Location, "location").
		Where(q.Category, "category")
	res, err := h.catalog.ListUsers(c.Request.Context(), query)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	respond(c, http.StatusOK, "Users fetched successfully", gin.H{
		"users": res.Items,
		"pagination": gin.H{
			"currentPage": res.Page.Page,
			"totalPages":  res.Page.TotalPages,
			"totalUsers":  res.Page.Total,
			"limit":       res.Page.Limit,
			"hasNextPage": res.Page.HasNext(),
			"hasPrevPage": res.Page.Page > 1,
		},
	})
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.catalog.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	respond(c, http.StatusOK, "User fetched successfully", user)
}

func (h *Handler) me(c *gin.Context) {
	claims := claimsFrom(c)
	user, err := h.catalog.GetUser(c.Request.Context(), claims.Subject)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	respond(c, http.StatusOK, "User fetched successfully", user)
}

func (h *Handler) updateMe(c *gin.Context) {
	var patch service.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.catalog.UpdateUser(c.Request.Context(), claimsFrom(c).Subject, patch)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", user)
}

// Transactions

func (h *Handler) listTransactions(c *gin.Context) {
	var q transactionListQuery
	if !bindQuery(c, &q) {
		return
	}
	query := q.query().
		Where(q.Type, "type").
		Where(q.Status, "status").
		Where(q.UserID, "from._id", "to._id").
		Where(q.JobID, "job").
		Where(q.OfferID, "offer")
	res, err := h.catalog.ListTransactions(c.Request.Context(), query)
	if err != nil {
		h.fail(c, err, "Transaction")
		return
	}
	respond(c, http.StatusOK, "Transactions fetched successfully", gin.H{
		"transactions": res.Items,
		"pagination": gin.H{
			"page":       res.Page.Page,
			"limit":      res.Page.Limit,
			"total":      res.Page.Total,
			"totalPages": res.Page.TotalPages,
		},
	})
}
