package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/model"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/response"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/service"
)

// TaxonomyHandler exposes the question taxonomy used by the quiz creation
// form: locales, contests and the tag hierarchy.
type TaxonomyHandler struct {
	taxonomyService *service.TaxonomyService
}

// NewTaxonomyHandler creates a new TaxonomyHandler.
func NewTaxonomyHandler(taxonomyService *service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomyService: taxonomyService}
}

// ListLocales godoc
// GET /api/v1/taxonomy/locales
func (h *TaxonomyHandler) ListLocales(c *gin.Context) {
	locales, err := h.taxonomyService.ListLocales(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"locales": locales})
}

// ListContests godoc
// GET /api/v1/taxonomy/contests
func (h *TaxonomyHandler) ListContests(c *gin.Context) {
	contests, err := h.taxonomyService.ListContests(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"contests": contests})
}

// ListTags godoc
// GET /api/v1/taxonomy/tags
// Returns the flat tag list; parent_id links encode the hierarchy and
// descendants tells how many tags a selection of this tag would pull in.
func (h *TaxonomyHandler) ListTags(c *gin.Context) {
	tags, err := h.taxonomyService.ListTags(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	tree := model.NewTagTree(tags)
	views := make([]gin.H, 0, len(tags))
	for _, t := range tags {
		views = append(views, gin.H{
			"id":          t.ID,
			"name":        t.Name,
			"slug":        t.Slug,
			"parent_id":   t.ParentID,
			"descendants": len(tree.Descendants(t.ID)),
		})
	}
	response.Success(c, http.StatusOK, gin.H{"tags": views})
}
