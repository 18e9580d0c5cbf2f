package plans

import (
	"net/http"

	"kashpages/internal/domain/plans"
	"kashpages/internal/domain/site"

	"github.com/gin-gonic/gin"
)

type planResponse struct {
	plans.Plan
	Limits site.Rules `json:"limits"`
}

// ListPlans GET /plans
func ListPlans(c *gin.Context) {
	catalog := plans.Catalog()
	out := make([]planResponse, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, planResponse{Plan: p, Limits: site.RulesFor(p.Slug)})
	}
	c.JSON(http.StatusOK, out)
}
