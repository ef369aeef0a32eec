package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/campusauth/domain"
)

// PolicyHandlers exposes the Casbin policy table to super admins
type PolicyHandlers struct{ svc domain.PolicyService }

func NewPolicyHandlers(svc domain.PolicyService) *PolicyHandlers {
	return &PolicyHandlers{svc: svc}
}

// policyReq is one policy row; Rule defaults to "*" (no field rule)
type policyReq struct {
	Sub  string `json:"sub" binding:"required"`
	Obj  string `json:"obj" binding:"required"`
	Act  string `json:"act" binding:"required"`
	Rule string `json:"rule"`
}

func (r policyReq) rule() string {
	if r.Rule == "" {
		return "*"
	}
	return r.Rule
}

func (h *PolicyHandlers) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.GetPolicies())
}

func (h *PolicyHandlers) Add(c *gin.Context) {
	var r policyReq
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.AddPolicy(r.Sub, r.Obj, r.Act, r.rule()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PolicyHandlers) Remove(c *gin.Context) {
	var r policyReq
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.RemovePolicy(r.Sub, r.Obj, r.Act, r.rule()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
