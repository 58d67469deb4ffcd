package handlers

import (
	"net/http"

	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/gin-gonic/gin"
)

// ListsHandler serves the individuals and services lists.
type ListsHandler struct {
	rosterService RosterServiceInterface
}

func NewListsHandler(rosterService RosterServiceInterface) *ListsHandler {
	return &ListsHandler{rosterService: rosterService}
}

// GetLists godoc
// @Summary      Get selectable lists
// @Tags         lists
// @Produce      json
// @Success      200  {object}  types.ListsResponse
// @Router       /lists [get]
func (h *ListsHandler) GetLists(c *gin.Context) {
	lists, err := h.rosterService.GetLists(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

// UpdateIndividuals godoc
// @Summary      Replace the individuals list
// @Tags         lists
// @Accept       json
// @Produce      json
// @Param        body  body      types.UpdateIndividualsRequest  true  "Whole list"
// @Success      200   {object}  types.UpdateIndividualsResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      409   {object}  types.ErrorResponse
// @Router       /lists/individuals [post]
// @Security     BearerAuth
func (h *ListsHandler) UpdateIndividuals(c *gin.Context) {
	var req types.UpdateIndividualsRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	list, err := h.rosterService.ReplaceIndividuals(c.Request.Context(), req.UpdatedList)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.UpdateIndividualsResponse{UpdatedList: list})
}

// UpdateServices godoc
// @Summary      Replace the services list
// @Tags         lists
// @Accept       json
// @Produce      json
// @Param        body  body      types.UpdateServicesRequest  true  "Whole list"
// @Success      200   {object}  types.UpdateServicesResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      409   {object}  types.ErrorResponse
// @Router       /lists/services [post]
// @Security     BearerAuth
func (h *ListsHandler) UpdateServices(c *gin.Context) {
	var req types.UpdateServicesRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	list, err := h.rosterService.ReplaceServices(c.Request.Context(), req.UpdatedList)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.UpdateServicesResponse{UpdatedList: list})
}
