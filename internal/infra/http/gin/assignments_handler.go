package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tourbook/internal/app/commands"
	"tourbook/internal/app/dto"
	assignmentsapp "tourbook/internal/app/handlers/assignments"
	"tourbook/internal/domain/assignment"
)

// AssignmentsHandler answers 200 whenever the save ran, even if some
// operations failed; the per-operation outcomes tell the editor what stuck.
type AssignmentsHandler struct {
	Commands commands.Bus
}

type guideLinkRequest struct {
	GuideID   string `json:"guide_id"`
	IsPrimary bool   `json:"is_primary"`
}

type packageGuidesRequest struct {
	Guides []guideLinkRequest `json:"guides"`
}

func (h AssignmentsHandler) SavePackageGuides(c *gin.Context) {
	var req packageGuidesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	links := make([]assignmentsapp.GuideLink, 0, len(req.Guides))
	for _, g := range req.Guides {
		links = append(links, assignmentsapp.GuideLink{GuideID: g.GuideID, IsPrimary: g.IsPrimary})
	}
	h.save(c, assignmentsapp.SaveAssignmentsCommand{PackageID: c.Param("id"), Guides: links})
}

type guidePackagesRequest struct {
	Packages []assignment.PackageLink `json:"packages"`
}

func (h AssignmentsHandler) SaveGuidePackages(c *gin.Context) {
	var req guidePackagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.save(c, assignmentsapp.SaveAssignmentsCommand{GuideID: c.Param("id"), Packages: req.Packages})
}

func (h AssignmentsHandler) save(c *gin.Context, cmd assignmentsapp.SaveAssignmentsCommand) {
	res, err := commands.Dispatch[assignmentsapp.SaveAssignmentsCommand, *dto.AssignmentReport](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

var _ AssignmentsHTTP = AssignmentsHandler{}
