package packages

import (
	"net/http"

	"auraweb-intake/internal/domain/submissions"

	"github.com/gin-gonic/gin"
)

type PackageDTO struct {
	submissions.Package
	DepositETB int64  `json:"deposit_etb"`
	Currency   string `json:"currency"`
}

// GET /api/packages
func ListPackages(c *gin.Context) {
	list := submissions.Packages()
	out := make([]PackageDTO, 0, len(list))
	for _, p := range list {
		out = append(out, PackageDTO{
			Package:    p,
			DepositETB: submissions.DepositAmount(p.ID),
			Currency:   submissions.Currency,
		})
	}
	c.JSON(http.StatusOK, out)
}
