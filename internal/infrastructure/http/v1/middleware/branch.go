package middleware

import (
	"github.com/gin-gonic/gin"

	"rxledger/internal/core/apperror"
	appctx "rxledger/internal/core/context"
)

// BranchAccess middleware enforces branch-level access control.
// When the request names a branch (path param or query), the user must
// have been granted access to it. Requests without a branch pass through;
// repositories then scope list queries to the user's branches.
func BranchAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		branchID := c.Param("branchId")
		if branchID == "" {
			branchID = c.Query("branchId")
		}
		if branchID == "" {
			c.Next()
			return
		}

		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			abortUnauthorized(c, "authentication required")
			return
		}

		// Admins and users with no branch restrictions see everything.
		if user.IsAdmin || len(user.BranchIDs) == 0 {
			c.Next()
			return
		}

		if !appctx.HasBranchAccess(c.Request.Context(), branchID) {
			_ = c.Error(
				apperror.NewForbidden("no access to branch").
					WithDetail("branch_id", branchID),
			)
			c.Abort()
			return
		}

		c.Next()
	}
}
