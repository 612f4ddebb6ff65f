package services

import "github.com/facturio/relance/internal/models"

// FreePlanEmailLimit caps the email counter of free-plan owners. Paid plans
// are unmetered in this core; billing enforces their own ceilings upstream.
const FreePlanEmailLimit = 20

// checkQuota returns ErrQuotaExceeded when the owner may not send anymore.
func checkQuota(owner *models.User) error {
	if owner.Plan == models.PlanFree && owner.EmailCounter >= FreePlanEmailLimit {
		return ErrQuotaExceeded
	}
	return nil
}
