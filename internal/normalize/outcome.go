package normalize

import "github.com/altin/brunoview/internal/model"

// DecideOutcome classifies a result. An error wins over failing tests, and
// failing tests win over the HTTP status, which only counts when no tests ran.
func DecideOutcome(result map[string]any, stats model.TestStats, httpStatus any) model.Outcome {
	if truthy(result["error"]) {
		return model.OutcomeError
	}
	if stats.Fail > 0 {
		return model.OutcomeFail
	}
	if stats.Total == 0 {
		if code, ok := ToNumber(httpStatus); ok && code >= 400 {
			return model.OutcomeFail
		}
	}
	return model.OutcomePass
}
