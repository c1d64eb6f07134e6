package reconcile

import (
	"fmt"

	"github.com/taitdna2/cholimex-display-checker/internal/model"
)

// evalInput is everything the eligibility rule looks at for one joined
// row. Keeping it a plain value keeps the decision table testable away
// from the join and load machinery.
type evalInput struct {
	priorQuota       float64
	currentQuota     float64
	priorSales       float64
	currentSales     float64
	priorThreshold   float64
	currentThreshold float64
	// newEnrollee: the key was present in T1 but absent in T0, so the
	// customer joined last period and is evaluated under the extended
	// first cycle.
	newEnrollee bool
}

// classify applies the eligibility rules in strict precedence order;
// the first matching rule wins. The "decreased" and "unchanged"
// branches share the same pass condition on purpose: policy wants
// them reported with different wording, not decided differently.
func classify(in evalInput) (model.Outcome, string) {
	metEither := in.priorSales >= in.priorThreshold || in.currentSales >= in.currentThreshold

	switch {
	case in.priorQuota > 0 && in.currentQuota == 0:
		return model.OutcomeWithdrawn, "Tháng trước có tham gia, tháng sau không tham gia"

	case in.priorQuota > 0 && in.newEnrollee:
		return model.OutcomePass, "Khách mới tháng trước (DS xét chu kỳ 11/T0→10/T1)"

	case in.priorQuota == 0 && in.currentQuota > 0:
		return model.OutcomeNotEvaluated, "Khách hàng mới tháng sau (không xét kết quả kỳ này)"

	case in.currentQuota > in.priorQuota && in.priorQuota > 0:
		return model.OutcomePass, fmt.Sprintf("Nâng suất %d→%d", int(in.priorQuota), int(in.currentQuota))

	case in.currentQuota < in.priorQuota:
		if metEither {
			return model.OutcomePass, fmt.Sprintf("Giảm suất %d→%d (đủ 1 trong 2)", int(in.priorQuota), int(in.currentQuota))
		}
		return model.OutcomeFail, fmt.Sprintf("Giảm suất %d→%d (thiếu)", int(in.priorQuota), int(in.currentQuota))

	case metEither:
		return model.OutcomePass, ""

	default:
		return model.OutcomeFail, "Thiếu"
	}
}
