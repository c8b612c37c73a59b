package pipeline

import (
	"github.com/spetersoncode/triage/model"
	"github.com/spetersoncode/triage/store"
	"github.com/spetersoncode/triage/workflow"
)

// UsageAnnotator records the model, token usage and cost of the triage step
// on each stored run.
func UsageAnnotator(m model.ChatModel) store.Annotator {
	return func(run *workflow.Run, rec *store.RunRecord) {
		rec.Model = m.String()
		out, err := workflow.StepResult[ClassifyOutput](run.Context(), StepTriage)
		if err != nil {
			return
		}
		rec.InputTokens = out.Usage.InputTokens
		rec.OutputTokens = out.Usage.OutputTokens
		rec.CostUSD = m.Cost(out.Usage)
	}
}
