package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskWarmQuotePDF = "quotes.pdf.warm"

type WarmQuotePDFPayload struct {
	QuoteID string `json:"quoteId"`
}

func NewWarmQuotePDFTask(payload WarmQuotePDFPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWarmQuotePDF, data), nil
}

func ParseWarmQuotePDFPayload(task *asynq.Task) (WarmQuotePDFPayload, error) {
	var payload WarmQuotePDFPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return WarmQuotePDFPayload{}, err
	}
	return payload, nil
}
