package report

type Report struct {
	Workflow *WorkflowReport `json:"workflow,omitempty"`
	Feed     *FeedReport     `json:"feed,omitempty"`
}
