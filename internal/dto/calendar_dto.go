package dto

type CreateEventRequest struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Date           string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string   `json:"time" validate:"required,datetime=15:04"`
	Description    string   `json:"description"`
	Prerequisites  []string `json:"prerequisites"`
	ExecutionSteps []string `json:"execution_steps"`
}

type UpdateEventRequest struct {
	Id             string
	Title          string   `json:"title" validate:"required,max=200"`
	Date           string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string   `json:"time" validate:"required,datetime=15:04"`
	Description    string   `json:"description"`
	Prerequisites  []string `json:"prerequisites"`
	ExecutionSteps []string `json:"execution_steps"`
}

type UpdateEventStatusRequest struct {
	Id     string
	Status string `json:"status" validate:"required,oneof=pending completed"`
}
