package dto

type CreateDocumentRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content"`
}

type UpdateDocumentRequest struct {
	Id      string
	Title   *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content *string `json:"content"`
}
