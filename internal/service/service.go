package service

// DeleteResult reports the outcome of a delete operation.
type DeleteResult struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}
