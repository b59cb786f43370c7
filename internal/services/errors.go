package services

import "errors"

// Report service errors
var (
	ErrNoInputWorkbook = errors.New("no input workbook")
	ErrPublishFailed   = errors.New("publish failed")
)
