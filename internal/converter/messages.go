package converter

// messages.go maps pipeline errors to text shown to users, each with a
// code they can quote when reporting a problem.
//
//	FILE001 - Unsupported file type          (ErrUnsupportedFormat)
//	FILE002 - File could not be read          (ErrParseFailure)
//	FILE003 - File too large                  (ErrFileTooLarge)
//	CLN001  - Column has no values to average (ErrEmptyMeanFill)
//	CLN002  - Unknown cleaning operation      (ErrUnknownOperation)
//	COL001  - Column not found                (ErrUnknownColumn)
//	COL002  - Column selected twice           (ErrDuplicateColumn)
//	VIS001  - Nothing to chart                (ErrNoNumericColumns)
//	REQ001  - Request cancelled or timed out  (context errors)
//	GEN001  - Anything else

import (
	"context"
	"errors"
)

// UserMessage is an error rewritten for display.
type UserMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

type messageRule struct {
	target error
	msg    UserMessage
}

var messageRules = []messageRule{
	{ErrUnsupportedFormat, UserMessage{"FILE001", "Unsupported file type", "Upload a .csv or .xlsx file"}},
	{ErrParseFailure, UserMessage{"FILE002", "The file could not be read", "Check that the file is a valid CSV or Excel workbook with a header row"}},
	{ErrFileTooLarge, UserMessage{"FILE003", "The file is too large", "Split the file into smaller parts"}},
	{ErrEmptyMeanFill, UserMessage{"CLN001", "A numeric column has no values, so its missing cells were left empty", ""}},
	{ErrUnknownOperation, UserMessage{"CLN002", "Unknown cleaning operation", "Use remove_duplicates or fill_missing"}},
	{ErrUnknownColumn, UserMessage{"COL001", "A selected column does not exist in the file", "Pick columns from the file's header"}},
	{ErrDuplicateColumn, UserMessage{"COL002", "A column was selected more than once", ""}},
	{ErrNoNumericColumns, UserMessage{"VIS001", "No numeric columns available for visualization", ""}},
	{context.Canceled, UserMessage{"REQ001", "The request was cancelled", "Please try again"}},
	{context.DeadlineExceeded, UserMessage{"REQ001", "The request timed out", "Try a smaller file"}},
}

// MapError returns the user-facing message for err. The technical detail
// of err is appended for the errors users can act on directly.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, rule := range messageRules {
		if errors.Is(err, rule.target) {
			msg := rule.msg
			switch rule.target {
			case ErrUnsupportedFormat, ErrUnknownColumn, ErrDuplicateColumn, ErrEmptyMeanFill, ErrParseFailure:
				msg.Message = msg.Message + ": " + err.Error()
			}
			return msg
		}
	}
	return UserMessage{Code: "GEN001", Message: err.Error()}
}
