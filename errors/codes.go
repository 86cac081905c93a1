package errors

// ErrorCode identifies an application error category
type ErrorCode int

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_UNAUTHENTICATED
	ErrorCode_PERMISSION_DENIED

	ErrorCode_INVALID_PAYLOAD
	ErrorCode_MISSING_CAPTION_TEXT
	ErrorCode_TRANSCRIPT_TOO_SHORT

	ErrorCode_EXTRACTION_FAILED
	ErrorCode_EXTRACTION_PARSE_FAILED
	ErrorCode_EXTRACTION_SERVICE_UNAVAILABLE
	ErrorCode_EXTRACTION_QUOTA_EXCEEDED

	ErrorCode_DIRECTORY_LOOKUP_FAILED
	ErrorCode_DELIVERY_FAILED
	ErrorCode_PIPELINE_FAILED

	ErrorCode_HTTP_OK
)

var codeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                        "UNKNOWN",
	ErrorCode_INTERNAL:                       "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:               "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                      "NOT_FOUND",
	ErrorCode_UNAUTHENTICATED:                "UNAUTHENTICATED",
	ErrorCode_PERMISSION_DENIED:              "PERMISSION_DENIED",
	ErrorCode_INVALID_PAYLOAD:                "INVALID_PAYLOAD",
	ErrorCode_MISSING_CAPTION_TEXT:           "MISSING_CAPTION_TEXT",
	ErrorCode_TRANSCRIPT_TOO_SHORT:           "TRANSCRIPT_TOO_SHORT",
	ErrorCode_EXTRACTION_FAILED:              "EXTRACTION_FAILED",
	ErrorCode_EXTRACTION_PARSE_FAILED:        "EXTRACTION_PARSE_FAILED",
	ErrorCode_EXTRACTION_SERVICE_UNAVAILABLE: "EXTRACTION_SERVICE_UNAVAILABLE",
	ErrorCode_EXTRACTION_QUOTA_EXCEEDED:      "EXTRACTION_QUOTA_EXCEEDED",
	ErrorCode_DIRECTORY_LOOKUP_FAILED:        "DIRECTORY_LOOKUP_FAILED",
	ErrorCode_DELIVERY_FAILED:                "DELIVERY_FAILED",
	ErrorCode_PIPELINE_FAILED:                "PIPELINE_FAILED",
	ErrorCode_HTTP_OK:                        "OK",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
