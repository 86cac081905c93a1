package validator

import "testing"

type sampleRequest struct {
	CaptionText string `validate:"required"`
	MeetingID   string
}

func TestValidate_RequiredField(t *testing.T) {
	cv := New()

	if err := cv.Validate(&sampleRequest{CaptionText: "hello"}); err != nil {
		t.Fatalf("unexpected error for valid struct: %v", err)
	}
	if err := cv.Validate(&sampleRequest{MeetingID: "m-1"}); err == nil {
		t.Fatal("expected error for missing required field")
	}
}
