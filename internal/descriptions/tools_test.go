package descriptions

import (
	"reflect"
	"testing"
)

func TestGetToolDescription(t *testing.T) {
	if got := GetToolDescription("pdf_normalize_file"); got != PDFNormalizeFileDescription {
		t.Errorf("GetToolDescription(pdf_normalize_file) returned the wrong description")
	}
	if got := GetToolDescription("pdf_read_file"); got != "Tool description not available" {
		t.Errorf("GetToolDescription(unknown) = %q", got)
	}
}

func TestGetAllToolNames(t *testing.T) {
	want := []string{"pdf_normalize_file", "pdf_normalize_url", "pdf_server_info", "pdf_validate_file"}
	if got := GetAllToolNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("GetAllToolNames() = %v, want %v", got, want)
	}
}
