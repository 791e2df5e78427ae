package descriptions

import "sort"

// Tool descriptions shown to MCP clients

const (
	PDFNormalizeFileDescription = `Sanitize a PDF and reset its interactive form to a standard look.

**When to use:** A PDF form arrives from an untrusted or inconsistent source and must be blanked and made safe before it is handed on.

**What it does:**
• Removes the document OpenAction and the A/AA actions of every form field
• Clears Author, Creator, Keywords, Producer and Subject; sets Title to the input file name (the PDF library re-stamps Producer when it saves, and the summary shows the value)
• Text fields: blank value, Helvetica auto-size in blue, no cached appearance or border/fill styling
• Checkboxes and radio buttons: turned Off, border black, background white, caption removed, appearance streams replaced with stock ones

**Examples:**
• "Normalize intake-form.pdf into clean-intake.pdf"
• "Sanitize w9.pdf before sending it to the vendor"

**Notes:** The output is written under the configured output directory, which must already exist. Nothing is written when the form is malformed or an appearance resource is missing.`

	PDFNormalizeURLDescription = `Download a PDF over HTTP(S) and normalize it like pdf_normalize_file.

**When to use:** The form to sanitize lives on a web server rather than on local disk.

**Examples:**
• "Fetch https://example.com/forms/intake.pdf and normalize it into clean-intake.pdf"

**Notes:** The download is stored in the PDF directory under the last segment of the URL path (downloaded.pdf when the URL has none) and is subject to the same size limit as local files. The output Title is the downloaded file name.`

	PDFValidateFileDescription = `Check that a file is a readable PDF before processing it.

**When to use:** Before normalizing a file whose origin is unknown.

**Examples:**
• "Is upload-123.pdf a valid PDF?"

**Notes:** Checks existence, extension, size limit and that the file opens with a PDF parser.`

	PDFServerInfoDescription = `Report the server configuration: PDF and output directories, size limit and missing appearance resources.

**When to use:** To find out where inputs are read from and outputs written to, or to diagnose failing normalizations.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_normalize_file": PDFNormalizeFileDescription,
	"pdf_normalize_url":  PDFNormalizeURLDescription,
	"pdf_validate_file":  PDFValidateFileDescription,
	"pdf_server_info":    PDFServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the sorted names of all tools
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
