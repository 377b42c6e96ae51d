package manifest

import (
	"testing"
)

func TestValidateFile_Valid(t *testing.T) {
	for _, file := range []string{"valid-com.package.json", "valid-no-deps.package.json", "valid-repo-shorthand.package.json"} {
		t.Run(file, func(t *testing.T) {
			result, err := ValidateFile(testPath(file))
			if err != nil {
				t.Fatalf("ValidateFile(%s) error: %v", file, err)
			}
			if !result.Valid {
				for _, issue := range result.Issues {
					t.Errorf("  %s (keyword=%s)", issue, issue.Keyword)
				}
			}
		})
	}
}

func TestValidateFile_Invalid(t *testing.T) {
	tests := []struct {
		file    string
		keyword string
	}{
		{"invalid-missing-version.package.json", "required"},
		{"invalid-dep-type.package.json", "type"},
		{"invalid-name.package.json", "pattern"},
		{"invalid-repo-type.package.json", "type"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			result, err := ValidateFile(testPath(tt.file))
			if err != nil {
				t.Fatalf("ValidateFile(%s) unexpected error: %v", tt.file, err)
			}
			if result.Valid {
				t.Fatalf("expected %s to be invalid", tt.file)
			}
			found := false
			for _, issue := range result.Issues {
				if issue.Keyword == tt.keyword {
					found = true
				}
			}
			if !found {
				t.Errorf("expected a %q issue, got %+v", tt.keyword, result.Issues)
			}
		})
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	if _, err := Validate([]byte(`{"name": `)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
