package tome

import "testing"

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		format Format
		want   bool
	}{
		{FormatJSON, true},
		{FormatXML, true},
		{FormatTOML, true},
		{FormatYAML, true},
		{FormatBSON, true},
		{FormatMsgPack, true},
		{Format("ini"), false},
		{Format(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := IsValidFormat(tt.format); got != tt.want {
				t.Errorf("IsValidFormat(%q) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}
