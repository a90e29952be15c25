package models

import "testing"

func TestUploadKindFields(t *testing.T) {
	tests := []struct {
		kind      UploadKind
		formField string
		urlField  string
	}{
		{UploadImage, "image", "imageUrl"},
		{UploadPDF, "pdf", "pdfUrl"},
	}
	for _, tt := range tests {
		if got := tt.kind.FormField(); got != tt.formField {
			t.Errorf("%s.FormField() = %q, want %q", tt.kind, got, tt.formField)
		}
		if got := tt.kind.URLField(); got != tt.urlField {
			t.Errorf("%s.URLField() = %q, want %q", tt.kind, got, tt.urlField)
		}
	}
}

func TestUploadHumanSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1 KB"},
		{1536, "2 KB"},
		{1048575, "1024 KB"},
		{1048576, "1.0 MB"},
		{20 << 20, "20.0 MB"},
	}
	for _, tt := range tests {
		u := &Upload{SizeBytes: tt.size}
		if got := u.HumanSize(); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
