package storage

import "testing"

func TestResourceTypeFor(t *testing.T) {
	cases := []struct {
		mime string
		want string
	}{
		{"image/jpeg", "image"},
		{"image/png", "image"},
		{"audio/m4a", "video"}, // voice notes live under the video bucket
		{"audio/ogg", "video"},
		{"video/mp4", "video"},
		{"application/pdf", "raw"},
		{"", "raw"},
	}
	for _, c := range cases {
		if got := resourceTypeFor(c.mime); got != c.want {
			t.Errorf("resourceTypeFor(%q) = %q, want %q", c.mime, got, c.want)
		}
	}
}

func TestUploadRequiresConfiguration(t *testing.T) {
	t.Setenv("CLOUDINARY_CLOUD_NAME", "")
	t.Setenv("CLOUDINARY_API_KEY", "")
	t.Setenv("CLOUDINARY_API_SECRET", "")

	if _, err := UploadBase64Media("data:image/png;base64,AAAA", "x", "image/png"); err == nil {
		t.Fatal("expected an error when media store credentials are missing")
	}
}

func TestUploadRejectsEmptyPayload(t *testing.T) {
	if _, err := UploadBase64Media("", "x", "image/png"); err == nil {
		t.Fatal("expected an error for an empty payload")
	}
}
