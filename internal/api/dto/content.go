package dto

type CreateContentRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	Format      string   `json:"format,omitempty"`
	FileSize    int64    `json:"file_size"`
	Duration    int      `json:"duration,omitempty"`
	Language    string   `json:"language,omitempty"`
	License     string   `json:"license,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	ObjectKey   string   `json:"object_key"`
}

var validContentTypes = map[string]bool{
	"video":    true,
	"audio":    true,
	"document": true,
	"ad":       true,
}

func (r CreateContentRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title == "" {
		errors["title"] = "Title is required"
	}
	if !validContentTypes[r.Type] {
		errors["type"] = "Type must be one of: video, audio, document, ad"
	}
	if r.FileSize <= 0 {
		errors["file_size"] = "File size must be positive"
	}
	if r.ObjectKey == "" {
		errors["object_key"] = "Object key is required"
	}

	return errors
}

type DownloadRequest struct {
	Format  string `json:"format,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

// DownloadGrantResponse carries a short-lived signed URL; the platform never
// streams file bytes itself.
type DownloadGrantResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

type RoleChangeRequest struct {
	Role string `json:"role"`
}

func (r RoleChangeRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Role == "" {
		errors["role"] = "Role is required"
	}
	return errors
}
