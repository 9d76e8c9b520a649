package dto

// CreateVersionRequest represents the payload to store a named configuration version.
type CreateVersionRequest struct {
	Name  string `json:"name" validate:"required,max=150"`
	Notes string `json:"notes" validate:"omitempty,max=2000"`
}

type VersionItem struct {
	ID        uint   `json:"id"`
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Notes     string `json:"notes,omitempty"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
}

type ListVersionsResponse struct {
	Message string        `json:"message"`
	Items   []VersionItem `json:"items"`
}

// RestoreVersionRequest identifies the stored version to replay.
type RestoreVersionRequest struct {
	VersionID uint `json:"version_id" validate:"required,min=1"`
}

// ImportResultResponse summarizes an applied import or restore.
type ImportResultResponse struct {
	Message           string   `json:"message"`
	BackupVersionID   uint     `json:"backup_version_id"`
	Operations        int      `json:"operations"`
	Creates           int      `json:"creates"`
	Updates           int      `json:"updates"`
	Deletes           int      `json:"deletes"`
	CollectionRenames int      `json:"collection_renames"`
	FieldRenames      int      `json:"field_renames"`
	Repairs           []string `json:"repairs,omitempty"`
}
