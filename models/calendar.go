package models

// CalendarArtifact is derived from a confirmed order and never persisted.
type CalendarArtifact struct {
	ProviderURL   string `json:"provider_url"`
	InvitePayload string `json:"invite_payload"`
	DownloadURI   string `json:"download_uri"`
	FileName      string `json:"file_name"`
}
