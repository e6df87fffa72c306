package handler

type projectRequest struct {
	Name          string `json:"name"           validate:"required,min=1,max=128"`
	Description   string `json:"description"`
	LatestVersion string `json:"latest_version"`
	DownloadURL   string `json:"download_url"`
	Announcement  string `json:"announcement"`
	ForceUpdate   bool   `json:"force_update"`
}

type updateInfoResponse struct {
	Name          string `json:"name"`
	CreatedAt     string `json:"created_at"`
	LatestVersion string `json:"latest_version"`
	UpdateURL     string `json:"update_url"`
	UpdateNotice  string `json:"update_notice"`
	ForceUpdate   bool   `json:"force_update"`
}
