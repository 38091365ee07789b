package model

// DownloadStat is the API view of a download counter
type DownloadStat struct {
	Package      string `json:"package"`
	Ext          string `json:"ext"`
	Count        int64  `json:"count"`
	Bytes        int64  `json:"bytes"`
	LastDownload int64  `json:"lastDownload"`
}

// Health is the response of the health endpoint
type Health struct {
	Status   string `json:"status"`
	Packages int    `json:"packages"`
	Error    string `json:"error,omitempty"`
}
