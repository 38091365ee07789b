package model

import (
	"time"
)

// DBDownload represents the download counter of one archive
type DBDownload struct {
	ID           int64     `db:"id"`
	Package      string    `db:"package"`
	Ext          string    `db:"ext"`
	Count        int64     `db:"count"`
	Bytes        int64     `db:"bytes"`
	LastDownload time.Time `db:"last_download"`
}

// Schema contains the SQL schema for the database
const Schema = `
CREATE TABLE IF NOT EXISTS downloads (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    package TEXT NOT NULL,
    ext TEXT NOT NULL,
    count INTEGER NOT NULL DEFAULT 0,
    bytes INTEGER NOT NULL DEFAULT 0,
    last_download TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(package, ext)
);

CREATE INDEX IF NOT EXISTS idx_downloads_package ON downloads(package);
`
