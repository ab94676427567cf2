package httpserver

import "github.com/bryanwahyu/rxscan/internal/domain/reports"

func uploadOf(name string) reports.Upload {
	return reports.Upload{Filename: name, ContentType: "image/png", Data: pngBytes}
}
